package config

import "time"

// Config holds runtime settings for the WILT CLI.
//
// Fields:
//   - BaseURL: scheme://host[:port] of the WILT REST API.
//   - SessionDB: path of the SQLite file holding the session store.
//   - RequestTimeout: overall timeout of a single HTTP exchange.
//   - LogLevel / LogFormat / LogBackend: debug|info|warn|error, text|json, slog|zap.
//   - BreakerFailures: consecutive transport failures that open the breaker.
//   - BreakerTimeout: how long the breaker stays open before probing again.
type Config struct {
	BaseURL         string
	SessionDB       string
	RequestTimeout  time.Duration
	LogLevel        string
	LogFormat       string
	LogBackend      string
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000"
	c.SessionDB = "wilt.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.LogBackend = "slog"
	c.BreakerFailures = 5
	c.BreakerTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
