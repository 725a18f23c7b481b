package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wilt/internal/flagx"
	"github.com/dmitrijs2005/wilt/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so they can be written as "10s".
type JsonConfig struct {
	BaseURL         string         `json:"base_url"`
	SessionDB       string         `json:"session_db"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
	LogBackend      string         `json:"log_backend"`
	BreakerFailures uint32         `json:"breaker_failures"`
	BreakerTimeout  timex.Duration `json:"breaker_timeout"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Without the
// flag nothing happens; read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.BaseURL, jc.BaseURL)
	overlayString(&cfg.SessionDB, jc.SessionDB)
	overlayString(&cfg.LogLevel, jc.LogLevel)
	overlayString(&cfg.LogFormat, jc.LogFormat)
	overlayString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.BreakerFailures > 0 {
		cfg.BreakerFailures = jc.BreakerFailures
	}
	if jc.BreakerTimeout.Duration > 0 {
		cfg.BreakerTimeout = jc.BreakerTimeout.Duration
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
