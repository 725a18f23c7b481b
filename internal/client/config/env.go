package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig mirrors Config for environment variables. Unset variables leave
// the zero value and do not override.
type EnvConfig struct {
	BaseURL         string        `env:"WILT_BASE_URL"`
	SessionDB       string        `env:"WILT_SESSION_DB"`
	RequestTimeout  time.Duration `env:"WILT_REQUEST_TIMEOUT"`
	LogLevel        string        `env:"WILT_LOG_LEVEL"`
	LogFormat       string        `env:"WILT_LOG_FORMAT"`
	LogBackend      string        `env:"WILT_LOG_BACKEND"`
	BreakerFailures uint32        `env:"WILT_BREAKER_FAILURES"`
	BreakerTimeout  time.Duration `env:"WILT_BREAKER_TIMEOUT"`
}

func parseEnv(cfg *Config) error {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	overlayString(&cfg.BaseURL, ec.BaseURL)
	overlayString(&cfg.SessionDB, ec.SessionDB)
	overlayString(&cfg.LogLevel, ec.LogLevel)
	overlayString(&cfg.LogFormat, ec.LogFormat)
	overlayString(&cfg.LogBackend, ec.LogBackend)
	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.BreakerFailures > 0 {
		cfg.BreakerFailures = ec.BreakerFailures
	}
	if ec.BreakerTimeout > 0 {
		cfg.BreakerTimeout = ec.BreakerTimeout
	}
	return nil
}
