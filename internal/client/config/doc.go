// Package config loads runtime configuration for the WILT CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with WILT_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override everything else.
//
// Supported flags
//
//	-u string   base URL of the WILT API
//	-d string   path of the session database
//	-t int      request timeout (seconds)
//	-l string   log level
//	-f string   log format
//	-b string   log backend
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8000",
//	  "session_db": "wilt.db",
//	  "request_timeout": "10s",
//	  "log_level": "warn",
//	  "log_format": "text",
//	  "log_backend": "slog",
//	  "breaker_failures": 5,
//	  "breaker_timeout": "30s"
//	}
//
// Only non-zero values from JSON and the environment override earlier ones.
package config
