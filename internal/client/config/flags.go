package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/wilt/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   base URL of the WILT API
//	-d string   session database path
//	-t int      request timeout in seconds
//	-l string   log level
//	-f string   log format
//	-b string   log backend
//
// Only these flags are looked at (flagx.FilterArgs), so -c/-config and
// anything else on the command line do not cause parse errors.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-d", "-t", "-l", "-f", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "base URL of the WILT API")
	fs.StringVar(&cfg.SessionDB, "d", cfg.SessionDB, "session database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend: slog, zap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
