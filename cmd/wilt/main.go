package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/wilt/internal/buildinfo"
	"github.com/dmitrijs2005/wilt/internal/client/cli"
	"github.com/dmitrijs2005/wilt/internal/client/config"
	"github.com/dmitrijs2005/wilt/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogBackend, cfg.LogLevel, cfg.LogFormat)
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
