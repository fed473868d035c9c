package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/uthos/internal/api"
	"github.com/timmy/uthos/internal/config"
	"github.com/timmy/uthos/internal/logger"
)

// devserver runs the API emulator without the CLI, for containers and CI.
// Configuration comes from CONFIG_PATH, .env and the environment.
func main() {
	appLogger := logger.NewDefault()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	appLogger = logger.New(cfg.Log.LoggerOptions("uthos-devserver")).
		WithField(logger.FieldComponent, "devserver")
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	if cfg.Server.Token == "" && cfg.Server.AccessKey == "" {
		appLogger.Fatal("DEVSERVER_TOKEN or DEVSERVER_ACCESS_KEY must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := api.Run(ctx, cfg, appLogger, nil); err != nil {
		appLogger.WithError(err).Error("devserver stopped")
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}
