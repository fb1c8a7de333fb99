package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vetty/storefront/internal/app"
	"github.com/vetty/storefront/internal/config"
	"github.com/vetty/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to build application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
