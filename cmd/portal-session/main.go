package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/campusworks/portal-session/internal/bootstrap"
	"github.com/campusworks/portal-session/internal/httpx"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if err = bootstrap.ValidateConfig(&cfg); err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting portal session service",
		"auth_mode", cfg.Auth.Mode,
		"idle_timeout", cfg.Session.IdleTimeout,
		"addr", cfg.HTTP.Addr,
		"dev", cfg.IsDev)

	pool, err := bootstrap.ConnectPostgres(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		Pool:        pool,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	// Resolve the initial snapshot and arm the monitors before the first
	// request lands.
	services.Controller.Start(ctx)
	defer services.Controller.Stop()

	router := httpx.NewRouter(httpx.RouterServices{
		Flow:       services.Flow,
		Controller: services.Controller,
		Boundary:   services.Boundary,
		Logger:     logger,
	})

	return bootstrap.RunServer(ctx, cfg.HTTP, router, logger)
}
