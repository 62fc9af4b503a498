package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campusworks/portal-session/config"
	"github.com/campusworks/portal-session/internal/adapters/authroles"
	"github.com/campusworks/portal-session/internal/adapters/devauth"
	"github.com/campusworks/portal-session/internal/adapters/hostedauth"
	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	"github.com/campusworks/portal-session/internal/ports"
)

// NewBoundary constructs the identity boundary for the configured mode.
//
//nolint:ireturn // mode selection requires returning the port.
func NewBoundary(cfg *config.AppConfig, logger *slog.Logger) (ports.IdentityBoundary, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeHosted:
		client, err := hostedauth.NewClient(hostedauth.ClientConfig{
			BaseURL: cfg.Auth.Hosted.BaseURL,
			APIKey:  cfg.Auth.Hosted.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("hosted auth client: %w", err)
		}
		return client, nil
	case config.AuthModeMock:
		provider := devauth.NewProvider(devauth.Config{
			FixedOTP: cfg.Auth.DevAuth.FixedOTP,
			Logger:   logger,
		})
		dev := cfg.Auth.DevAuth
		provider.Seed(dev.Email, dev.FullName, dev.Password, dev.Role)
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.Auth.Mode)
	}
}

// NewRoleMapper picks the role mapping strategy. A configured claim
// expression wins; otherwise roles come from the static admin email list.
//
//nolint:ireturn // strategy selection requires returning the port.
func NewRoleMapper(cfg *config.AppConfig) (ports.RoleMapper, error) {
	if cfg.Auth.Hosted.RoleExpr != "" {
		mapper, err := authroles.NewJMESPathMapper(cfg.Auth.Hosted.RoleExpr, domainsession.RoleStudent)
		if err != nil {
			return nil, fmt.Errorf("role expression: %w", err)
		}
		return mapper, nil
	}
	return authroles.StaticRoleMapper{
		AdminEmails: cfg.Auth.AdminEmails,
		Default:     domainsession.RoleStudent,
	}, nil
}

// ConnectPostgres opens and verifies the profile store's pgx pool.
func ConnectPostgres(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ConnectRedis opens and verifies the token record store's client.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
