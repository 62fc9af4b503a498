package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/campusworks/portal-session/config"
	redisadapter "github.com/campusworks/portal-session/internal/adapters/redis"
	"github.com/campusworks/portal-session/internal/adapters/profilepg"
	"github.com/campusworks/portal-session/internal/ports"
	"github.com/campusworks/portal-session/internal/service"
)

// ServiceDeps groups the shared infrastructure the service layer needs.
type ServiceDeps struct {
	Config      *config.AppConfig
	Pool        *pgxpool.Pool
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// Services is the wired service layer.
type Services struct {
	Boundary   ports.IdentityBoundary
	Flow       *service.Flow
	Controller *service.Controller
}

// NewServices wires the boundary, flow machine, and session controller.
// The flow's success notification drives a controller refresh so a
// completed login or verification lands in the snapshot without the
// client asking.
func NewServices(deps *ServiceDeps) (*Services, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	boundary, err := NewBoundary(cfg, logger)
	if err != nil {
		return nil, err
	}
	// Mirror provider tokens into the record store.
	recorded := service.NewTokenRecorder(boundary, redisadapter.NewSessionStore(deps.RedisClient), cfg.Session.TokenTTL, logger)

	roles, err := NewRoleMapper(cfg)
	if err != nil {
		return nil, err
	}

	controller, err := service.NewController(service.ControllerOptions{
		Boundary:           recorded,
		Profiles:           profilepg.NewStore(deps.Pool),
		Roles:              roles,
		IdleTimeout:        cfg.Session.IdleTimeout,
		VisibilityDebounce: cfg.Session.VisibilityDebounce,
		RecoveryPaths:      cfg.Session.RecoveryRoutes,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session controller: %w", err)
	}

	flow, err := service.NewFlow(service.FlowOptions{
		Boundary: recorded,
		Notify:   func(ctx context.Context) { controller.Refresh(ctx) },
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth flow: %w", err)
	}

	return &Services{
		Boundary:   recorded,
		Flow:       flow,
		Controller: controller,
	}, nil
}
