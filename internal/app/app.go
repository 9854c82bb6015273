package app

import (
	"context"
	"time"

	"github.com/toshiwd/moomoo-like-sub001/internal/client"
	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/config"
	"github.com/toshiwd/moomoo-like-sub001/internal/handlers"
	"github.com/toshiwd/moomoo-like-sub001/internal/mcp"
	"github.com/toshiwd/moomoo-like-sub001/internal/models"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Backend *client.Client
	Probe   *readiness.Probe
	Store   *store.Store

	// HTTP handlers
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	ReadinessHandler *handlers.ReadinessHandler
	ScreenHandler    *handlers.ScreenHandler
	FavoritesHandler *handlers.FavoritesHandler
	EventsHandler    *handlers.EventsHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies and starts the
// readiness probe.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	timeout, err := time.ParseDuration(cfg.Backend.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}
	a.Backend = client.New(cfg.Backend.URL, timeout)

	a.Probe = readiness.New(
		func(ctx context.Context) (models.HealthReport, int, error) {
			return a.Backend.Health(ctx)
		},
		logger,
		readiness.Options{},
	)
	a.Store = store.New(a.Backend, logger)

	a.initHandlers()

	a.Probe.Start()

	logger.Info().
		Str("backend", cfg.Backend.URL).
		Int("batch_size", cfg.Screen.BatchSize).
		Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Probe)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ReadinessHandler = handlers.NewReadinessHandler(a.Logger, a.Probe)
	a.ScreenHandler = handlers.NewScreenHandler(a.Logger, a.Probe, a.Store, a.Config.Screen.BatchSize)
	a.FavoritesHandler = handlers.NewFavoritesHandler(a.Logger, a.Store)
	a.EventsHandler = handlers.NewEventsHandler(a.Logger, a.Probe, a.Store)
	a.MCPHandler = mcp.NewHandler(a.Logger, a.Probe, a.Store)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
