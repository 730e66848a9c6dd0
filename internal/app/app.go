package app

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/common"
	"github.com/Esysc/ansible-ws-logging/internal/handlers"
	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
	"github.com/Esysc/ansible-ws-logging/internal/services/catalog"
	"github.com/Esysc/ansible-ws-logging/internal/services/content"
	"github.com/Esysc/ansible-ws-logging/internal/services/watcher"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	ctx       context.Context
	cancelCtx context.CancelFunc

	// Core services
	CatalogService interfaces.CatalogService
	ContentService interfaces.ContentService
	Reconciler     *watcher.Reconciler

	// HTTP handlers
	WSHandler   *handlers.WebSocketHandler
	LogsHandler *handlers.LogsHandler
	APIHandler  *handlers.APIHandler
	PageHandler *handlers.PageHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	logsDir := cfg.Logs.Dir

	app.CatalogService = catalog.NewService(logsDir, logger)
	app.ContentService = content.NewService(logger)

	// The WebSocket handler doubles as the Notifier the reconciler
	// broadcasts through, so it is created first and the monitor is
	// attached afterwards.
	app.WSHandler = handlers.NewWebSocketHandler(
		app.CatalogService,
		app.ContentService,
		logsDir,
		logger,
		&cfg.WebSocket,
	)

	app.Reconciler = watcher.NewReconciler(
		logsDir,
		cfg.PollInterval(),
		watcher.NewPollingSource(logsDir, logger),
		app.CatalogService,
		app.ContentService,
		app.WSHandler,
		logger,
	)
	app.WSHandler.SetMonitor(app.Reconciler, ctx)

	app.LogsHandler = handlers.NewLogsHandler(app.CatalogService, app.ContentService, logsDir, logger)
	app.APIHandler = handlers.NewAPIHandler(logger)
	app.PageHandler = handlers.NewPageHandler(logger)

	logger.Info().
		Str("logs_dir", logsDir).
		Dur("poll_interval", cfg.PollInterval()).
		Msg("Application initialized")

	return app, nil
}

// Close stops background work. The monitor loop, if started, exits on
// the context cancellation.
func (a *App) Close() {
	a.cancelCtx()
}
