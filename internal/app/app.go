// Package app initializes and orchestrates the main components of the Patrol
// application. It wires together the configuration, server, and other services.
package app

import (
	"context"
	"log/slog"

	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/core"
	"github.com/patrol-ci/patrol/internal/db"
	"github.com/patrol-ci/patrol/internal/server"
	"github.com/patrol-ci/patrol/internal/storage"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
	dbConn     *db.DB

	// Store is exposed for the CLI report command.
	Store storage.Store
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, dbConn *db.DB, store storage.Store, logger *slog.Logger) *App {
	logger.Info("initializing Patrol application",
		"server_port", cfg.Server.Port,
		"max_workers", cfg.MaxWorkers)

	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		logger:     logger,
		dispatcher: dispatcher,
		dbConn:     dbConn,
		Store:      store,
	}
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting Patrol",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.MaxWorkers)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down Patrol services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight jobs to finish.
	a.dispatcher.Stop()

	a.logger.Info("closing database connection")
	if err := a.dbConn.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}

	if serverErr != nil {
		a.logger.Error("Patrol stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Patrol stopped successfully")
	return nil
}
