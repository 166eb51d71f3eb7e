// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/patrol-ci/patrol/internal/app"
	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/db"
	"github.com/patrol-ci/patrol/internal/jobs"
	"github.com/patrol-ci/patrol/internal/logger"
	"github.com/patrol-ci/patrol/internal/server"
	"github.com/patrol-ci/patrol/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := cfg.Logging
	var logWriter io.Writer
	switch cfg.Logging.Output {
	case "stderr":
		logWriter = os.Stderr
	case "file":
		f, _ := os.OpenFile("patrol.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		logWriter = f
	default:
		logWriter = os.Stdout
	}
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	// Database
	dbConfig := &cfg.Database
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage
	store := storage.NewStore(dbConn.DB)

	// Review Job
	reviewJob := jobs.NewReviewJob(cfg, store, slogLogger)

	// Dispatcher
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxWorkers, slogLogger)

	// Server
	srv := server.NewServer(ctx, cfg, dispatcher, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, dispatcher, dbConn, store, slogLogger)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
