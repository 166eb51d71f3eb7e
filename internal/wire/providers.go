package wire

import (
	"io"
	"os"

	"github.com/google/wire"

	"github.com/patrol-ci/patrol/internal/app"
	"github.com/patrol-ci/patrol/internal/config"
	"github.com/patrol-ci/patrol/internal/db"
	"github.com/patrol-ci/patrol/internal/jobs"
	"github.com/patrol-ci/patrol/internal/logger"
	"github.com/patrol-ci/patrol/internal/server"
	"github.com/patrol-ci/patrol/internal/storage"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	logger.NewLogger,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	jobs.NewDispatcher,
	jobs.NewReviewJob,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
	provideMaxWorkers,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.Logging.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, _ := os.OpenFile("patrol.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		return f
	default:
		return os.Stdout
	}
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideMaxWorkers(cfg *config.Config) int {
	return cfg.MaxWorkers
}
