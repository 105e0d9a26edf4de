package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/gophblog/internal/config"
	"github.com/iudanet/gophblog/internal/logger"
	"github.com/iudanet/gophblog/internal/server/storage"
	"github.com/iudanet/gophblog/internal/server/storage/boltdb"
	"github.com/iudanet/gophblog/internal/server/storage/postgres"
	"github.com/iudanet/gophblog/internal/server/storage/sqlite"
)

// loadConfig читает конфигурацию с учетом флагов команды и создает логгер.
// storageOnly проверяет только секцию storage.
func loadConfig(cmd *cobra.Command, storageOnly bool) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	validate := cfg.Validate
	if storageOnly {
		validate = cfg.ValidateStorage
	}
	if err := validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

// openStorage открывает хранилище выбранного драйвера.
// sqlite и postgres применяют миграции при открытии, вывод goose идет в log.
func openStorage(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Storage, error) {
	storage.UseMigrationLogger(log)

	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.DSN)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DSN)
	case config.DriverBolt:
		return boltdb.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
