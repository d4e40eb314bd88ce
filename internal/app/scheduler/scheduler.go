// Package scheduler собирает воркер очистки неподтверждённых аккаунтов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mystery-message/internal/config"
	"github.com/magabrotheeeer/mystery-message/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/mystery-message/internal/services/scheduler"
	"github.com/magabrotheeeer/mystery-message/internal/storage"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	db               *storage.Storage
	interval         time.Duration
	logger           *slog.Logger
}

// waitForDB ждёт, пока основной сервис применит миграции.
func waitForDB(ctx context.Context, db *storage.Storage) error {
	for range dbReadyAttempts {
		if err := storage.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("cleanup interval must be positive, got %s", cfg.CleanupInterval)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		schedulerService: schedulerservice.NewService(db, cfg.Retention, logger),
		db:               db,
		interval:         cfg.CleanupInterval,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx, a.interval)

	a.logger.Info("shutting down scheduler service")
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
