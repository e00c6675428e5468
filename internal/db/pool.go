package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"estates/internal/config"
	"estates/internal/estate"
	"estates/internal/store"
	"estates/internal/store/postgres"
	"estates/internal/store/sqlite"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Open builds the repository selected by cfg.Store. The returned func
// releases its connections.
func Open(ctx context.Context, cfg config.Config, clock estate.Clock, logger *slog.Logger) (store.Repository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.New(pool, clock)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("store opened", "backend", cfg.Store)
		return repo, pool.Close, nil
	case config.StoreSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath, clock)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("store opened", "backend", cfg.Store, "path", cfg.SQLitePath)
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("close sqlite", "err", err)
			}
		}, nil
	case config.StoreMemory:
		logger.Warn("memory store selected, state is lost on exit")
		return store.NewMemory(clock), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
