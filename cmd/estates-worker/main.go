package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"estates/internal/config"
	"estates/internal/db"
	"estates/internal/estate"
	"estates/internal/game"
	"estates/internal/notify"
	"estates/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	clock := estate.SystemClock()
	repo, closeStore, err := db.Open(ctx, cfg, clock, logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	publisher, err := notify.Connect(ctx, cfg.RedisURL, cfg.RedisChannel, logger)
	if err != nil {
		logger.Error("redis connect failed", "err", err)
		os.Exit(1)
	}
	defer publisher.Close()

	svc := game.NewService(repo, logger, game.Options{
		Rand:              estate.NewSource(cfg.Seed),
		Clock:             clock,
		StaleListingAfter: cfg.StaleListingAfter,
	})
	w := worker.New(svc, publisher, cfg.RoundEvery, logger)

	if cfg.RunOnce {
		if err := w.Tick(ctx); err != nil {
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}
	w.Run(ctx)
}
