// Package notify publishes round reports to Redis so other processes can
// follow the game without polling the store.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"estates/internal/game"

	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

// Connect returns a nil Publisher when url is empty; a nil Publisher drops
// every report.
func Connect(ctx context.Context, url, channel string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notify")
	if url == "" {
		logger.Info("redis disabled, round reports are not published")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connection established", "channel", channel)
	return &Publisher{rdb: rdb, channel: channel, log: logger}, nil
}

// LatestKey is where the most recent report is kept for late subscribers.
func LatestKey(channel string) string { return channel + ":latest" }

func (p *Publisher) Publish(ctx context.Context, rep game.RoundReport) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode round report: %w", err)
	}
	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, LatestKey(p.channel), payload, 0)
	pipe.Publish(ctx, p.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish round %d: %w", rep.Round, err)
	}
	p.log.Debug("round published", "round", rep.Round)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
