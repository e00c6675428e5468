// Package worker drives the round engine on a fixed period.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"estates/internal/game"
)

type Runner interface {
	RunRound(ctx context.Context) (game.RoundReport, error)
}

// Notifier receives every completed round. A nil Notifier is allowed.
type Notifier interface {
	Publish(ctx context.Context, rep game.RoundReport) error
}

type Worker struct {
	runner   Runner
	notifier Notifier
	every    time.Duration
	log      *slog.Logger
}

func New(runner Runner, notifier Notifier, every time.Duration, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		runner:   runner,
		notifier: notifier,
		every:    every,
		log:      logger.With("component", "worker"),
	}
}

// Run executes a round every period until ctx is cancelled. Failed rounds are
// logged and the next tick starts again from whatever was last committed.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	w.log.Info("worker started", "round_every", w.every.String())
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker shutdown")
			return
		case <-ticker.C:
			// A round in flight finishes its commit even when shutdown starts.
			_ = w.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick runs a single round and publishes its report.
func (w *Worker) Tick(ctx context.Context) (err error) {
	var rep game.RoundReport
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("round panicked: %v", r)
		}
		if err != nil {
			w.log.Error("round failed", "round", rep.Round, "err", err)
		}
	}()

	rep, err = w.runner.RunRound(ctx)
	if err != nil {
		return err
	}
	if rep.Skipped {
		return nil
	}
	if w.notifier != nil {
		if perr := w.notifier.Publish(ctx, rep); perr != nil {
			w.log.Warn("publish round failed", "round", rep.Round, "err", perr)
		}
	}
	return nil
}
