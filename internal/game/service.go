package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

// DefaultStaleListingAfter is how long an unsold NPC listing stays on the market.
const DefaultStaleListingAfter = 100 * time.Second

type Options struct {
	Rand              estate.Source
	Clock             estate.Clock
	StaleListingAfter time.Duration
}

type Service struct {
	store      store.Repository
	log        *slog.Logger
	mu         sync.Mutex
	rand       estate.Source
	clock      estate.Clock
	staleAfter time.Duration
}

func NewService(repo store.Repository, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Rand == nil {
		opts.Rand = estate.NewSource(0)
	}
	if opts.Clock == nil {
		opts.Clock = estate.SystemClock()
	}
	if opts.StaleListingAfter <= 0 {
		opts.StaleListingAfter = DefaultStaleListingAfter
	}
	return &Service{
		store:      repo,
		log:        logger.With("component", "game"),
		rand:       opts.Rand,
		clock:      opts.Clock,
		staleAfter: opts.StaleListingAfter,
	}
}

func (s *Service) nextFloat() float64 {
	return s.rand.Float64()
}

func (s *Service) intn(n int) int {
	return estate.Intn(s.rand, n)
}

// mutate loads the world, applies fn and commits the result. Nothing is
// persisted when fn fails.
func (s *Service) mutate(ctx context.Context, fn func(w *store.World, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}
	if err := fn(w, s.clock.Now()); err != nil {
		return err
	}
	if err := s.store.Commit(ctx, w); err != nil {
		return fmt.Errorf("commit world: %w", err)
	}
	return nil
}

// playing is mutate for actions that are refused while the game is paused.
func (s *Service) playing(ctx context.Context, fn func(w *store.World, now time.Time) error) error {
	return s.mutate(ctx, func(w *store.World, now time.Time) error {
		if w.State.Paused {
			return ErrGamePaused
		}
		return fn(w, now)
	})
}

func (s *Service) snapshot(ctx context.Context) (*store.World, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	return w, nil
}
