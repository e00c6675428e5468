package game

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// scripted replays queued draws and then repeats fallback.
type scripted struct {
	draws    []float64
	fallback float64
}

func (s *scripted) Float64() float64 {
	if len(s.draws) == 0 {
		return s.fallback
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	return v
}

func (s *scripted) push(draws ...float64) { s.draws = append(s.draws, draws...) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func units(v int64) int64 { return v * estate.MicrosPerUnit }

func newTestService(t *testing.T) (*Service, *store.Memory, *scripted) {
	t.Helper()
	src := &scripted{fallback: 0.99}
	repo := store.NewMemory(fixedClock(testNow))
	svc := NewService(repo, quietLogger(), Options{Rand: src, Clock: fixedClock(testNow)})
	return svc, repo, src
}

// newTestWorld returns a bare world and a service for exercising round steps
// directly.
func newTestWorld(draws ...float64) (*Service, *store.World, *scripted) {
	src := &scripted{draws: draws, fallback: 0.99}
	svc := NewService(store.NewMemory(fixedClock(testNow)), quietLogger(), Options{Rand: src, Clock: fixedClock(testNow)})
	return svc, store.NewWorld(testNow), src
}

func seed(t *testing.T, repo store.Repository, fn func(w *store.World)) {
	t.Helper()
	ctx := context.Background()
	w, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	fn(w)
	if err := repo.Commit(ctx, w); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func load(t *testing.T, repo store.Repository) *store.World {
	t.Helper()
	w, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return w
}

func ownedProperty(county string, typ estate.EstateType, safety estate.SafetyLevel, price int64) *estate.Property {
	return &estate.Property{
		Address:           "1 Test St",
		City:              "Lakeside",
		County:            county,
		Location:          estate.AroundCity,
		Type:              typ,
		Safety:            safety,
		Status:            estate.Owned,
		OwnedByPlayer:     true,
		PriceMicros:       price,
		MarketValueMicros: price,
		MonthlyRentMicros: estate.ScaleMicros(price, 0.008),
		CreatedAt:         testNow,
		ListedAt:          testNow,
		PurchasedAt:       testNow,
	}
}

func listing(county string, typ estate.EstateType, safety estate.SafetyLevel, price int64) *estate.Property {
	p := ownedProperty(county, typ, safety, price)
	p.Status = estate.ForSale
	p.OwnedByPlayer = false
	p.PurchasedAt = time.Time{}
	return p
}
