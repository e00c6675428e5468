package store

import (
	"context"
	"sync"

	"estates/internal/estate"
)

var _ Repository = (*Memory)(nil)

// Memory is a process-local Repository used by tests and the "memory" backend.
type Memory struct {
	mu     sync.Mutex
	clock  estate.Clock
	world  *World
	ledger []estate.PropertyTransaction
}

func NewMemory(clock estate.Clock) *Memory {
	if clock == nil {
		clock = estate.SystemClock()
	}
	return &Memory{clock: clock}
}

func (m *Memory) Load(_ context.Context) (*World, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.world == nil {
		m.world = NewWorld(m.clock.Now())
		m.world.State.Version = 1
	}
	return m.world.Clone(), nil
}

func (m *Memory) Commit(_ context.Context, w *World) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.world == nil {
		m.world = NewWorld(m.clock.Now())
		m.world.State.Version = 1
	}
	if w.State.Version != m.world.State.Version {
		return ErrStaleWorld
	}
	if w.Wiped() {
		m.ledger = nil
	}
	m.ledger = append(m.ledger, w.Pending()...)

	next := w.Clone()
	next.State.Version++
	m.world = next

	w.MarkCommitted(next.State.Version)
	return nil
}

func (m *Memory) Transactions(_ context.Context, limit int) ([]estate.PropertyTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		return nil, nil
	}
	out := make([]estate.PropertyTransaction, 0, limit)
	for i := len(m.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.ledger[i])
	}
	return out, nil
}
