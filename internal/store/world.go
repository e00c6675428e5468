// Package store holds the entity snapshot a round or player action works on
// and the repository abstraction that loads and persists it.
package store

import (
	"context"
	"errors"
	"time"

	"estates/internal/estate"

	"github.com/google/uuid"
)

// ErrStaleWorld is returned by Commit when another writer committed after the
// world was loaded.
var ErrStaleWorld = errors.New("world changed since it was loaded")

type Repository interface {
	// Load returns a snapshot of every entity collection. The singleton game
	// state and statistics are created with their defaults when absent.
	Load(ctx context.Context) (*World, error)
	// Commit atomically persists the world and its pending changes.
	Commit(ctx context.Context, w *World) error
	// Transactions returns up to limit ledger rows, newest first.
	Transactions(ctx context.Context, limit int) ([]estate.PropertyTransaction, error)
}

// World is the in-memory unit of work. Entities are mutated in place through
// the pointers it hands out; creations, deletions and ledger appends are
// tracked so a repository can persist them in one commit.
type World struct {
	State estate.GameState
	Stats estate.PlayerStatistics

	Properties []*estate.Property
	People     []*estate.Person
	Contracts  []*estate.RentalContract
	Events     []*estate.MarketEvent
	Loans      []*estate.Loan

	pending           []estate.PropertyTransaction
	removedProperties []uuid.UUID
	removedPeople     []uuid.UUID
	wiped             bool
}

// NewWorld returns an empty world with a fresh game state.
func NewWorld(now time.Time) *World {
	w := &World{State: estate.NewGameState(now)}
	w.Stats.HighestBalanceMicros = w.State.BalanceMicros
	w.Stats.NetWorthMicros = w.State.NetWorthMicros
	w.Stats.UpdatedAt = now
	return w
}

func (w *World) AddProperty(p *estate.Property) *estate.Property {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	w.Properties = append(w.Properties, p)
	return p
}

func (w *World) AddPerson(p *estate.Person) *estate.Person {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	w.People = append(w.People, p)
	return p
}

func (w *World) AddContract(c *estate.RentalContract) *estate.RentalContract {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	w.Contracts = append(w.Contracts, c)
	return c
}

func (w *World) AddEvent(e *estate.MarketEvent) *estate.MarketEvent {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	w.Events = append(w.Events, e)
	return e
}

func (w *World) AddLoan(l *estate.Loan) *estate.Loan {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	w.Loans = append(w.Loans, l)
	return l
}

// Record appends an immutable ledger row stamped with the current round.
func (w *World) Record(kind estate.TransactionKind, propertyID *uuid.UUID, amountMicros int64, details string, at time.Time) {
	var pid *uuid.UUID
	if propertyID != nil {
		id := *propertyID
		pid = &id
	}
	w.pending = append(w.pending, estate.PropertyTransaction{
		ID:           uuid.New(),
		PropertyID:   pid,
		Kind:         kind,
		AmountMicros: amountMicros,
		Details:      details,
		Round:        w.State.CurrentRound,
		At:           at,
	})
}

func (w *World) Property(id uuid.UUID) *estate.Property {
	for _, p := range w.Properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (w *World) Person(id uuid.UUID) *estate.Person {
	for _, p := range w.People {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PropertiesWhere returns matching properties in store order.
func (w *World) PropertiesWhere(pred func(*estate.Property) bool) []*estate.Property {
	var out []*estate.Property
	for _, p := range w.Properties {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func (w *World) CountProperties(pred func(*estate.Property) bool) int {
	n := 0
	for _, p := range w.Properties {
		if pred(p) {
			n++
		}
	}
	return n
}

func (w *World) PeopleWhere(pred func(*estate.Person) bool) []*estate.Person {
	var out []*estate.Person
	for _, p := range w.People {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

func (w *World) OwnedProperties() []*estate.Property {
	return w.PropertiesWhere(func(p *estate.Property) bool { return p.OwnedByPlayer })
}

func (w *World) ActiveContracts() []*estate.RentalContract {
	var out []*estate.RentalContract
	for _, c := range w.Contracts {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

func (w *World) ActiveEvents() []*estate.MarketEvent {
	var out []*estate.MarketEvent
	for _, e := range w.Events {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) ActiveLoans() []*estate.Loan {
	var out []*estate.Loan
	for _, l := range w.Loans {
		if l.Active {
			out = append(out, l)
		}
	}
	return out
}

// RemovePropertiesWhere deletes matching properties and returns how many went.
func (w *World) RemovePropertiesWhere(pred func(*estate.Property) bool) int {
	kept := w.Properties[:0]
	removed := 0
	for _, p := range w.Properties {
		if pred(p) {
			w.removedProperties = append(w.removedProperties, p.ID)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	clear(w.Properties[len(kept):])
	w.Properties = kept
	return removed
}

func (w *World) RemovePeopleWhere(pred func(*estate.Person) bool) int {
	kept := w.People[:0]
	removed := 0
	for _, p := range w.People {
		if pred(p) {
			w.removedPeople = append(w.removedPeople, p.ID)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	clear(w.People[len(kept):])
	w.People = kept
	return removed
}

// Wipe deletes every entity and the ledger and restores the initial game
// state. The version is kept so the wipe commits like any other change.
func (w *World) Wipe(now time.Time) {
	version := w.State.Version
	fresh := NewWorld(now)
	*w = *fresh
	w.State.Version = version
	w.wiped = true
}

// Pending returns ledger rows appended since the world was loaded.
func (w *World) Pending() []estate.PropertyTransaction { return w.pending }

func (w *World) RemovedProperties() []uuid.UUID { return w.removedProperties }

func (w *World) RemovedPeople() []uuid.UUID { return w.removedPeople }

// Wiped reports whether Wipe was called; the repository must then drop every
// stored row before writing the world.
func (w *World) Wiped() bool { return w.wiped }

// MarkCommitted adopts the version a repository stored and forgets the
// changes that were just persisted.
func (w *World) MarkCommitted(version int64) {
	w.State.Version = version
	w.pending = nil
	w.removedProperties = nil
	w.removedPeople = nil
	w.wiped = false
}

// Clone deep-copies the committed entity state without pending changes.
func (w *World) Clone() *World {
	out := &World{State: w.State, Stats: w.Stats}
	if w.State.EndedAt != nil {
		t := *w.State.EndedAt
		out.State.EndedAt = &t
	}
	for _, p := range w.Properties {
		cp := *p
		if p.TenantID != nil {
			id := *p.TenantID
			cp.TenantID = &id
		}
		out.Properties = append(out.Properties, &cp)
	}
	for _, p := range w.People {
		cp := *p
		if p.AltSafety != nil {
			s := *p.AltSafety
			cp.AltSafety = &s
		}
		out.People = append(out.People, &cp)
	}
	for _, c := range w.Contracts {
		cp := *c
		out.Contracts = append(out.Contracts, &cp)
	}
	for _, e := range w.Events {
		cp := *e
		out.Events = append(out.Events, &cp)
	}
	for _, l := range w.Loans {
		cp := *l
		out.Loans = append(out.Loans, &cp)
	}
	return out
}
