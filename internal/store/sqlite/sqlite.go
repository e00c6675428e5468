// Package sqlite persists the game world in a local SQLite file, for single
// player installs that do not run PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"estates/internal/estate"
	"estates/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Repository = (*Repository)(nil)

type Repository struct {
	db    *sql.DB
	clock estate.Clock
}

// Open opens (creating when needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, clock estate.Clock) (*Repository, error) {
	if clock == nil {
		clock = estate.SystemClock()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection per process. Other processes sharing the file are
	// handled by WAL readers and the busy timeout.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	r := &Repository{db: db, clock: clock}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// BusyTimeout is how long a statement waits on a lock held by another
// process before failing with SQLITE_BUSY.
const BusyTimeout = 5 * time.Second

func dsn(path string) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, BusyTimeout.Milliseconds())
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) Load(ctx context.Context) (*store.World, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := r.ensureSingletons(ctx, tx); err != nil {
		return nil, err
	}

	w := &store.World{}
	if err := loadState(ctx, tx, &w.State); err != nil {
		return nil, fmt.Errorf("load game state: %w", err)
	}
	if err := loadStats(ctx, tx, &w.Stats); err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if w.Properties, err = loadProperties(ctx, tx); err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	if w.People, err = loadPeople(ctx, tx); err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	if w.Contracts, err = loadContracts(ctx, tx); err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	if w.Events, err = loadEvents(ctx, tx); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if w.Loans, err = loadLoans(ctx, tx); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return w, nil
}

// ensureSingletons seeds the state and statistics rows of a fresh database.
// Once they exist it only reads, so loads never take the write lock.
func (r *Repository) ensureSingletons(ctx context.Context, tx *sql.Tx) error {
	var seeded int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM game_state WHERE id = 1) + (SELECT COUNT(*) FROM player_statistics WHERE id = 1)
	`).Scan(&seeded)
	if err != nil {
		return fmt.Errorf("check game state: %w", err)
	}
	if seeded == 2 {
		return nil
	}

	fresh := store.NewWorld(r.clock.Now())
	st := fresh.State
	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_state (
			id, version, balance_micros, current_round, last_round_at, created_at,
			net_worth_micros, base_interest_rate, property_tax_rate
		)
		VALUES (1, 1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, st.BalanceMicros, st.CurrentRound, ts(st.LastRoundAt), ts(st.CreatedAt), st.NetWorthMicros, st.BaseInterestRate, st.PropertyTaxRate)
	if err != nil {
		return fmt.Errorf("seed game state: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO player_statistics (id, highest_balance_micros, net_worth_micros, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, fresh.Stats.HighestBalanceMicros, fresh.Stats.NetWorthMicros, ts(fresh.Stats.UpdatedAt))
	if err != nil {
		return fmt.Errorf("seed statistics: %w", err)
	}
	return nil
}

func (r *Repository) Commit(ctx context.Context, w *store.World) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	st := w.State
	var endedAt sql.NullString
	if st.EndedAt != nil {
		endedAt = sql.NullString{String: ts(*st.EndedAt), Valid: true}
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE game_state
		SET version = version + 1,
			balance_micros = ?,
			current_round = ?,
			last_round_at = ?,
			created_at = ?,
			net_worth_micros = ?,
			base_interest_rate = ?,
			property_tax_rate = ?,
			last_tax_round = ?,
			last_maintenance_round = ?,
			paused = ?,
			won = ?,
			lost = ?,
			ended_at = ?,
			message = ?
		WHERE id = 1 AND version = ?
	`, st.BalanceMicros, st.CurrentRound, ts(st.LastRoundAt), ts(st.CreatedAt), st.NetWorthMicros,
		st.BaseInterestRate, st.PropertyTaxRate, st.LastTaxRound, st.LastMaintenanceRound,
		st.Paused, st.Won, st.Lost, endedAt, st.Message, st.Version)
	if err != nil {
		return fmt.Errorf("update game state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrStaleWorld
	}

	if w.Wiped() {
		for _, table := range []string{"properties", "people", "rental_contracts", "market_events", "loans", "transactions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("wipe %s: %w", table, err)
			}
		}
	}
	for _, id := range w.RemovedProperties() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete property: %w", err)
		}
	}
	for _, id := range w.RemovedPeople() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
	}
	if err := writeStats(ctx, tx, &w.Stats); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	for _, p := range w.Properties {
		if err := writeProperty(ctx, tx, p); err != nil {
			return fmt.Errorf("write property %s: %w", p.ID, err)
		}
	}
	for _, p := range w.People {
		if err := writePerson(ctx, tx, p); err != nil {
			return fmt.Errorf("write person %s: %w", p.ID, err)
		}
	}
	for _, c := range w.Contracts {
		if err := writeContract(ctx, tx, c); err != nil {
			return fmt.Errorf("write contract %s: %w", c.ID, err)
		}
	}
	for _, e := range w.Events {
		if err := writeEvent(ctx, tx, e); err != nil {
			return fmt.Errorf("write event %s: %w", e.ID, err)
		}
	}
	for _, l := range w.Loans {
		if err := writeLoan(ctx, tx, l); err != nil {
			return fmt.Errorf("write loan %s: %w", l.ID, err)
		}
	}
	for _, t := range w.Pending() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, property_id, kind, amount_micros, details, round_number, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.PropertyID, string(t.Kind), t.AmountMicros, t.Details, t.Round, ts(t.At))
		if err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	w.MarkCommitted(st.Version + 1)
	return nil
}

func (r *Repository) Transactions(ctx context.Context, limit int) ([]estate.PropertyTransaction, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, property_id, kind, amount_micros, details, round_number, created_at
		FROM transactions
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]estate.PropertyTransaction, 0, limit)
	for rows.Next() {
		var (
			t        estate.PropertyTransaction
			kind, at string
		)
		if err := rows.Scan(&t.ID, &t.PropertyID, &kind, &t.AmountMicros, &t.Details, &t.Round, &at); err != nil {
			return nil, err
		}
		t.Kind = estate.TransactionKind(kind)
		if t.At, err = parseTS(at); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
