package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"estates/internal/estate"
	"estates/internal/store"

	"github.com/google/uuid"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "estates.db"), fixedClock(testNow))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadSeedsDefaults(t *testing.T) {
	repo := openTemp(t)
	w, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.State.Version != 1 || w.State.BalanceMicros != estate.StartingBalanceMicros || w.State.CurrentRound != 1 {
		t.Fatalf("unexpected default state: %+v", w.State)
	}
	if !w.State.CreatedAt.Equal(testNow) {
		t.Fatalf("created_at got=%s want=%s", w.State.CreatedAt, testNow)
	}
}

func TestCommitRoundTripsEntities(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	w, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tenant := uuid.New()
	alt := estate.Risky
	prop := w.AddProperty(&estate.Property{
		Address: "12 Oak Ave", City: "Lakeside", County: "CT",
		Location: estate.Center, Type: estate.House, Safety: estate.Safe, Status: estate.Rented,
		PriceMicros: 150_000 * estate.MicrosPerUnit, MarketValueMicros: 151_000 * estate.MicrosPerUnit,
		OwnedByPlayer: true, TenantID: &tenant, Bedrooms: 3, Bathrooms: 2, SquareFeet: 1800,
		CreatedAt: testNow, ListedAt: testNow, PurchasedAt: testNow,
	})
	w.AddPerson(&estate.Person{ID: tenant, Name: "Riley", Role: estate.Tenant, County: "CT",
		DesiredType: estate.House, DesiredSafety: estate.Safe, AltSafety: &alt, Active: true, AppearedAt: testNow, Round: 1})
	w.AddContract(&estate.RentalContract{PropertyID: prop.ID, TenantID: tenant, DurationMonths: 6, MonthsRemaining: 6,
		StartedAt: testNow, EndsAt: testNow.AddDate(0, 6, 0), LastRentAt: testNow, LeaveChance: 0.15, Active: true})
	w.AddEvent(&estate.MarketEvent{Kind: estate.EconomicBoom, Title: "Economic Boom!", Multiplier: 1.15,
		Duration: 4, Remaining: 4, OccurredAt: testNow, Active: true})
	w.AddLoan(&estate.Loan{Purpose: "bridge", PrincipalMicros: 5_000 * estate.MicrosPerUnit, InterestRate: 0.05,
		DurationMonths: 12, MonthsRemaining: 12, StartedAt: testNow, EndsAt: testNow.AddDate(1, 0, 0), Active: true})
	ended := testNow.Add(time.Minute)
	w.State.EndedAt = &ended
	w.State.Won = true
	w.Record(estate.TxPurchase, &prop.ID, -150_000*estate.MicrosPerUnit, "bought", testNow)

	if err := repo.Commit(ctx, w); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if w.State.Version != 2 {
		t.Fatalf("version after commit got=%d want 2", w.State.Version)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.Properties) != 1 || got.Properties[0].TenantID == nil || *got.Properties[0].TenantID != tenant {
		t.Fatalf("property did not round-trip: %+v", got.Properties)
	}
	if got.Properties[0].Safety != estate.Safe || got.Properties[0].Status != estate.Rented || !got.Properties[0].OwnedByPlayer {
		t.Fatalf("property enums did not round-trip: %+v", got.Properties[0])
	}
	if len(got.People) != 1 || got.People[0].AltSafety == nil || *got.People[0].AltSafety != estate.Risky {
		t.Fatalf("person did not round-trip: %+v", got.People)
	}
	if len(got.Contracts) != 1 || !got.Contracts[0].EndsAt.Equal(testNow.AddDate(0, 6, 0)) {
		t.Fatalf("contract did not round-trip: %+v", got.Contracts)
	}
	if len(got.Events) != 1 || got.Events[0].County != "" || got.Events[0].Kind != estate.EconomicBoom {
		t.Fatalf("event did not round-trip: %+v", got.Events)
	}
	if len(got.Loans) != 1 || !got.Loans[0].Active {
		t.Fatalf("loan did not round-trip: %+v", got.Loans)
	}
	if !got.State.Won || got.State.EndedAt == nil || !got.State.EndedAt.Equal(ended) {
		t.Fatalf("state did not round-trip: %+v", got.State)
	}

	rows, err := repo.Transactions(ctx, 5)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(rows) != 1 || rows[0].PropertyID == nil || *rows[0].PropertyID != prop.ID || rows[0].Kind != estate.TxPurchase {
		t.Fatalf("unexpected ledger: %+v", rows)
	}
}

func TestCommitRejectsStaleWorld(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	a, _ := repo.Load(ctx)
	b, _ := repo.Load(ctx)
	if err := repo.Commit(ctx, a); err != nil {
		t.Fatalf("commit a: %v", err)
	}
	if err := repo.Commit(ctx, b); !errors.Is(err, store.ErrStaleWorld) {
		t.Fatalf("expected ErrStaleWorld, got %v", err)
	}
}

func TestCommitDeletesRemovedAndWiped(t *testing.T) {
	ctx := context.Background()
	repo := openTemp(t)
	w, _ := repo.Load(ctx)
	a := w.AddProperty(&estate.Property{Status: estate.ForSale, CreatedAt: testNow, ListedAt: testNow})
	w.AddProperty(&estate.Property{Status: estate.ForSale, CreatedAt: testNow, ListedAt: testNow})
	w.Record(estate.TxTax, nil, -1, "tax", testNow)
	if err := repo.Commit(ctx, w); err != nil {
		t.Fatalf("commit: %v", err)
	}

	w.RemovePropertiesWhere(func(p *estate.Property) bool { return p.ID == a.ID })
	if err := repo.Commit(ctx, w); err != nil {
		t.Fatalf("commit removal: %v", err)
	}
	got, _ := repo.Load(ctx)
	if len(got.Properties) != 1 || got.Properties[0].ID == a.ID {
		t.Fatalf("removed property still stored: %+v", got.Properties)
	}

	got.Wipe(testNow)
	if err := repo.Commit(ctx, got); err != nil {
		t.Fatalf("commit wipe: %v", err)
	}
	after, _ := repo.Load(ctx)
	if len(after.Properties) != 0 {
		t.Fatalf("wipe left properties behind")
	}
	rows, _ := repo.Transactions(ctx, 10)
	if len(rows) != 0 {
		t.Fatalf("wipe left ledger rows behind: %+v", rows)
	}
}

func TestLoadAndCommitWaitForOtherWriter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "estates.db")
	repo, err := Open(ctx, path, fixedClock(testNow))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()
	if _, err := repo.Load(ctx); err != nil {
		t.Fatalf("seed load: %v", err)
	}

	other, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		t.Fatalf("open second handle: %v", err)
	}
	defer other.Close()
	conn, err := other.Conn(ctx)
	if err != nil {
		t.Fatalf("second connection: %v", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		t.Fatalf("take write lock: %v", err)
	}

	const hold = 200 * time.Millisecond
	released := make(chan error, 1)
	go func() {
		time.Sleep(hold)
		_, err := conn.ExecContext(ctx, "ROLLBACK")
		released <- err
	}()

	w, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load while another writer holds the lock: %v", err)
	}
	start := time.Now()
	w.State.BalanceMicros += estate.MicrosPerUnit
	if err := repo.Commit(ctx, w); err != nil {
		t.Fatalf("commit while another writer holds the lock: %v", err)
	}
	if waited := time.Since(start); waited < hold/2 {
		t.Fatalf("commit finished after %s, before the lock was released", waited)
	}
	if err := <-released; err != nil {
		t.Fatalf("release write lock: %v", err)
	}
}
