package game

import (
	"context"
	"errors"
	"testing"

	"estates/internal/estate"
	"estates/internal/store"

	"github.com/google/uuid"
)

func TestBuyDebitsBalanceAndRecordsPurchase(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var id uuid.UUID
	seed(t, repo, func(w *store.World) {
		id = w.AddProperty(listing("AR", estate.House, estate.Moderate, units(9_000))).ID
	})

	v, err := svc.Buy(context.Background(), id)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if v.Status != string(estate.Owned) {
		t.Fatalf("status=%s want owned", v.Status)
	}
	w := load(t, repo)
	if w.State.BalanceMicros != units(1_000) {
		t.Fatalf("balance=%d want 1000", w.State.BalanceMicros)
	}
	if w.Stats.PropertiesBought != 1 || w.Stats.MoneySpentMicros != units(9_000) {
		t.Fatalf("stats not updated: %+v", w.Stats)
	}
	txs, err := svc.Transactions(context.Background(), 10)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].AmountMicros != -units(9_000) || txs[0].Kind != string(estate.TxPurchase) {
		t.Fatalf("unexpected ledger: %+v", txs)
	}
	if txs[0].Details != "Purchased house in AR" {
		t.Fatalf("details=%q", txs[0].Details)
	}
}

func TestBuyRefusals(t *testing.T) {
	tests := []struct {
		name    string
		price   int64
		status  estate.EstateStatus
		paused  bool
		missing bool
		want    error
	}{
		{name: "too expensive", price: units(20_000), status: estate.ForSale, want: ErrInsufficientFunds},
		{name: "not listed", price: units(1_000), status: estate.Owned, want: ErrNotForSale},
		{name: "paused", price: units(1_000), status: estate.ForSale, paused: true, want: ErrGamePaused},
		{name: "unknown", missing: true, want: ErrPropertyNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			id := uuid.New()
			seed(t, repo, func(w *store.World) {
				w.State.Paused = tc.paused
				if !tc.missing {
					p := listing("AR", estate.House, estate.Safe, tc.price)
					p.Status = tc.status
					id = w.AddProperty(p).ID
				}
			})
			before := load(t, repo)

			if _, err := svc.Buy(context.Background(), id); !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
			after := load(t, repo)
			if after.State.Version != before.State.Version || after.State.BalanceMicros != before.State.BalanceMicros {
				t.Fatalf("refused buy changed state")
			}
		})
	}
}

func TestSellToOffer(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var propID, buyerID, tenantID, pickyID uuid.UUID
	seed(t, repo, func(w *store.World) {
		propID = w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(100_000))).ID
		buyerID = w.AddPerson(&estate.Person{Name: "Ola", Role: estate.Buyer, County: "AR", DesiredType: estate.House, DesiredSafety: estate.Safe, OfferMicros: units(180_000), Active: true}).ID
		tenantID = w.AddPerson(&estate.Person{Role: estate.Tenant, County: "AR", DesiredType: estate.House, DesiredSafety: estate.Safe, Active: true}).ID
		pickyID = w.AddPerson(&estate.Person{Role: estate.Buyer, County: "TM", DesiredType: estate.House, DesiredSafety: estate.Safe, Active: true}).ID
	})
	ctx := context.Background()

	if _, err := svc.SellToOffer(ctx, tenantID, propID); !errors.Is(err, ErrWrongRole) {
		t.Fatalf("tenant err=%v", err)
	}
	if _, err := svc.SellToOffer(ctx, pickyID, propID); !errors.Is(err, ErrOfferMismatch) {
		t.Fatalf("mismatch err=%v", err)
	}
	amount, err := svc.SellToOffer(ctx, buyerID, propID)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if amount != units(180_000) {
		t.Fatalf("amount=%d", amount)
	}
	w := load(t, repo)
	p := w.Property(propID)
	if p.OwnedByPlayer || p.Status != estate.ForSale {
		t.Fatalf("property not released: %+v", p)
	}
	if w.Person(buyerID).Active {
		t.Fatalf("buyer should be consumed")
	}
	if w.State.BalanceMicros != estate.StartingBalanceMicros+units(180_000) || w.Stats.PropertiesSold != 1 {
		t.Fatalf("sale not booked: balance=%d sold=%d", w.State.BalanceMicros, w.Stats.PropertiesSold)
	}
	if _, err := svc.SellToOffer(ctx, buyerID, propID); !errors.Is(err, ErrOfferInactive) {
		t.Fatalf("second sale err=%v", err)
	}
}

func TestRentToTenantUsesHigherRent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var propID, tenantID uuid.UUID
	seed(t, repo, func(w *store.World) {
		propID = w.AddProperty(ownedProperty("AR", estate.Apartment, estate.Risky, units(50_000))).ID
		tenantID = w.AddPerson(&estate.Person{Name: "Noa", Role: estate.Tenant, County: "AR", DesiredType: estate.Apartment, DesiredSafety: estate.Risky, OfferMicros: units(900), Active: true}).ID
	})
	ctx := context.Background()

	if err := svc.RentToTenant(ctx, tenantID, propID, 5); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err=%v want invalid duration", err)
	}
	if err := svc.RentToTenant(ctx, tenantID, propID, 6); err != nil {
		t.Fatalf("rent: %v", err)
	}
	w := load(t, repo)
	if len(w.Contracts) != 1 {
		t.Fatalf("contracts=%d want 1", len(w.Contracts))
	}
	c := w.Contracts[0]
	if c.MonthlyRentMicros != units(900) || c.MonthsRemaining != 6 || !c.Active {
		t.Fatalf("unexpected contract: %+v", c)
	}
	if p := w.Property(propID); p.Status != estate.Rented || p.TenantID == nil || *p.TenantID != tenantID {
		t.Fatalf("property not let: %+v", p)
	}
	if _, err := svc.SellAtMarket(ctx, propID); !errors.Is(err, ErrAlreadyRented) {
		t.Fatalf("selling a let property err=%v", err)
	}
}

func TestRentOutCreatesWalkInTenant(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var propID uuid.UUID
	seed(t, repo, func(w *store.World) {
		propID = w.AddProperty(ownedProperty("B", estate.House, estate.Safe, units(100_000))).ID
	})

	if err := svc.RentOut(context.Background(), RentOutInput{PropertyID: propID, Months: 12}); err != nil {
		t.Fatalf("rent out: %v", err)
	}
	w := load(t, repo)
	if len(w.People) != 1 {
		t.Fatalf("people=%d want 1", len(w.People))
	}
	tenant := w.People[0]
	if tenant.Active || tenant.Name != "Tenant #"+propID.String()[:8] {
		t.Fatalf("unexpected tenant: %+v", tenant)
	}
	if w.Contracts[0].MonthlyRentMicros != units(800) {
		t.Fatalf("rent=%d want 800", w.Contracts[0].MonthlyRentMicros)
	}
}

func TestRenovate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var propID uuid.UUID
	seed(t, repo, func(w *store.World) {
		propID = w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(100_000))).ID
		w.State.BalanceMicros = units(7)
	})
	ctx := context.Background()

	level, err := svc.Renovate(ctx, propID)
	if err != nil || level != 1 {
		t.Fatalf("renovate level=%d err=%v", level, err)
	}
	if _, err := svc.Renovate(ctx, propID); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err=%v want insufficient funds", err)
	}
	w := load(t, repo)
	if w.State.BalanceMicros != units(2) || w.Property(propID).RenovationLevel != 1 {
		t.Fatalf("balance=%d level=%d", w.State.BalanceMicros, w.Property(propID).RenovationLevel)
	}
}

func TestSetRentAndPriceBounds(t *testing.T) {
	svc, repo, _ := newTestService(t)
	var propID uuid.UUID
	seed(t, repo, func(w *store.World) {
		propID = w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(100_000))).ID
	})
	ctx := context.Background()

	if err := svc.SetRent(ctx, propID, units(9)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err=%v", err)
	}
	if err := svc.SetSalePrice(ctx, propID, units(1_000_001)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err=%v", err)
	}
	if err := svc.SetRent(ctx, propID, units(1_200)); err != nil {
		t.Fatalf("set rent: %v", err)
	}
	if err := svc.SetSalePrice(ctx, propID, units(120_000)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	p := load(t, repo).Property(propID)
	if p.MonthlyRentMicros != units(1_200) || p.PriceMicros != units(120_000) || p.MarketValueMicros != units(120_000) {
		t.Fatalf("unexpected property: %+v", p)
	}
}

func TestQuickBuy(t *testing.T) {
	svc, repo, _ := newTestService(t)

	v, err := svc.QuickBuy(context.Background())
	if err != nil {
		t.Fatalf("quick buy: %v", err)
	}
	if v.PriceMicros < StarterFloorMicros || v.PriceMicros > StarterCeilingMicros {
		t.Fatalf("price=%d", v.PriceMicros)
	}
	w := load(t, repo)
	if w.State.BalanceMicros != estate.StartingBalanceMicros-v.PriceMicros {
		t.Fatalf("balance=%d", w.State.BalanceMicros)
	}
	if p := w.Property(v.ID); p == nil || !p.OwnedByPlayer || p.Status != estate.Owned {
		t.Fatalf("starter not owned: %+v", p)
	}
}

func TestQuickBuyNeedsStarterFloor(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		want    error
	}{
		{name: "far below", balance: units(999), want: ErrNothingAffordable},
		{name: "just below floor", balance: StarterFloorMicros - 1, want: ErrNothingAffordable},
		{name: "exactly floor", balance: StarterFloorMicros},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			seed(t, repo, func(w *store.World) { w.State.BalanceMicros = tc.balance })

			v, err := svc.QuickBuy(context.Background())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
			if tc.want == nil && v.PriceMicros != StarterFloorMicros {
				t.Fatalf("price=%d want %d", v.PriceMicros, StarterFloorMicros)
			}
		})
	}
}

func TestTakeLoan(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.TakeLoan(ctx, LoanInput{AmountMicros: MaxLoanMicros + 1, Months: 12}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err=%v", err)
	}
	if _, err := svc.TakeLoan(ctx, LoanInput{AmountMicros: units(1_000), Months: 0}); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err=%v", err)
	}
	v, err := svc.TakeLoan(ctx, LoanInput{AmountMicros: units(12_000), Months: 12, Purpose: "Expansion"})
	if err != nil {
		t.Fatalf("take loan: %v", err)
	}
	if v.InterestRate != estate.DefaultInterestRate || v.MonthsRemaining != 12 {
		t.Fatalf("unexpected loan: %+v", v)
	}
	w := load(t, repo)
	if w.State.BalanceMicros != estate.StartingBalanceMicros+units(12_000) {
		t.Fatalf("balance=%d", w.State.BalanceMicros)
	}
	if w.State.NetWorthMicros != estate.StartingBalanceMicros {
		t.Fatalf("borrowing must not change net worth: %d", w.State.NetWorthMicros)
	}
}

func TestTogglePauseAndReset(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.QuickBuy(ctx); err != nil {
		t.Fatalf("quick buy: %v", err)
	}

	paused, err := svc.TogglePause(ctx)
	if err != nil || !paused {
		t.Fatalf("paused=%v err=%v", paused, err)
	}
	if _, err := svc.QuickBuy(ctx); !errors.Is(err, ErrGamePaused) {
		t.Fatalf("err=%v want paused", err)
	}
	if paused, err = svc.TogglePause(ctx); err != nil || paused {
		t.Fatalf("paused=%v err=%v", paused, err)
	}

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	w := load(t, repo)
	if len(w.Properties) != 0 || w.State.BalanceMicros != estate.StartingBalanceMicros || w.State.CurrentRound != 1 {
		t.Fatalf("reset left state behind: %+v", w.State)
	}
	txs, err := svc.Transactions(ctx, 10)
	if err != nil || len(txs) != 0 {
		t.Fatalf("ledger not cleared: %v %v", txs, err)
	}
}

func TestMarketSortsByPriceThenNewest(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seed(t, repo, func(w *store.World) {
		a := w.AddProperty(listing("AR", estate.House, estate.Safe, units(5_000)))
		a.ListedAt = testNow.Add(-10)
		w.AddProperty(listing("AR", estate.House, estate.Safe, units(3_000)))
		b := w.AddProperty(listing("TM", estate.House, estate.Safe, units(5_000)))
		b.Address = "newest"
		w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(1_000)))
	})

	got, err := svc.Market(context.Background(), MarketFilter{})
	if err != nil {
		t.Fatalf("market: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listings=%d want 3", len(got))
	}
	if got[0].PriceMicros != units(3_000) || got[1].Address != "newest" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got, err = svc.Market(context.Background(), MarketFilter{County: "TM"})
	if err != nil || len(got) != 1 {
		t.Fatalf("filtered listings=%d err=%v", len(got), err)
	}
}

func TestDashboardSummarizesHoldings(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seed(t, repo, func(w *store.World) {
		w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(40_000)))
		w.AddLoan(&estate.Loan{PrincipalMicros: units(5_000), Active: true})
		w.AddPerson(&estate.Person{Role: estate.Buyer, Active: true})
	})

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.PropertyValueMicros != units(40_000) || d.DebtMicros != units(5_000) || d.ActiveOffers != 1 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
	if len(d.Owned) != 1 || len(d.Loans) != 1 {
		t.Fatalf("owned=%d loans=%d", len(d.Owned), len(d.Loans))
	}
}
