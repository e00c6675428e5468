package game

import (
	"testing"

	"estates/internal/estate"
)

func TestApplyTaxes(t *testing.T) {
	tests := []struct {
		name        string
		round       int
		balance     int64
		wantPaid    int64
		wantSkipped bool
		wantLast    int
	}{
		{name: "not due", round: 5, balance: units(10_000), wantLast: 0},
		{name: "paid", round: 13, balance: units(10_000), wantPaid: units(300), wantLast: 13},
		{name: "unaffordable", round: 13, balance: units(100), wantSkipped: true, wantLast: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, w, _ := newTestWorld()
			w.State.CurrentRound = tc.round
			w.State.BalanceMicros = tc.balance
			w.AddProperty(ownedProperty("AR", estate.House, estate.Safe, units(100_000)))

			paid, skipped := svc.applyTaxes(w, w.OwnedProperties(), testNow)
			if paid != tc.wantPaid || skipped != tc.wantSkipped {
				t.Fatalf("paid=%d skipped=%v want %d %v", paid, skipped, tc.wantPaid, tc.wantSkipped)
			}
			if w.State.LastTaxRound != tc.wantLast {
				t.Fatalf("last tax round=%d want %d", w.State.LastTaxRound, tc.wantLast)
			}
			if w.State.BalanceMicros != tc.balance-tc.wantPaid {
				t.Fatalf("balance=%d want %d", w.State.BalanceMicros, tc.balance-tc.wantPaid)
			}
			if w.State.BalanceMicros < 0 {
				t.Fatalf("taxes drove balance negative")
			}
		})
	}
}

func TestApplyMaintenanceDegradesWhenUnaffordable(t *testing.T) {
	svc, w, _ := newTestWorld()
	w.State.CurrentRound = 6
	w.State.BalanceMicros = units(1_000)
	for i := 0; i < 3; i++ {
		p := w.AddProperty(ownedProperty("AR", estate.Apartment, estate.Safe, units(20_000)))
		p.MaintenanceMicros = units(100)
	}

	paid, missed := svc.applyMaintenance(w, w.OwnedProperties(), testNow)
	if paid != 0 || !missed {
		t.Fatalf("paid=%d missed=%v", paid, missed)
	}
	want := []estate.SafetyLevel{estate.Moderate, estate.Moderate, estate.Safe}
	for i, p := range w.Properties {
		if p.Safety != want[i] {
			t.Fatalf("property %d safety=%s want %s", i, p.Safety, want[i])
		}
	}
	if w.State.LastMaintenanceRound != 0 || w.State.BalanceMicros != units(1_000) {
		t.Fatalf("missed maintenance must not charge or advance the cycle")
	}

	w.State.BalanceMicros = units(5_000)
	paid, missed = svc.applyMaintenance(w, w.OwnedProperties(), testNow)
	if paid != units(1_800) || missed {
		t.Fatalf("paid=%d missed=%v want 1800", paid, missed)
	}
	if w.State.LastMaintenanceRound != 6 || w.Stats.MaintenancePaidMicros != units(1_800) {
		t.Fatalf("maintenance not recorded: %+v", w.State)
	}
}

func TestApplyLoans(t *testing.T) {
	svc, w, _ := newTestWorld()
	w.State.BalanceMicros = units(100)
	l := w.AddLoan(&estate.Loan{
		Purpose:              "Roof",
		PrincipalMicros:      units(10_000),
		MonthlyPaymentMicros: units(500),
		DurationMonths:       1,
		MonthsRemaining:      1,
		Active:               true,
	})

	paid, penalized := svc.applyLoans(w, testNow)
	if paid != 0 || penalized != 1 {
		t.Fatalf("paid=%d penalized=%d", paid, penalized)
	}
	if l.PrincipalMicros != units(10_500) || !l.Active {
		t.Fatalf("penalty not applied: %+v", l)
	}

	w.State.BalanceMicros = units(1_000)
	paid, penalized = svc.applyLoans(w, testNow)
	if paid != units(500) || penalized != 0 {
		t.Fatalf("paid=%d penalized=%d", paid, penalized)
	}
	if l.Active || l.MonthsRemaining != 0 || l.TotalPaidMicros != units(500) {
		t.Fatalf("loan not settled: %+v", l)
	}
	if w.State.BalanceMicros != units(500) {
		t.Fatalf("balance=%d want 500", w.State.BalanceMicros)
	}
}

func TestAppreciateOwnedProperties(t *testing.T) {
	p := ownedProperty("AR", estate.House, estate.Safe, units(100_000))
	p.PurchasedAt = testNow.AddDate(-2, 0, -1)
	appreciate([]*estate.Property{p}, testNow)

	want := estate.ScaleMicros(units(100_000), 1+0.003*1.2)
	if p.MarketValueMicros != want {
		t.Fatalf("value=%d want %d", p.MarketValueMicros, want)
	}
	if p.AppreciationMicros != want-units(100_000) {
		t.Fatalf("appreciation=%d", p.AppreciationMicros)
	}
	if p.YearsOwned != 2 {
		t.Fatalf("years owned=%d want 2", p.YearsOwned)
	}
}

func TestRecomputeNetWorthIsIdempotent(t *testing.T) {
	_, w, _ := newTestWorld()
	w.State.BalanceMicros = units(1_000)
	w.AddProperty(ownedProperty("AR", estate.Apartment, estate.Risky, units(5_000)))
	w.AddProperty(listing("AR", estate.Apartment, estate.Risky, units(7_000)))
	w.AddLoan(&estate.Loan{PrincipalMicros: units(2_000), Active: true})
	w.AddLoan(&estate.Loan{PrincipalMicros: units(9_000), Active: false})

	first := recomputeNetWorth(w)
	second := recomputeNetWorth(w)
	if first != units(4_000) || second != first {
		t.Fatalf("net worth first=%d second=%d want 4000", first, second)
	}
	if w.Stats.HighestBalanceMicros != estate.StartingBalanceMicros {
		t.Fatalf("watermark moved down: %d", w.Stats.HighestBalanceMicros)
	}
}
