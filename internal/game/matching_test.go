package game

import (
	"testing"
	"time"

	"estates/internal/estate"
)

func TestMatchBuyersTakesAffordableListing(t *testing.T) {
	svc, w, _ := newTestWorld()
	buyer := w.AddPerson(&estate.Person{Name: "Sam", Role: estate.Buyer, County: "AR", DesiredType: estate.Apartment, DesiredSafety: estate.Safe, OfferMicros: units(5_000), Active: true})
	pricey := w.AddProperty(listing("AR", estate.Apartment, estate.Safe, units(6_000)))
	cheap := w.AddProperty(listing("AR", estate.Apartment, estate.Safe, units(4_000)))
	mine := w.AddProperty(ownedProperty("AR", estate.Apartment, estate.Safe, units(1_000)))
	tenant := w.AddPerson(&estate.Person{Role: estate.Tenant, County: "AR", DesiredType: estate.Apartment, DesiredSafety: estate.Safe, OfferMicros: units(50_000), Active: true})

	if n := svc.matchBuyers(w); n != 1 {
		t.Fatalf("matches=%d want 1", n)
	}
	if w.Property(cheap.ID) != nil {
		t.Fatalf("matched listing should leave the market")
	}
	if w.Property(pricey.ID) == nil || w.Property(mine.ID) == nil {
		t.Fatalf("only the matched listing may be removed")
	}
	if buyer.Active || !tenant.Active {
		t.Fatalf("buyer active=%v tenant active=%v", buyer.Active, tenant.Active)
	}
	if w.State.BalanceMicros != estate.StartingBalanceMicros {
		t.Fatalf("NPC sales must not pay the player")
	}
}

func TestMatchBuyersLeavesUnmatchedActive(t *testing.T) {
	svc, w, _ := newTestWorld()
	buyer := w.AddPerson(&estate.Person{Role: estate.Buyer, County: "TM", DesiredType: estate.House, DesiredSafety: estate.Moderate, OfferMicros: units(500_000), Active: true})
	w.AddProperty(listing("TM", estate.House, estate.Safe, units(100_000)))

	if n := svc.matchBuyers(w); n != 0 || !buyer.Active {
		t.Fatalf("matches=%d buyer active=%v", n, buyer.Active)
	}
}

func TestMatchBuyersPicksFirstEligibleListing(t *testing.T) {
	rented := func(price int64) *estate.Property {
		p := listing("CT", estate.House, estate.Moderate, price)
		p.Status = estate.Rented
		return p
	}
	tests := []struct {
		name     string
		listings []*estate.Property
		matched  int // index into listings, -1 for no match
	}{
		{
			name: "store order breaks ties",
			listings: []*estate.Property{
				listing("CT", estate.House, estate.Moderate, units(90_000)),
				listing("CT", estate.House, estate.Moderate, units(60_000)),
			},
			matched: 0,
		},
		{
			name: "rented listing skipped",
			listings: []*estate.Property{
				rented(units(50_000)),
				listing("CT", estate.House, estate.Moderate, units(80_000)),
			},
			matched: 1,
		},
		{
			name:     "only rented",
			listings: []*estate.Property{rented(units(50_000))},
			matched:  -1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, w, _ := newTestWorld()
			buyer := w.AddPerson(&estate.Person{Role: estate.Buyer, County: "CT", DesiredType: estate.House, DesiredSafety: estate.Moderate, OfferMicros: units(100_000), Active: true})
			for _, l := range tc.listings {
				w.AddProperty(l)
			}

			want := 1
			if tc.matched < 0 {
				want = 0
			}
			if n := svc.matchBuyers(w); n != want {
				t.Fatalf("matches=%d want %d", n, want)
			}
			for i, l := range tc.listings {
				gone := w.Property(l.ID) == nil
				if gone != (i == tc.matched) {
					t.Fatalf("listing %d removed=%v", i, gone)
				}
			}
			if buyer.Active != (tc.matched < 0) {
				t.Fatalf("buyer active=%v", buyer.Active)
			}
		})
	}
}

func TestEvaluateOutcomeVictoryIsOneShot(t *testing.T) {
	svc, w, _ := newTestWorld()
	w.State.CurrentRound = 7
	w.State.NetWorthMicros = VictoryNetWorthMicros

	svc.evaluateOutcome(w, testNow)
	if !w.State.Won || !w.State.Paused {
		t.Fatalf("expected a paused victory: %+v", w.State)
	}
	if w.State.Message != "Congratulations! You became a millionaire in 7 rounds!" {
		t.Fatalf("message=%q", w.State.Message)
	}
	ended := *w.State.EndedAt

	w.State.CurrentRound = 9
	svc.evaluateOutcome(w, testNow.Add(1))
	if !w.State.EndedAt.Equal(ended) || w.State.Message != "Congratulations! You became a millionaire in 7 rounds!" {
		t.Fatalf("victory re-fired")
	}
}

func TestEvaluateOutcomeBankruptcy(t *testing.T) {
	svc, w, _ := newTestWorld()
	w.State.CurrentRound = 11
	w.State.BalanceMicros = units(-15_000)
	w.Stats.PropertiesBought = 2
	w.Stats.PropertiesSold = 2
	recomputeNetWorth(w)

	svc.evaluateOutcome(w, testNow)
	if !w.State.Lost || !w.State.Paused {
		t.Fatalf("expected bankruptcy: %+v", w.State)
	}
	if w.State.Message != "Bankruptcy! Game Over at round 11." {
		t.Fatalf("message=%q", w.State.Message)
	}
	ended := *w.State.EndedAt

	w.State.CurrentRound = 14
	svc.evaluateOutcome(w, testNow.Add(time.Hour))
	if !w.State.EndedAt.Equal(ended) || w.State.Message != "Bankruptcy! Game Over at round 11." {
		t.Fatalf("bankruptcy re-fired: ended=%s message=%q", w.State.EndedAt, w.State.Message)
	}
}

func TestEvaluateOutcomeHoldingsPreventBankruptcy(t *testing.T) {
	tests := []struct {
		name    string
		round   int
		balance int64
		bought  int
	}{
		{name: "still holds property", round: 11, balance: units(-15_000), bought: 1},
		{name: "too early", round: 10, balance: units(-15_000)},
		{name: "balance above floor", round: 11, balance: units(-5_000)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, w, _ := newTestWorld()
			w.State.CurrentRound = tc.round
			w.State.BalanceMicros = tc.balance
			w.Stats.PropertiesBought = tc.bought
			recomputeNetWorth(w)

			svc.evaluateOutcome(w, testNow)
			if w.State.Lost {
				t.Fatalf("unexpected bankruptcy")
			}
		})
	}
}
