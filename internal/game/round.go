package game

import (
	"context"
	"fmt"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

// RunRound executes one round against the stored world and commits it in a
// single unit of work. A paused game is left untouched and reported as
// skipped. When the commit fails nothing from the round is persisted. A
// panic inside the round is returned as an error carrying the round number.
func (s *Service) RunRound(ctx context.Context) (rep RoundReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.Load(ctx)
	if err != nil {
		return RoundReport{}, fmt.Errorf("load world: %w", err)
	}
	if w.State.Paused {
		s.log.Info("game is paused, round skipped", "round", w.State.CurrentRound)
		return RoundReport{Round: w.State.CurrentRound, Skipped: true, At: s.clock.Now()}, nil
	}

	now := s.clock.Now()
	rep = RoundReport{Round: w.State.CurrentRound, At: now}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("round %d panicked: %v", rep.Round, r)
		}
	}()

	s.log.Info("round started", "round", rep.Round)
	rep = s.advance(w, now)
	if err := s.store.Commit(ctx, w); err != nil {
		return rep, fmt.Errorf("commit round %d: %w", rep.Round, err)
	}
	s.log.Info("round completed",
		"round", rep.Round,
		"balance", estate.MicrosToUnits(rep.BalanceMicros),
		"net_worth", estate.MicrosToUnits(rep.NetWorthMicros),
		"matches", rep.Matches,
	)
	return rep, nil
}

// advance applies every round step to w in order. It never touches storage.
func (s *Service) advance(w *store.World, now time.Time) RoundReport {
	rep := RoundReport{Round: w.State.CurrentRound, At: now}

	rep.StaleListingsRemoved = s.purgeStaleListings(w, now)
	forSale := w.CountProperties(func(p *estate.Property) bool { return p.Status == estate.ForSale })

	rep.EventsExpired = s.ageEvents(w)
	if e := s.maybeSpawnEvent(w, now); e != nil {
		rep.EventSpawned = e.Title
	}

	if forSale < MaxForSaleListings {
		w.AddProperty(s.generateProperty(w, now))
		rep.PropertyListed = true
	} else {
		s.log.Info("market saturated, skipping property generation", "listings", forSale)
	}
	rep.StarterInjected = s.ensureAffordableListing(w, now)

	rep.PeopleArrived = s.generatePeople(w, now)
	rep.PeoplePurged = s.purgeStalePeople(w)

	rep.Rentals = s.advanceRentals(w, now)

	owned := w.OwnedProperties()
	rep.TaxPaidMicros, rep.TaxSkipped = s.applyTaxes(w, owned, now)
	rep.MaintenancePaidMicros, rep.MaintenanceMissed = s.applyMaintenance(w, owned, now)
	rep.LoanPaidMicros, rep.LoansPenalized = s.applyLoans(w, now)

	appreciate(w.OwnedProperties(), now)
	recomputeNetWorth(w)
	s.evaluateOutcome(w, now)

	rep.Matches = s.matchBuyers(w)
	if rep.Matches > 0 {
		s.log.Info("buyers matched", "count", rep.Matches)
	}

	w.State.CurrentRound++
	w.State.LastRoundAt = now
	w.Stats.RoundsPlayed++
	w.Stats.UpdatedAt = now

	rep.BalanceMicros = w.State.BalanceMicros
	rep.NetWorthMicros = w.State.NetWorthMicros
	rep.Won = w.State.Won
	rep.Lost = w.State.Lost
	return rep
}
