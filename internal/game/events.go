package game

import (
	"fmt"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

// ageEvents counts every active event down by one round and deactivates the
// ones that ran out. Expired events are kept for history.
func (s *Service) ageEvents(w *store.World) int {
	expired := 0
	for _, e := range w.ActiveEvents() {
		e.Remaining--
		if e.Remaining <= 0 {
			e.Remaining = 0
			e.Active = false
			expired++
			s.log.Info("market event ended", "title", e.Title, "county", e.County)
		}
	}
	return expired
}

func (s *Service) maybeSpawnEvent(w *store.World, now time.Time) *estate.MarketEvent {
	if s.nextFloat() >= EventSpawnChance {
		return nil
	}
	return s.spawnEvent(w, now)
}

func (s *Service) spawnEvent(w *store.World, now time.Time) *estate.MarketEvent {
	kind := estate.Pick(s.rand, estate.EventKinds)
	county := ""
	if s.nextFloat() < RegionalEventChance {
		county = estate.Pick(s.rand, estate.Counties)
	}
	spec := estate.EventImpact[kind]
	duration := 3 + s.intn(7)
	if spec.FixedDuration > 0 {
		duration = spec.FixedDuration
	}

	e := &estate.MarketEvent{
		Kind:       kind,
		County:     county,
		Multiplier: spec.Multiplier,
		Duration:   duration,
		Remaining:  duration,
		OccurredAt: now,
		Active:     true,
	}

	switch kind {
	case estate.TaxChange:
		increase := s.nextFloat() < 0.5
		if increase {
			e.Multiplier = estate.TaxIncreaseMultiplier
		} else {
			e.Multiplier = estate.TaxReliefMultiplier
		}
		if county == "" {
			if increase {
				w.State.PropertyTaxRate *= 1 + estate.TaxRateStep
			} else {
				w.State.PropertyTaxRate *= 1 - estate.TaxRateStep
			}
		}
		e.Title, e.Description = taxCopy(increase, county)
	case estate.InterestRateChange:
		up := s.nextFloat() < 0.5
		if county == "" {
			if up {
				w.State.BaseInterestRate *= 1 + estate.InterestRateStep
			} else {
				w.State.BaseInterestRate *= 1 - estate.InterestRateStep
			}
		}
		e.Title, e.Description = rateCopy(up)
	default:
		e.Title, e.Description = eventCopy(kind, county)
	}

	w.AddEvent(e)
	w.Record(estate.TxEventImpact, nil, 0, eventLedgerDetails(e), now)
	s.log.Info("market event spawned", "kind", e.Kind, "title", e.Title, "county", e.County, "rounds", e.Duration)
	return e
}

// eventMultiplier composes the multipliers of every active event that applies
// to county.
func eventMultiplier(w *store.World, county string) float64 {
	m := 1.0
	for _, e := range w.Events {
		if e.Active && e.Affects(county) {
			m *= e.Multiplier
		}
	}
	return m
}

func eventCopy(kind estate.EventKind, county string) (string, string) {
	regional := county != ""
	switch kind {
	case estate.EconomicBoom:
		if regional {
			return "Economic Boom!", fmt.Sprintf("Strong economic growth in %s county boosts property values!", county)
		}
		return "Economic Boom!", "National economic boom increases property values across all counties!"
	case estate.Recession:
		if regional {
			return "Economic Recession", fmt.Sprintf("Economic downturn in %s county decreases property values.", county)
		}
		return "Economic Recession", "Economic recession affects property market nationwide."
	case estate.SafetyImprovement:
		if regional {
			return "Safety Initiative", fmt.Sprintf("New police programs in %s improve neighborhood safety!", county)
		}
		return "Safety Initiative", "Crime reduction programs improve safety nationwide!"
	case estate.SafetyDegradation:
		if regional {
			return "Crime Wave", fmt.Sprintf("Increased crime in %s affects property desirability.", county)
		}
		return "Crime Wave", "Rising crime rates concern potential buyers."
	case estate.NaturalDisaster:
		if regional {
			return "Natural Disaster", fmt.Sprintf("Natural disaster strikes %s! Property values plummet.", county)
		}
		return "Natural Disaster", "Widespread natural disaster affects multiple regions."
	case estate.PriceIncrease:
		if regional {
			return "Market Rally", fmt.Sprintf("High demand drives up prices in %s!", county)
		}
		return "Market Rally", "Hot real estate market increases prices!"
	case estate.PriceDecrease:
		if regional {
			return "Market Correction", fmt.Sprintf("Oversupply in %s leads to price drops.", county)
		}
		return "Market Correction", "Market correction brings property prices down."
	}
	return string(kind), ""
}

func taxCopy(increase bool, county string) (string, string) {
	title, word := "Tax Relief", "decrease"
	if increase {
		title, word = "Tax Increase", "increase"
	}
	if county != "" {
		return title, fmt.Sprintf("Property tax %s announced for %s.", word, county)
	}
	return title, fmt.Sprintf("Property tax %s affects all counties.", word)
}

func rateCopy(up bool) (string, string) {
	if up {
		return "Interest Rate Hike", "Central bank increases interest rates, affecting loan costs."
	}
	return "Interest Rate Cut", "Central bank decreases interest rates, affecting loan costs."
}

func eventLedgerDetails(e *estate.MarketEvent) string {
	if e.County == "" {
		return fmt.Sprintf("%s (x%.2f, %d rounds)", e.Title, e.Multiplier, e.Duration)
	}
	return fmt.Sprintf("%s in %s (x%.2f, %d rounds)", e.Title, e.County, e.Multiplier, e.Duration)
}
