package game

import (
	"fmt"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

var (
	streetNames = []string{"Maple St", "Oak Ave", "Pine Rd", "Cedar Ln", "Elm St", "Birch Way", "Willow Dr", "Poplar Ct"}
	cityNames   = []string{"Springfield", "Riverton", "Lakeside", "Hillview", "Fairview", "Brookfield"}
	personNames = []string{"Alex", "Sam", "Jordan", "Taylor", "Casey", "Riley", "Morgan", "Jamie", "Avery", "Cameron"}
)

func (s *Service) address() string {
	return fmt.Sprintf("%d %s", 1+s.intn(9998), estate.Pick(s.rand, streetNames))
}

// generateProperty synthesizes a standard listing priced off the policy
// tables and the active events of its county.
func (s *Service) generateProperty(w *store.World, now time.Time) *estate.Property {
	county := estate.Pick(s.rand, estate.Counties)
	typ := estate.Pick(s.rand, estate.EstateTypes)
	location := estate.Pick(s.rand, estate.LocationTypes)
	safety := estate.Pick(s.rand, estate.SafetyLevels)

	factor := estate.LocationMultiplier[location] *
		estate.SafetyPriceMultiplier[safety] *
		(1 + s.nextFloat()*0.3) *
		eventMultiplier(w, county)
	price := estate.RoundToUnit(estate.ScaleMicros(estate.BasePriceMicros[typ], factor))

	p := &estate.Property{
		Address:           s.address(),
		City:              estate.Pick(s.rand, cityNames),
		County:            county,
		Location:          location,
		Type:              typ,
		Safety:            safety,
		Status:            estate.ForSale,
		PriceMicros:       price,
		MarketValueMicros: price,
		MonthlyRentMicros: estate.RoundToUnit(estate.ScaleMicros(price, 0.008)),
		Bedrooms:          1 + s.intn(5),
		Bathrooms:         1 + s.intn(3),
		SquareFeet:        400 + s.intn(4600),
		CreatedAt:         now,
		ListedAt:          now,
	}
	p.MaintenanceMicros = estate.RoundToUnit(estate.ScaleMicros(price, estate.Between(s.rand, 0.005, 0.010)))
	return p
}

// generateStarter synthesizes a cheap apartment priced in
// [3000, min(9000, ceiling)] whole units.
func (s *Service) generateStarter(ceilingMicros int64, now time.Time) *estate.Property {
	upper := min(StarterCeilingMicros, ceilingMicros) / estate.MicrosPerUnit
	if upper < StarterFloorMicros/estate.MicrosPerUnit {
		upper = ceilingMicros / estate.MicrosPerUnit
	}
	floor := StarterFloorMicros / estate.MicrosPerUnit
	price := (floor + int64(s.intn(int(upper-floor+1)))) * estate.MicrosPerUnit

	address := s.address()
	city := estate.Pick(s.rand, cityNames)
	county := estate.Pick(s.rand, estate.Counties)
	safety := estate.Moderate
	if s.nextFloat() < StarterRiskyChance {
		safety = estate.Risky
	}
	return &estate.Property{
		Address:           address,
		City:              city,
		County:            county,
		Location:          estate.OutsideCity,
		Type:              estate.Apartment,
		Safety:            safety,
		Status:            estate.ForSale,
		PriceMicros:       price,
		MarketValueMicros: price,
		MonthlyRentMicros: estate.RoundToUnit(estate.ScaleMicros(price, 0.01)),
		MaintenanceMicros: estate.RoundToUnit(estate.ScaleMicros(price, 0.004)),
		Bedrooms:          1,
		Bathrooms:         1,
		SquareFeet:        400 + s.intn(400),
		CreatedAt:         now,
		ListedAt:          now,
	}
}

// ensureAffordableListing injects a starter listing when nothing on the
// market is priced at or below the affordability ceiling.
func (s *Service) ensureAffordableListing(w *store.World, now time.Time) bool {
	ceiling := max(StarterAffordabilityMicros, w.State.BalanceMicros)
	affordable := w.CountProperties(func(p *estate.Property) bool {
		return p.Status == estate.ForSale && p.PriceMicros <= ceiling
	})
	if affordable > 0 {
		return false
	}
	p := w.AddProperty(s.generateStarter(ceiling, now))
	s.log.Info("starter listing injected", "ceiling", estate.MicrosToUnits(ceiling), "price", estate.MicrosToUnits(p.PriceMicros))
	return true
}

func (s *Service) generatePerson(round int, now time.Time) *estate.Person {
	county := estate.Pick(s.rand, estate.Counties)
	typ := estate.Pick(s.rand, estate.EstateTypes)
	safety := estate.Pick(s.rand, estate.SafetyLevels)
	role := estate.Tenant
	if s.nextFloat() < BuyerChance {
		role = estate.Buyer
	}
	offer := estate.ScaleMicros(estate.BaseOfferMicros[typ], estate.Between(s.rand, 0.9, 1.3))

	p := &estate.Person{
		Role:          role,
		County:        county,
		DesiredType:   typ,
		DesiredSafety: safety,
		OfferMicros:   estate.RoundToUnit(offer),
		Active:        true,
		AppearedAt:    now,
		Round:         round,
	}
	if s.nextFloat() < AltOfferChance {
		alt := estate.Pick(s.rand, estate.SafetyLevels)
		p.AltSafety = &alt
		p.AltOfferMicros = estate.RoundToUnit(estate.ScaleMicros(offer, estate.Between(s.rand, 0.9, 1.2)))
	}
	p.Name = estate.Pick(s.rand, personNames)
	return p
}

// generatePeople adds one or two demand entries for the round.
func (s *Service) generatePeople(w *store.World, now time.Time) int {
	n := 1 + s.intn(2)
	for i := 0; i < n; i++ {
		w.AddPerson(s.generatePerson(w.State.CurrentRound, now))
	}
	return n
}

// purgeStalePeople drops consumed entries older than the staleness window.
func (s *Service) purgeStalePeople(w *store.World) int {
	cutoff := w.State.CurrentRound - PeopleStaleRounds
	return w.RemovePeopleWhere(func(p *estate.Person) bool {
		return !p.Active && p.Round < cutoff
	})
}

// purgeStaleListings removes NPC listings that sat unsold past the window.
func (s *Service) purgeStaleListings(w *store.World, now time.Time) int {
	cutoff := now.Add(-s.staleAfter)
	n := w.RemovePropertiesWhere(func(p *estate.Property) bool {
		return p.Status == estate.ForSale && !p.OwnedByPlayer && p.ListedAt.Before(cutoff)
	})
	if n > 0 {
		s.log.Info("stale listings removed", "count", n)
	}
	return n
}
