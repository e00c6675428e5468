package game

import (
	"fmt"
	"time"

	"estates/internal/estate"
	"estates/internal/store"
)

const (
	renovationLeaveRelief = 0.05
	baseRenewalChance     = 0.20
	renovationRenewBonus  = 0.05
	loyalTenantBonus      = 0.10
	loyalTenantMonths     = 24
)

// advanceRentals moves every active contract forward by one period: rent is
// collected, the term counts down and the contract is rolled for early
// departure, then, once expired, for buy-out, renewal or move-out.
func (s *Service) advanceRentals(w *store.World, now time.Time) RentalReport {
	var rep RentalReport
	for _, c := range w.ActiveContracts() {
		prop := w.Property(c.PropertyID)
		propID := c.PropertyID

		w.State.BalanceMicros += c.MonthlyRentMicros
		w.Stats.RentalIncomeMicros += c.MonthlyRentMicros
		rep.CollectedMicros += c.MonthlyRentMicros
		w.Record(estate.TxRentalIncome, &propID, c.MonthlyRentMicros, "Rent payment from "+tenantName(w, c), now)
		c.LastRentAt = now

		c.MonthsStayed++
		c.MonthsRemaining = max(0, c.MonthsRemaining-1)

		renovation := 0
		if prop != nil {
			renovation = prop.RenovationLevel
		}
		leave := max(0, c.LeaveChance-float64(renovation)*renovationLeaveRelief)
		if s.nextFloat() < leave {
			s.endTenancy(c, prop)
			rep.EarlyLeaves++
			s.log.Info("tenant left early", "property_id", c.PropertyID)
			continue
		}
		if c.MonthsRemaining > 0 {
			continue
		}

		if c.MonthsStayed >= loyalTenantMonths && prop != nil {
			if s.tryBuyOut(w, c, prop, now) {
				rep.BuyOuts++
				continue
			}
		}

		if s.nextFloat() < renewalChance(c, prop) {
			c.MonthsRemaining = c.DurationMonths
			c.EndsAt = now.AddDate(0, c.DurationMonths, 0)
			rep.Renewals++
			s.log.Info("tenant renewed lease", "property_id", c.PropertyID, "months", c.DurationMonths)
			continue
		}
		s.endTenancy(c, prop)
		rep.MovedOut++
		s.log.Info("tenant moved out", "property_id", c.PropertyID)
	}
	return rep
}

// tryBuyOut rolls a long-term tenant's offer to buy the property at a premium
// and accepts it when it clears the asking price by enough.
func (s *Service) tryBuyOut(w *store.World, c *estate.RentalContract, prop *estate.Property, now time.Time) bool {
	years := c.MonthsStayed / 12
	chance := 0.1 + float64(years-2)*0.1
	if s.nextFloat() >= chance {
		return false
	}
	offer := estate.ScaleMicros(prop.ValueMicros(), BuyOutPremium)
	s.log.Info("long-term tenant offers to buy", "property_id", prop.ID, "offer", estate.MicrosToUnits(offer))
	if offer < estate.ScaleMicros(prop.PriceMicros, BuyOutAcceptRatio) {
		return false
	}

	w.State.BalanceMicros += offer
	w.Stats.MoneyEarnedMicros += offer
	w.Stats.PropertiesSold++
	prop.OwnedByPlayer = false
	prop.Status = estate.ForSale
	prop.TenantID = nil
	prop.ListedAt = now
	c.Active = false
	w.Record(estate.TxSale, &prop.ID, offer, "Sold to long-term tenant at premium", now)
	s.log.Info("property sold to tenant", "property_id", prop.ID, "amount", estate.MicrosToUnits(offer))
	return true
}

func renewalChance(c *estate.RentalContract, prop *estate.Property) float64 {
	chance := baseRenewalChance
	if prop != nil {
		chance += estate.RenewalSafetyBonus[prop.Safety]
		chance += float64(prop.RenovationLevel) * renovationRenewBonus
	}
	if c.MonthsStayed >= loyalTenantMonths {
		chance += loyalTenantBonus
	}
	return chance
}

func (s *Service) endTenancy(c *estate.RentalContract, prop *estate.Property) {
	c.Active = false
	if prop == nil {
		return
	}
	prop.Status = estate.Owned
	prop.TenantID = nil
}

func tenantName(w *store.World, c *estate.RentalContract) string {
	if p := w.Person(c.TenantID); p != nil && p.Name != "" {
		return p.Name
	}
	return "tenant"
}

// signLease rents prop to tenant for months, drawing the contract's early
// departure chance from [0.10, 0.20).
func (s *Service) signLease(w *store.World, prop *estate.Property, tenant *estate.Person, rentMicros int64, months int, now time.Time) (*estate.RentalContract, error) {
	if !validRentalDuration(months) {
		return nil, fmt.Errorf("%w: %d months", ErrInvalidDuration, months)
	}
	c := w.AddContract(&estate.RentalContract{
		PropertyID:        prop.ID,
		TenantID:          tenant.ID,
		MonthlyRentMicros: rentMicros,
		DurationMonths:    months,
		MonthsRemaining:   months,
		StartedAt:         now,
		EndsAt:            now.AddDate(0, months, 0),
		LastRentAt:        now,
		LeaveChance:       estate.Between(s.rand, 0.10, 0.20),
		Active:            true,
	})
	id := tenant.ID
	prop.Status = estate.Rented
	prop.TenantID = &id
	tenant.Active = false
	w.Stats.PropertiesRented++
	return c, nil
}
