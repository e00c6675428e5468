package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estates/internal/estate"
	"estates/internal/store"

	"github.com/google/uuid"
)

func findProperty(w *store.World, id uuid.UUID) (*estate.Property, error) {
	p := w.Property(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, id)
	}
	return p, nil
}

// ownedIdle returns the player's property when it is owned and not let.
func ownedIdle(w *store.World, id uuid.UUID) (*estate.Property, error) {
	p, err := findProperty(w, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedByPlayer {
		return nil, ErrNotOwned
	}
	if p.Status == estate.Rented {
		return nil, ErrAlreadyRented
	}
	return p, nil
}

func ownedBy(w *store.World, id uuid.UUID) (*estate.Property, error) {
	p, err := findProperty(w, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedByPlayer {
		return nil, ErrNotOwned
	}
	return p, nil
}

// Buy purchases a for-sale listing at its asking price.
func (s *Service) Buy(ctx context.Context, propertyID uuid.UUID) (PropertyView, error) {
	var out PropertyView
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		p, err := findProperty(w, propertyID)
		if err != nil {
			return err
		}
		if p.Status != estate.ForSale || p.OwnedByPlayer {
			return ErrNotForSale
		}
		if w.State.BalanceMicros < p.PriceMicros {
			return ErrInsufficientFunds
		}
		s.purchase(w, p, now, fmt.Sprintf("Purchased %s in %s", p.Type, p.County))
		out = propertyView(p)
		return nil
	})
	if err != nil {
		return PropertyView{}, err
	}
	s.log.Info("property purchased", "property_id", out.ID, "price", estate.MicrosToUnits(out.PriceMicros))
	return out, nil
}

func (s *Service) purchase(w *store.World, p *estate.Property, now time.Time, details string) {
	w.State.BalanceMicros -= p.PriceMicros
	p.OwnedByPlayer = true
	p.Status = estate.Owned
	p.MarketValueMicros = p.PriceMicros
	p.PurchasedAt = now
	w.Stats.PropertiesBought++
	w.Stats.MoneySpentMicros += p.PriceMicros
	w.Record(estate.TxPurchase, &p.ID, -p.PriceMicros, details, now)
}

func (s *Service) sell(w *store.World, p *estate.Property, amount int64, now time.Time, details string) {
	w.State.BalanceMicros += amount
	p.OwnedByPlayer = false
	p.Status = estate.ForSale
	p.ListedAt = now
	w.Stats.PropertiesSold++
	w.Stats.MoneyEarnedMicros += amount
	w.Record(estate.TxSale, &p.ID, amount, details, now)
}

// SellToOffer sells an owned, unlet property to a buyer whose wishes match it
// exactly, at the buyer's offer.
func (s *Service) SellToOffer(ctx context.Context, buyerID, propertyID uuid.UUID) (int64, error) {
	var amount int64
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		buyer := w.Person(buyerID)
		if buyer == nil {
			return fmt.Errorf("%w: %s", ErrPersonNotFound, buyerID)
		}
		if buyer.Role != estate.Buyer {
			return ErrWrongRole
		}
		if !buyer.Active {
			return ErrOfferInactive
		}
		p, err := ownedIdle(w, propertyID)
		if err != nil {
			return err
		}
		if !buyer.Wants(p) {
			return ErrOfferMismatch
		}
		amount = buyer.OfferMicros
		s.sell(w, p, amount, now, "Sold to "+buyer.Name)
		buyer.Active = false
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("property sold to buyer", "property_id", propertyID, "amount", estate.MicrosToUnits(amount))
	return amount, nil
}

// SellAtMarket sells an owned, unlet property at its market value.
func (s *Service) SellAtMarket(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var amount int64
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		p, err := ownedIdle(w, propertyID)
		if err != nil {
			return err
		}
		amount = p.ValueMicros()
		s.sell(w, p, amount, now, "Sold by player")
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("property sold at market", "property_id", propertyID, "amount", estate.MicrosToUnits(amount))
	return amount, nil
}

// RentToTenant lets an owned property to a tenant offer that matches it.
func (s *Service) RentToTenant(ctx context.Context, tenantID, propertyID uuid.UUID, months int) error {
	return s.playing(ctx, func(w *store.World, now time.Time) error {
		tenant := w.Person(tenantID)
		if tenant == nil {
			return fmt.Errorf("%w: %s", ErrPersonNotFound, tenantID)
		}
		if tenant.Role != estate.Tenant {
			return ErrWrongRole
		}
		if !tenant.Active {
			return ErrOfferInactive
		}
		p, err := ownedIdle(w, propertyID)
		if err != nil {
			return err
		}
		if !tenant.Wants(p) {
			return ErrOfferMismatch
		}
		rent := max(p.MonthlyRentMicros, tenant.OfferMicros)
		if _, err := s.signLease(w, p, tenant, rent, months, now); err != nil {
			return err
		}
		s.log.Info("property rented", "property_id", p.ID, "tenant", tenant.Name, "months", months)
		return nil
	})
}

// RentOut lets an owned property at its listed rent to a walk-in tenant.
func (s *Service) RentOut(ctx context.Context, in RentOutInput) error {
	return s.playing(ctx, func(w *store.World, now time.Time) error {
		p, err := ownedIdle(w, in.PropertyID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(in.TenantName)
		if name == "" {
			name = "Tenant #" + p.ID.String()[:8]
		}
		tenant := w.AddPerson(&estate.Person{
			Name:          name,
			Role:          estate.Tenant,
			County:        p.County,
			DesiredType:   p.Type,
			DesiredSafety: p.Safety,
			OfferMicros:   p.MonthlyRentMicros,
			Active:        true,
			AppearedAt:    now,
			Round:         w.State.CurrentRound,
		})
		if _, err := s.signLease(w, p, tenant, p.MonthlyRentMicros, in.Months, now); err != nil {
			return err
		}
		s.log.Info("property rented out", "property_id", p.ID, "tenant", name, "months", in.Months)
		return nil
	})
}

// Renovate raises an owned property's renovation level by one.
func (s *Service) Renovate(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var level int
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		p, err := ownedBy(w, propertyID)
		if err != nil {
			return err
		}
		if w.State.BalanceMicros < RenovationCostMicros {
			return ErrInsufficientFunds
		}
		w.State.BalanceMicros -= RenovationCostMicros
		w.Stats.MoneySpentMicros += RenovationCostMicros
		p.RenovationLevel++
		level = p.RenovationLevel
		w.Record(estate.TxRenovation, &p.ID, -RenovationCostMicros, fmt.Sprintf("Renovation level %d", level), now)
		return nil
	})
	return level, err
}

func (s *Service) SetRent(ctx context.Context, propertyID uuid.UUID, rentMicros int64) error {
	if rentMicros < MinRentMicros || rentMicros > MaxRentMicros {
		return fmt.Errorf("%w: rent must be between %d and %d", ErrInvalidAmount,
			MinRentMicros/estate.MicrosPerUnit, MaxRentMicros/estate.MicrosPerUnit)
	}
	return s.playing(ctx, func(w *store.World, _ time.Time) error {
		p, err := ownedBy(w, propertyID)
		if err != nil {
			return err
		}
		p.MonthlyRentMicros = rentMicros
		return nil
	})
}

func (s *Service) SetSalePrice(ctx context.Context, propertyID uuid.UUID, priceMicros int64) error {
	if priceMicros < MinSalePriceMicros || priceMicros > MaxSalePriceMicros {
		return fmt.Errorf("%w: price must be between %d and %d", ErrInvalidAmount,
			MinSalePriceMicros/estate.MicrosPerUnit, MaxSalePriceMicros/estate.MicrosPerUnit)
	}
	return s.playing(ctx, func(w *store.World, _ time.Time) error {
		p, err := ownedBy(w, propertyID)
		if err != nil {
			return err
		}
		p.PriceMicros = priceMicros
		p.MarketValueMicros = priceMicros
		return nil
	})
}

// QuickBuy synthesizes a starter apartment the player can afford and buys it
// immediately.
func (s *Service) QuickBuy(ctx context.Context) (PropertyView, error) {
	var out PropertyView
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		ceiling := min(StarterCeilingMicros, w.State.BalanceMicros)
		if ceiling < StarterFloorMicros {
			return ErrNothingAffordable
		}
		p := s.generateStarter(ceiling, now)
		if p.PriceMicros > w.State.BalanceMicros {
			return ErrInsufficientFunds
		}
		w.AddProperty(p)
		s.purchase(w, p, now, "Quick starter purchase")
		out = propertyView(p)
		return nil
	})
	if err != nil {
		return PropertyView{}, err
	}
	s.log.Info("quick starter purchased", "property_id", out.ID, "price", estate.MicrosToUnits(out.PriceMicros))
	return out, nil
}

// TakeLoan borrows amount at the current base rate, amortized over months.
func (s *Service) TakeLoan(ctx context.Context, in LoanInput) (LoanView, error) {
	if in.AmountMicros <= 0 || in.AmountMicros > MaxLoanMicros {
		return LoanView{}, fmt.Errorf("%w: loan must be between 1 and %d", ErrInvalidAmount, MaxLoanMicros/estate.MicrosPerUnit)
	}
	if in.Months <= 0 || in.Months > MaxLoanMonths {
		return LoanView{}, fmt.Errorf("%w: loan term must be between 1 and %d months", ErrInvalidDuration, MaxLoanMonths)
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		purpose = "General purpose"
	}

	var out LoanView
	err := s.playing(ctx, func(w *store.World, now time.Time) error {
		rate := w.State.BaseInterestRate
		l := w.AddLoan(&estate.Loan{
			Purpose:              purpose,
			PrincipalMicros:      in.AmountMicros,
			InterestRate:         rate,
			DurationMonths:       in.Months,
			MonthsRemaining:      in.Months,
			MonthlyPaymentMicros: MonthlyPaymentMicros(in.AmountMicros, rate, in.Months),
			StartedAt:            now,
			EndsAt:               now.AddDate(0, in.Months, 0),
			Active:               true,
		})
		w.State.BalanceMicros += in.AmountMicros
		w.Record(estate.TxLoan, nil, in.AmountMicros, "Loan: "+purpose, now)
		recomputeNetWorth(w)
		out = loanView(l)
		return nil
	})
	if err != nil {
		return LoanView{}, err
	}
	s.log.Info("loan taken", "loan_id", out.ID, "amount", estate.MicrosToUnits(in.AmountMicros), "rate", out.InterestRate)
	return out, nil
}

// TogglePause flips the paused flag and returns the new value.
func (s *Service) TogglePause(ctx context.Context) (bool, error) {
	var paused bool
	err := s.mutate(ctx, func(w *store.World, _ time.Time) error {
		w.State.Paused = !w.State.Paused
		paused = w.State.Paused
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Info("pause toggled", "paused", paused)
	return paused, nil
}

func (s *Service) SetPaused(ctx context.Context, paused bool) error {
	err := s.mutate(ctx, func(w *store.World, _ time.Time) error {
		w.State.Paused = paused
		return nil
	})
	if err == nil {
		s.log.Info("pause set", "paused", paused)
	}
	return err
}

// Reset wipes every collection and the ledger and starts a fresh game.
func (s *Service) Reset(ctx context.Context) error {
	err := s.mutate(ctx, func(w *store.World, now time.Time) error {
		w.Wipe(now)
		return nil
	})
	if err == nil {
		s.log.Info("game reset")
	}
	return err
}
