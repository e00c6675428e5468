package game

import (
	"cmp"
	"context"
	"slices"

	"estates/internal/estate"
)

// MarketFilter narrows the for-sale listing. Empty fields match everything.
type MarketFilter struct {
	County   string
	City     string
	Location estate.LocationType
	Type     estate.EstateType
	Limit    int
}

func (f MarketFilter) matches(p *estate.Property) bool {
	if f.County != "" && p.County != f.County {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	if f.Location != "" && p.Location != f.Location {
		return false
	}
	return f.Type == "" || p.Type == f.Type
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	w, err := s.snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		Round:            w.State.CurrentRound,
		BalanceMicros:    w.State.BalanceMicros,
		NetWorthMicros:   w.State.NetWorthMicros,
		BaseInterestRate: w.State.BaseInterestRate,
		PropertyTaxRate:  w.State.PropertyTaxRate,
		Paused:           w.State.Paused,
		Won:              w.State.Won,
		Lost:             w.State.Lost,
		Message:          w.State.Message,
		ForSaleCount:     w.CountProperties(func(p *estate.Property) bool { return p.Status == estate.ForSale }),
		ActiveRentals:    len(w.ActiveContracts()),
		ActiveOffers:     len(w.PeopleWhere(func(p *estate.Person) bool { return p.Active })),
		Owned:            []PropertyView{},
		Loans:            []LoanView{},
		Stats:            statsView(w.Stats),
	}
	for _, p := range w.OwnedProperties() {
		d.PropertyValueMicros += p.ValueMicros()
		d.Owned = append(d.Owned, propertyView(p))
	}
	for _, l := range w.ActiveLoans() {
		d.DebtMicros += l.PrincipalMicros
		d.Loans = append(d.Loans, loanView(l))
	}
	return d, nil
}

// Market lists for-sale properties, cheapest first and newest first among
// equal prices.
func (s *Service) Market(ctx context.Context, f MarketFilter) ([]PropertyView, error) {
	w, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	listings := w.PropertiesWhere(func(p *estate.Property) bool {
		return p.Status == estate.ForSale && f.matches(p)
	})
	slices.SortStableFunc(listings, func(a, b *estate.Property) int {
		if c := cmp.Compare(a.PriceMicros, b.PriceMicros); c != 0 {
			return c
		}
		return b.ListedAt.Compare(a.ListedAt)
	})
	if f.Limit > 0 && len(listings) > f.Limit {
		listings = listings[:f.Limit]
	}
	out := make([]PropertyView, 0, len(listings))
	for _, p := range listings {
		out = append(out, propertyView(p))
	}
	return out, nil
}

// Offers lists active buyer and tenant entries, most recent first.
func (s *Service) Offers(ctx context.Context, limit int) ([]OfferView, error) {
	w, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	people := w.PeopleWhere(func(p *estate.Person) bool { return p.Active })
	slices.Reverse(people)
	if limit > 0 && len(people) > limit {
		people = people[:limit]
	}
	out := make([]OfferView, 0, len(people))
	for _, p := range people {
		v := OfferView{
			ID:             p.ID,
			Name:           p.Name,
			Role:           string(p.Role),
			County:         p.County,
			DesiredType:    string(p.DesiredType),
			DesiredSafety:  string(p.DesiredSafety),
			OfferMicros:    p.OfferMicros,
			AltOfferMicros: p.AltOfferMicros,
			Round:          p.Round,
		}
		if p.AltSafety != nil {
			v.AltSafety = string(*p.AltSafety)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) ActiveEvents(ctx context.Context, limit int) ([]EventView, error) {
	w, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	events := w.ActiveEvents()
	slices.Reverse(events)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{
			ID:          e.ID,
			Kind:        string(e.Kind),
			Title:       e.Title,
			Description: e.Description,
			County:      e.County,
			Multiplier:  e.Multiplier,
			Remaining:   e.Remaining,
			OccurredAt:  e.OccurredAt,
		})
	}
	return out, nil
}

// Transactions returns the newest ledger rows. A non-positive limit uses the
// default page size.
func (s *Service) Transactions(ctx context.Context, limit int) ([]TransactionView, error) {
	if limit <= 0 {
		limit = DefaultTransactionsPageSize
	}
	rows, err := s.store.Transactions(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionView, 0, len(rows))
	for _, t := range rows {
		out = append(out, TransactionView{
			ID:           t.ID,
			PropertyID:   t.PropertyID,
			Kind:         string(t.Kind),
			AmountMicros: t.AmountMicros,
			Details:      t.Details,
			Round:        t.Round,
			At:           t.At,
		})
	}
	return out, nil
}

func propertyView(p *estate.Property) PropertyView {
	return PropertyView{
		ID:                p.ID,
		Address:           p.Address,
		City:              p.City,
		County:            p.County,
		Location:          string(p.Location),
		Type:              string(p.Type),
		Safety:            string(p.Safety),
		Status:            string(p.Status),
		PriceMicros:       p.PriceMicros,
		ValueMicros:       p.ValueMicros(),
		MonthlyRentMicros: p.MonthlyRentMicros,
		MaintenanceMicros: p.MaintenanceMicros,
		RenovationLevel:   p.RenovationLevel,
		TenantID:          p.TenantID,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms,
		SquareFeet:        p.SquareFeet,
		ListedAt:          p.ListedAt,
	}
}

func loanView(l *estate.Loan) LoanView {
	return LoanView{
		ID:                   l.ID,
		Purpose:              l.Purpose,
		PrincipalMicros:      l.PrincipalMicros,
		InterestRate:         l.InterestRate,
		MonthlyPaymentMicros: l.MonthlyPaymentMicros,
		MonthsRemaining:      l.MonthsRemaining,
		TotalPaidMicros:      l.TotalPaidMicros,
	}
}

func statsView(st estate.PlayerStatistics) StatsView {
	return StatsView{
		PropertiesBought:      st.PropertiesBought,
		PropertiesSold:        st.PropertiesSold,
		PropertiesRented:      st.PropertiesRented,
		MoneySpentMicros:      st.MoneySpentMicros,
		MoneyEarnedMicros:     st.MoneyEarnedMicros,
		RentalIncomeMicros:    st.RentalIncomeMicros,
		TaxesPaidMicros:       st.TaxesPaidMicros,
		MaintenancePaidMicros: st.MaintenancePaidMicros,
		HighestBalanceMicros:  st.HighestBalanceMicros,
		RoundsPlayed:          st.RoundsPlayed,
	}
}
