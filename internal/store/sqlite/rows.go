package sqlite

import (
	"context"
	"database/sql"
	"time"

	"estates/internal/estate"
)

func parseTimes(raw []string, dst ...*time.Time) error {
	for i, s := range raw {
		t, err := parseTS(s)
		if err != nil {
			return err
		}
		*dst[i] = t
	}
	return nil
}

func loadState(ctx context.Context, tx *sql.Tx, st *estate.GameState) error {
	var (
		lastRound, created string
		endedAt            sql.NullString
	)
	err := tx.QueryRowContext(ctx, `
		SELECT version, balance_micros, current_round, last_round_at, created_at, net_worth_micros,
			base_interest_rate, property_tax_rate, last_tax_round, last_maintenance_round,
			paused, won, lost, ended_at, message
		FROM game_state
		WHERE id = 1
	`).Scan(&st.Version, &st.BalanceMicros, &st.CurrentRound, &lastRound, &created, &st.NetWorthMicros,
		&st.BaseInterestRate, &st.PropertyTaxRate, &st.LastTaxRound, &st.LastMaintenanceRound,
		&st.Paused, &st.Won, &st.Lost, &endedAt, &st.Message)
	if err != nil {
		return err
	}
	if err := parseTimes([]string{lastRound, created}, &st.LastRoundAt, &st.CreatedAt); err != nil {
		return err
	}
	if endedAt.Valid {
		t, err := parseTS(endedAt.String)
		if err != nil {
			return err
		}
		st.EndedAt = &t
	}
	return nil
}

func loadStats(ctx context.Context, tx *sql.Tx, s *estate.PlayerStatistics) error {
	var updated string
	err := tx.QueryRowContext(ctx, `
		SELECT properties_bought, properties_sold, properties_rented, money_spent_micros, money_earned_micros,
			rental_income_micros, taxes_paid_micros, maintenance_paid_micros, highest_balance_micros,
			net_worth_micros, rounds_played, updated_at
		FROM player_statistics
		WHERE id = 1
	`).Scan(&s.PropertiesBought, &s.PropertiesSold, &s.PropertiesRented, &s.MoneySpentMicros, &s.MoneyEarnedMicros,
		&s.RentalIncomeMicros, &s.TaxesPaidMicros, &s.MaintenancePaidMicros, &s.HighestBalanceMicros,
		&s.NetWorthMicros, &s.RoundsPlayed, &updated)
	if err != nil {
		return err
	}
	return parseTimes([]string{updated}, &s.UpdatedAt)
}

func writeStats(ctx context.Context, tx *sql.Tx, s *estate.PlayerStatistics) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_statistics (
			id, properties_bought, properties_sold, properties_rented, money_spent_micros, money_earned_micros,
			rental_income_micros, taxes_paid_micros, maintenance_paid_micros, highest_balance_micros,
			net_worth_micros, rounds_played, updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			properties_bought = excluded.properties_bought,
			properties_sold = excluded.properties_sold,
			properties_rented = excluded.properties_rented,
			money_spent_micros = excluded.money_spent_micros,
			money_earned_micros = excluded.money_earned_micros,
			rental_income_micros = excluded.rental_income_micros,
			taxes_paid_micros = excluded.taxes_paid_micros,
			maintenance_paid_micros = excluded.maintenance_paid_micros,
			highest_balance_micros = excluded.highest_balance_micros,
			net_worth_micros = excluded.net_worth_micros,
			rounds_played = excluded.rounds_played,
			updated_at = excluded.updated_at
	`, s.PropertiesBought, s.PropertiesSold, s.PropertiesRented, s.MoneySpentMicros, s.MoneyEarnedMicros,
		s.RentalIncomeMicros, s.TaxesPaidMicros, s.MaintenancePaidMicros, s.HighestBalanceMicros,
		s.NetWorthMicros, s.RoundsPlayed, ts(s.UpdatedAt))
	return err
}

func loadProperties(ctx context.Context, tx *sql.Tx) ([]*estate.Property, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, address, city, county, location, estate_type, safety, status,
			price_micros, market_value_micros, monthly_rent_micros, maintenance_micros,
			renovation_level, owned_by_player, tenant_id, bedrooms, bathrooms, square_feet,
			created_at, listed_at, purchased_at, years_owned, appreciation_micros
		FROM properties
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.Property
	for rows.Next() {
		var (
			p                             estate.Property
			location, typ, safety, status string
			created, listed, purchased    string
		)
		if err := rows.Scan(&p.ID, &p.Address, &p.City, &p.County, &location, &typ, &safety, &status,
			&p.PriceMicros, &p.MarketValueMicros, &p.MonthlyRentMicros, &p.MaintenanceMicros,
			&p.RenovationLevel, &p.OwnedByPlayer, &p.TenantID, &p.Bedrooms, &p.Bathrooms, &p.SquareFeet,
			&created, &listed, &purchased, &p.YearsOwned, &p.AppreciationMicros); err != nil {
			return nil, err
		}
		if err := parseTimes([]string{created, listed, purchased}, &p.CreatedAt, &p.ListedAt, &p.PurchasedAt); err != nil {
			return nil, err
		}
		p.Location = estate.LocationType(location)
		p.Type = estate.EstateType(typ)
		p.Safety = estate.SafetyLevel(safety)
		p.Status = estate.EstateStatus(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func writeProperty(ctx context.Context, tx *sql.Tx, p *estate.Property) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO properties (
			id, address, city, county, location, estate_type, safety, status,
			price_micros, market_value_micros, monthly_rent_micros, maintenance_micros,
			renovation_level, owned_by_player, tenant_id, bedrooms, bathrooms, square_feet,
			created_at, listed_at, purchased_at, years_owned, appreciation_micros
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			safety = excluded.safety,
			status = excluded.status,
			price_micros = excluded.price_micros,
			market_value_micros = excluded.market_value_micros,
			monthly_rent_micros = excluded.monthly_rent_micros,
			maintenance_micros = excluded.maintenance_micros,
			renovation_level = excluded.renovation_level,
			owned_by_player = excluded.owned_by_player,
			tenant_id = excluded.tenant_id,
			listed_at = excluded.listed_at,
			purchased_at = excluded.purchased_at,
			years_owned = excluded.years_owned,
			appreciation_micros = excluded.appreciation_micros
	`, p.ID, p.Address, p.City, p.County, string(p.Location), string(p.Type), string(p.Safety), string(p.Status),
		p.PriceMicros, p.MarketValueMicros, p.MonthlyRentMicros, p.MaintenanceMicros,
		p.RenovationLevel, p.OwnedByPlayer, p.TenantID, p.Bedrooms, p.Bathrooms, p.SquareFeet,
		ts(p.CreatedAt), ts(p.ListedAt), ts(p.PurchasedAt), p.YearsOwned, p.AppreciationMicros)
	return err
}

func loadPeople(ctx context.Context, tx *sql.Tx) ([]*estate.Person, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, role, county, desired_type, desired_safety, offer_micros,
			alt_safety, alt_offer_micros, active, appeared_at, round_number
		FROM people
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.Person
	for rows.Next() {
		var (
			p                 estate.Person
			role, typ, safety string
			alt               sql.NullString
			appeared          string
		)
		if err := rows.Scan(&p.ID, &p.Name, &role, &p.County, &typ, &safety, &p.OfferMicros,
			&alt, &p.AltOfferMicros, &p.Active, &appeared, &p.Round); err != nil {
			return nil, err
		}
		if err := parseTimes([]string{appeared}, &p.AppearedAt); err != nil {
			return nil, err
		}
		p.Role = estate.PersonRole(role)
		p.DesiredType = estate.EstateType(typ)
		p.DesiredSafety = estate.SafetyLevel(safety)
		if alt.Valid {
			s := estate.SafetyLevel(alt.String)
			p.AltSafety = &s
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func writePerson(ctx context.Context, tx *sql.Tx, p *estate.Person) error {
	var alt sql.NullString
	if p.AltSafety != nil {
		alt = sql.NullString{String: string(*p.AltSafety), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO people (
			id, name, role, county, desired_type, desired_safety, offer_micros,
			alt_safety, alt_offer_micros, active, appeared_at, round_number
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET active = excluded.active
	`, p.ID, p.Name, string(p.Role), p.County, string(p.DesiredType), string(p.DesiredSafety), p.OfferMicros,
		alt, p.AltOfferMicros, p.Active, ts(p.AppearedAt), p.Round)
	return err
}

func loadContracts(ctx context.Context, tx *sql.Tx) ([]*estate.RentalContract, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, property_id, tenant_id, monthly_rent_micros, duration_months, months_remaining,
			months_stayed, started_at, ends_at, last_rent_at, leave_chance, active
		FROM rental_contracts
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.RentalContract
	for rows.Next() {
		var (
			c                       estate.RentalContract
			started, ends, lastRent string
		)
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.TenantID, &c.MonthlyRentMicros, &c.DurationMonths, &c.MonthsRemaining,
			&c.MonthsStayed, &started, &ends, &lastRent, &c.LeaveChance, &c.Active); err != nil {
			return nil, err
		}
		if err := parseTimes([]string{started, ends, lastRent}, &c.StartedAt, &c.EndsAt, &c.LastRentAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func writeContract(ctx context.Context, tx *sql.Tx, c *estate.RentalContract) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO rental_contracts (
			id, property_id, tenant_id, monthly_rent_micros, duration_months, months_remaining,
			months_stayed, started_at, ends_at, last_rent_at, leave_chance, active
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			months_remaining = excluded.months_remaining,
			months_stayed = excluded.months_stayed,
			ends_at = excluded.ends_at,
			last_rent_at = excluded.last_rent_at,
			active = excluded.active
	`, c.ID, c.PropertyID, c.TenantID, c.MonthlyRentMicros, c.DurationMonths, c.MonthsRemaining,
		c.MonthsStayed, ts(c.StartedAt), ts(c.EndsAt), ts(c.LastRentAt), c.LeaveChance, c.Active)
	return err
}

func loadEvents(ctx context.Context, tx *sql.Tx) ([]*estate.MarketEvent, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, kind, title, description, county, multiplier, duration, remaining, occurred_at, active
		FROM market_events
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.MarketEvent
	for rows.Next() {
		var (
			e              estate.MarketEvent
			kind, occurred string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Title, &e.Description, &e.County, &e.Multiplier,
			&e.Duration, &e.Remaining, &occurred, &e.Active); err != nil {
			return nil, err
		}
		if err := parseTimes([]string{occurred}, &e.OccurredAt); err != nil {
			return nil, err
		}
		e.Kind = estate.EventKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func writeEvent(ctx context.Context, tx *sql.Tx, e *estate.MarketEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO market_events (
			id, kind, title, description, county, multiplier, duration, remaining, occurred_at, active
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			remaining = excluded.remaining,
			active = excluded.active
	`, e.ID, string(e.Kind), e.Title, e.Description, e.County, e.Multiplier, e.Duration, e.Remaining, ts(e.OccurredAt), e.Active)
	return err
}

func loadLoans(ctx context.Context, tx *sql.Tx) ([]*estate.Loan, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, purpose, principal_micros, interest_rate, duration_months, months_remaining,
			monthly_payment_micros, total_paid_micros, started_at, ends_at, active
		FROM loans
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.Loan
	for rows.Next() {
		var (
			l             estate.Loan
			started, ends string
		)
		if err := rows.Scan(&l.ID, &l.Purpose, &l.PrincipalMicros, &l.InterestRate, &l.DurationMonths, &l.MonthsRemaining,
			&l.MonthlyPaymentMicros, &l.TotalPaidMicros, &started, &ends, &l.Active); err != nil {
			return nil, err
		}
		if err := parseTimes([]string{started, ends}, &l.StartedAt, &l.EndsAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func writeLoan(ctx context.Context, tx *sql.Tx, l *estate.Loan) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO loans (
			id, purpose, principal_micros, interest_rate, duration_months, months_remaining,
			monthly_payment_micros, total_paid_micros, started_at, ends_at, active
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			principal_micros = excluded.principal_micros,
			months_remaining = excluded.months_remaining,
			total_paid_micros = excluded.total_paid_micros,
			active = excluded.active
	`, l.ID, l.Purpose, l.PrincipalMicros, l.InterestRate, l.DurationMonths, l.MonthsRemaining,
		l.MonthlyPaymentMicros, l.TotalPaidMicros, ts(l.StartedAt), ts(l.EndsAt), l.Active)
	return err
}
