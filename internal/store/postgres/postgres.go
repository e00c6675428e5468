// Package postgres persists the game world in PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"estates/internal/estate"
	"estates/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Repository = (*Repository)(nil)

type Repository struct {
	db    *pgxpool.Pool
	clock estate.Clock
}

func New(db *pgxpool.Pool, clock estate.Clock) *Repository {
	if clock == nil {
		clock = estate.SystemClock()
	}
	return &Repository{db: db, clock: clock}
}

// Migrate creates the schema when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (r *Repository) Load(ctx context.Context) (*store.World, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := r.ensureSingletons(ctx, tx); err != nil {
		return nil, err
	}

	w := &store.World{}
	if err := loadState(ctx, tx, &w.State); err != nil {
		return nil, fmt.Errorf("load game state: %w", err)
	}
	if err := loadStats(ctx, tx, &w.Stats); err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if w.Properties, err = loadProperties(ctx, tx); err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	if w.People, err = loadPeople(ctx, tx); err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	if w.Contracts, err = loadContracts(ctx, tx); err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	if w.Events, err = loadEvents(ctx, tx); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if w.Loans, err = loadLoans(ctx, tx); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Repository) ensureSingletons(ctx context.Context, tx pgx.Tx) error {
	fresh := store.NewWorld(r.clock.Now())
	st := fresh.State
	_, err := tx.Exec(ctx, `
		INSERT INTO estates.game_state (
			id, version, balance_micros, current_round, last_round_at, created_at,
			net_worth_micros, base_interest_rate, property_tax_rate
		)
		VALUES (1, 1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, st.BalanceMicros, st.CurrentRound, st.LastRoundAt, st.CreatedAt, st.NetWorthMicros, st.BaseInterestRate, st.PropertyTaxRate)
	if err != nil {
		return fmt.Errorf("seed game state: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO estates.player_statistics (id, highest_balance_micros, net_worth_micros, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, fresh.Stats.HighestBalanceMicros, fresh.Stats.NetWorthMicros, fresh.Stats.UpdatedAt)
	if err != nil {
		return fmt.Errorf("seed statistics: %w", err)
	}
	return nil
}

func (r *Repository) Commit(ctx context.Context, w *store.World) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	st := w.State
	cmd, err := tx.Exec(ctx, `
		UPDATE estates.game_state
		SET version = version + 1,
			balance_micros = $2,
			current_round = $3,
			last_round_at = $4,
			created_at = $5,
			net_worth_micros = $6,
			base_interest_rate = $7,
			property_tax_rate = $8,
			last_tax_round = $9,
			last_maintenance_round = $10,
			paused = $11,
			won = $12,
			lost = $13,
			ended_at = $14,
			message = $15
		WHERE id = 1 AND version = $1
	`, st.Version, st.BalanceMicros, st.CurrentRound, st.LastRoundAt, st.CreatedAt, st.NetWorthMicros,
		st.BaseInterestRate, st.PropertyTaxRate, st.LastTaxRound, st.LastMaintenanceRound,
		st.Paused, st.Won, st.Lost, st.EndedAt, st.Message)
	if err != nil {
		return fmt.Errorf("update game state: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return store.ErrStaleWorld
	}

	batch := &pgx.Batch{}
	if w.Wiped() {
		batch.Queue(`TRUNCATE estates.properties, estates.people, estates.rental_contracts, estates.market_events, estates.loans, estates.transactions`)
	}
	for _, id := range w.RemovedProperties() {
		batch.Queue(`DELETE FROM estates.properties WHERE id = $1`, id)
	}
	for _, id := range w.RemovedPeople() {
		batch.Queue(`DELETE FROM estates.people WHERE id = $1`, id)
	}
	queueStats(batch, &w.Stats)
	for _, p := range w.Properties {
		queueProperty(batch, p)
	}
	for _, p := range w.People {
		queuePerson(batch, p)
	}
	for _, c := range w.Contracts {
		queueContract(batch, c)
	}
	for _, e := range w.Events {
		queueEvent(batch, e)
	}
	for _, l := range w.Loans {
		queueLoan(batch, l)
	}
	for _, t := range w.Pending() {
		batch.Queue(`
			INSERT INTO estates.transactions (id, property_id, kind, amount_micros, details, round_number, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, t.ID, t.PropertyID, string(t.Kind), t.AmountMicros, t.Details, t.Round, t.At)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("write world: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	w.MarkCommitted(st.Version + 1)
	return nil
}

func (r *Repository) Transactions(ctx context.Context, limit int) ([]estate.PropertyTransaction, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, property_id, kind, amount_micros, details, round_number, created_at
		FROM estates.transactions
		ORDER BY seq DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]estate.PropertyTransaction, 0, limit)
	for rows.Next() {
		var (
			t    estate.PropertyTransaction
			kind string
		)
		if err := rows.Scan(&t.ID, &t.PropertyID, &kind, &t.AmountMicros, &t.Details, &t.Round, &t.At); err != nil {
			return nil, err
		}
		t.Kind = estate.TransactionKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

func loadState(ctx context.Context, tx pgx.Tx, st *estate.GameState) error {
	return tx.QueryRow(ctx, `
		SELECT version, balance_micros, current_round, last_round_at, created_at, net_worth_micros,
			base_interest_rate, property_tax_rate, last_tax_round, last_maintenance_round,
			paused, won, lost, ended_at, message
		FROM estates.game_state
		WHERE id = 1
	`).Scan(&st.Version, &st.BalanceMicros, &st.CurrentRound, &st.LastRoundAt, &st.CreatedAt, &st.NetWorthMicros,
		&st.BaseInterestRate, &st.PropertyTaxRate, &st.LastTaxRound, &st.LastMaintenanceRound,
		&st.Paused, &st.Won, &st.Lost, &st.EndedAt, &st.Message)
}

func loadStats(ctx context.Context, tx pgx.Tx, s *estate.PlayerStatistics) error {
	return tx.QueryRow(ctx, `
		SELECT properties_bought, properties_sold, properties_rented, money_spent_micros, money_earned_micros,
			rental_income_micros, taxes_paid_micros, maintenance_paid_micros, highest_balance_micros,
			net_worth_micros, rounds_played, updated_at
		FROM estates.player_statistics
		WHERE id = 1
	`).Scan(&s.PropertiesBought, &s.PropertiesSold, &s.PropertiesRented, &s.MoneySpentMicros, &s.MoneyEarnedMicros,
		&s.RentalIncomeMicros, &s.TaxesPaidMicros, &s.MaintenancePaidMicros, &s.HighestBalanceMicros,
		&s.NetWorthMicros, &s.RoundsPlayed, &s.UpdatedAt)
}

func loadProperties(ctx context.Context, tx pgx.Tx) ([]*estate.Property, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, address, city, county, location, estate_type, safety, status,
			price_micros, market_value_micros, monthly_rent_micros, maintenance_micros,
			renovation_level, owned_by_player, tenant_id, bedrooms, bathrooms, square_feet,
			created_at, listed_at, purchased_at, years_owned, appreciation_micros
		FROM estates.properties
		ORDER BY seq
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
		)
		if err := rows.Scan(&p.ID, &p.Address, &p.City, &p.County, &location, &typ, &safety, &status,
			&p.PriceMicros, &p.MarketValueMicros, &p.MonthlyRentMicros, &p.MaintenanceMicros,
			&p.RenovationLevel, &p.OwnedByPlayer, &p.TenantID, &p.Bedrooms, &p.Bathrooms, &p.SquareFeet,
			&p.CreatedAt, &p.ListedAt, &p.PurchasedAt, &p.YearsOwned, &p.AppreciationMicros); err != nil {
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

func loadPeople(ctx context.Context, tx pgx.Tx) ([]*estate.Person, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, role, county, desired_type, desired_safety, offer_micros,
			alt_safety, alt_offer_micros, active, appeared_at, round_number
		FROM estates.people
		ORDER BY seq
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
			alt               *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &role, &p.County, &typ, &safety, &p.OfferMicros,
			&alt, &p.AltOfferMicros, &p.Active, &p.AppearedAt, &p.Round); err != nil {
			return nil, err
		}
		p.Role = estate.PersonRole(role)
		p.DesiredType = estate.EstateType(typ)
		p.DesiredSafety = estate.SafetyLevel(safety)
		if alt != nil {
			s := estate.SafetyLevel(*alt)
			p.AltSafety = &s
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func loadContracts(ctx context.Context, tx pgx.Tx) ([]*estate.RentalContract, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, property_id, tenant_id, monthly_rent_micros, duration_months, months_remaining,
			months_stayed, started_at, ends_at, last_rent_at, leave_chance, active
		FROM estates.rental_contracts
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.RentalContract
	for rows.Next() {
		var c estate.RentalContract
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.TenantID, &c.MonthlyRentMicros, &c.DurationMonths, &c.MonthsRemaining,
			&c.MonthsStayed, &c.StartedAt, &c.EndsAt, &c.LastRentAt, &c.LeaveChance, &c.Active); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func loadEvents(ctx context.Context, tx pgx.Tx) ([]*estate.MarketEvent, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, kind, title, description, county, multiplier, duration, remaining, occurred_at, active
		FROM estates.market_events
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.MarketEvent
	for rows.Next() {
		var (
			e    estate.MarketEvent
			kind string
		)
		if err := rows.Scan(&e.ID, &kind, &e.Title, &e.Description, &e.County, &e.Multiplier,
			&e.Duration, &e.Remaining, &e.OccurredAt, &e.Active); err != nil {
			return nil, err
		}
		e.Kind = estate.EventKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func loadLoans(ctx context.Context, tx pgx.Tx) ([]*estate.Loan, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, purpose, principal_micros, interest_rate, duration_months, months_remaining,
			monthly_payment_micros, total_paid_micros, started_at, ends_at, active
		FROM estates.loans
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*estate.Loan
	for rows.Next() {
		var l estate.Loan
		if err := rows.Scan(&l.ID, &l.Purpose, &l.PrincipalMicros, &l.InterestRate, &l.DurationMonths, &l.MonthsRemaining,
			&l.MonthlyPaymentMicros, &l.TotalPaidMicros, &l.StartedAt, &l.EndsAt, &l.Active); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func queueStats(b *pgx.Batch, s *estate.PlayerStatistics) {
	b.Queue(`
		INSERT INTO estates.player_statistics (
			id, properties_bought, properties_sold, properties_rented, money_spent_micros, money_earned_micros,
			rental_income_micros, taxes_paid_micros, maintenance_paid_micros, highest_balance_micros,
			net_worth_micros, rounds_played, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			properties_bought = EXCLUDED.properties_bought,
			properties_sold = EXCLUDED.properties_sold,
			properties_rented = EXCLUDED.properties_rented,
			money_spent_micros = EXCLUDED.money_spent_micros,
			money_earned_micros = EXCLUDED.money_earned_micros,
			rental_income_micros = EXCLUDED.rental_income_micros,
			taxes_paid_micros = EXCLUDED.taxes_paid_micros,
			maintenance_paid_micros = EXCLUDED.maintenance_paid_micros,
			highest_balance_micros = EXCLUDED.highest_balance_micros,
			net_worth_micros = EXCLUDED.net_worth_micros,
			rounds_played = EXCLUDED.rounds_played,
			updated_at = EXCLUDED.updated_at
	`, s.PropertiesBought, s.PropertiesSold, s.PropertiesRented, s.MoneySpentMicros, s.MoneyEarnedMicros,
		s.RentalIncomeMicros, s.TaxesPaidMicros, s.MaintenancePaidMicros, s.HighestBalanceMicros,
		s.NetWorthMicros, s.RoundsPlayed, s.UpdatedAt)
}

func queueProperty(b *pgx.Batch, p *estate.Property) {
	b.Queue(`
		INSERT INTO estates.properties (
			id, address, city, county, location, estate_type, safety, status,
			price_micros, market_value_micros, monthly_rent_micros, maintenance_micros,
			renovation_level, owned_by_player, tenant_id, bedrooms, bathrooms, square_feet,
			created_at, listed_at, purchased_at, years_owned, appreciation_micros
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (id) DO UPDATE SET
			safety = EXCLUDED.safety,
			status = EXCLUDED.status,
			price_micros = EXCLUDED.price_micros,
			market_value_micros = EXCLUDED.market_value_micros,
			monthly_rent_micros = EXCLUDED.monthly_rent_micros,
			maintenance_micros = EXCLUDED.maintenance_micros,
			renovation_level = EXCLUDED.renovation_level,
			owned_by_player = EXCLUDED.owned_by_player,
			tenant_id = EXCLUDED.tenant_id,
			listed_at = EXCLUDED.listed_at,
			purchased_at = EXCLUDED.purchased_at,
			years_owned = EXCLUDED.years_owned,
			appreciation_micros = EXCLUDED.appreciation_micros
	`, p.ID, p.Address, p.City, p.County, string(p.Location), string(p.Type), string(p.Safety), string(p.Status),
		p.PriceMicros, p.MarketValueMicros, p.MonthlyRentMicros, p.MaintenanceMicros,
		p.RenovationLevel, p.OwnedByPlayer, p.TenantID, p.Bedrooms, p.Bathrooms, p.SquareFeet,
		p.CreatedAt, p.ListedAt, p.PurchasedAt, p.YearsOwned, p.AppreciationMicros)
}

func queuePerson(b *pgx.Batch, p *estate.Person) {
	var alt *string
	if p.AltSafety != nil {
		s := string(*p.AltSafety)
		alt = &s
	}
	b.Queue(`
		INSERT INTO estates.people (
			id, name, role, county, desired_type, desired_safety, offer_micros,
			alt_safety, alt_offer_micros, active, appeared_at, round_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active
	`, p.ID, p.Name, string(p.Role), p.County, string(p.DesiredType), string(p.DesiredSafety), p.OfferMicros,
		alt, p.AltOfferMicros, p.Active, p.AppearedAt, p.Round)
}

func queueContract(b *pgx.Batch, c *estate.RentalContract) {
	b.Queue(`
		INSERT INTO estates.rental_contracts (
			id, property_id, tenant_id, monthly_rent_micros, duration_months, months_remaining,
			months_stayed, started_at, ends_at, last_rent_at, leave_chance, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			months_remaining = EXCLUDED.months_remaining,
			months_stayed = EXCLUDED.months_stayed,
			ends_at = EXCLUDED.ends_at,
			last_rent_at = EXCLUDED.last_rent_at,
			active = EXCLUDED.active
	`, c.ID, c.PropertyID, c.TenantID, c.MonthlyRentMicros, c.DurationMonths, c.MonthsRemaining,
		c.MonthsStayed, c.StartedAt, c.EndsAt, c.LastRentAt, c.LeaveChance, c.Active)
}

func queueEvent(b *pgx.Batch, e *estate.MarketEvent) {
	b.Queue(`
		INSERT INTO estates.market_events (
			id, kind, title, description, county, multiplier, duration, remaining, occurred_at, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			remaining = EXCLUDED.remaining,
			active = EXCLUDED.active
	`, e.ID, string(e.Kind), e.Title, e.Description, e.County, e.Multiplier, e.Duration, e.Remaining, e.OccurredAt, e.Active)
}

func queueLoan(b *pgx.Batch, l *estate.Loan) {
	b.Queue(`
		INSERT INTO estates.loans (
			id, purpose, principal_micros, interest_rate, duration_months, months_remaining,
			monthly_payment_micros, total_paid_micros, started_at, ends_at, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			principal_micros = EXCLUDED.principal_micros,
			months_remaining = EXCLUDED.months_remaining,
			total_paid_micros = EXCLUDED.total_paid_micros,
			active = EXCLUDED.active
	`, l.ID, l.Purpose, l.PrincipalMicros, l.InterestRate, l.DurationMonths, l.MonthsRemaining,
		l.MonthlyPaymentMicros, l.TotalPaidMicros, l.StartedAt, l.EndsAt, l.Active)
}
