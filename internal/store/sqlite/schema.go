package sqlite

var schema = []string{
	`CREATE TABLE IF NOT EXISTS game_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL,
		balance_micros INTEGER NOT NULL,
		current_round INTEGER NOT NULL,
		last_round_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		net_worth_micros INTEGER NOT NULL,
		base_interest_rate REAL NOT NULL,
		property_tax_rate REAL NOT NULL,
		last_tax_round INTEGER NOT NULL DEFAULT 0,
		last_maintenance_round INTEGER NOT NULL DEFAULT 0,
		paused BOOLEAN NOT NULL DEFAULT 0,
		won BOOLEAN NOT NULL DEFAULT 0,
		lost BOOLEAN NOT NULL DEFAULT 0,
		ended_at TEXT,
		message TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS player_statistics (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		properties_bought INTEGER NOT NULL DEFAULT 0,
		properties_sold INTEGER NOT NULL DEFAULT 0,
		properties_rented INTEGER NOT NULL DEFAULT 0,
		money_spent_micros INTEGER NOT NULL DEFAULT 0,
		money_earned_micros INTEGER NOT NULL DEFAULT 0,
		rental_income_micros INTEGER NOT NULL DEFAULT 0,
		taxes_paid_micros INTEGER NOT NULL DEFAULT 0,
		maintenance_paid_micros INTEGER NOT NULL DEFAULT 0,
		highest_balance_micros INTEGER NOT NULL DEFAULT 0,
		net_worth_micros INTEGER NOT NULL DEFAULT 0,
		rounds_played INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		city TEXT NOT NULL,
		county TEXT NOT NULL,
		location TEXT NOT NULL,
		estate_type TEXT NOT NULL,
		safety TEXT NOT NULL,
		status TEXT NOT NULL,
		price_micros INTEGER NOT NULL,
		market_value_micros INTEGER NOT NULL,
		monthly_rent_micros INTEGER NOT NULL,
		maintenance_micros INTEGER NOT NULL,
		renovation_level INTEGER NOT NULL DEFAULT 0,
		owned_by_player BOOLEAN NOT NULL DEFAULT 0,
		tenant_id TEXT,
		bedrooms INTEGER NOT NULL,
		bathrooms INTEGER NOT NULL,
		square_feet INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		listed_at TEXT NOT NULL,
		purchased_at TEXT NOT NULL,
		years_owned INTEGER NOT NULL DEFAULT 0,
		appreciation_micros INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties(status, listed_at);`,
	`CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		county TEXT NOT NULL,
		desired_type TEXT NOT NULL,
		desired_safety TEXT NOT NULL,
		offer_micros INTEGER NOT NULL,
		alt_safety TEXT,
		alt_offer_micros INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL,
		appeared_at TEXT NOT NULL,
		round_number INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS rental_contracts (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		monthly_rent_micros INTEGER NOT NULL,
		duration_months INTEGER NOT NULL,
		months_remaining INTEGER NOT NULL,
		months_stayed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		last_rent_at TEXT NOT NULL,
		leave_chance REAL NOT NULL,
		active BOOLEAN NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS market_events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		county TEXT NOT NULL DEFAULT '',
		multiplier REAL NOT NULL,
		duration INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		occurred_at TEXT NOT NULL,
		active BOOLEAN NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		purpose TEXT NOT NULL,
		principal_micros INTEGER NOT NULL,
		interest_rate REAL NOT NULL,
		duration_months INTEGER NOT NULL,
		months_remaining INTEGER NOT NULL,
		monthly_payment_micros INTEGER NOT NULL,
		total_paid_micros INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		active BOOLEAN NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		property_id TEXT,
		kind TEXT NOT NULL,
		amount_micros INTEGER NOT NULL,
		details TEXT NOT NULL,
		round_number INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);`,
}
