package game

import (
	"time"

	"github.com/google/uuid"
)

// RoundReport summarizes what one executed (or skipped) round did.
type RoundReport struct {
	Round                 int          `json:"round"`
	Skipped               bool         `json:"skipped"`
	At                    time.Time    `json:"at"`
	StaleListingsRemoved  int          `json:"stale_listings_removed"`
	EventsExpired         int          `json:"events_expired"`
	EventSpawned          string       `json:"event_spawned,omitempty"`
	PropertyListed        bool         `json:"property_listed"`
	StarterInjected       bool         `json:"starter_injected"`
	PeopleArrived         int          `json:"people_arrived"`
	PeoplePurged          int          `json:"people_purged"`
	Rentals               RentalReport `json:"rentals"`
	TaxPaidMicros         int64        `json:"tax_paid_micros"`
	TaxSkipped            bool         `json:"tax_skipped"`
	MaintenancePaidMicros int64        `json:"maintenance_paid_micros"`
	MaintenanceMissed     bool         `json:"maintenance_missed"`
	LoanPaidMicros        int64        `json:"loan_paid_micros"`
	LoansPenalized        int          `json:"loans_penalized"`
	Matches               int          `json:"matches"`
	BalanceMicros         int64        `json:"balance_micros"`
	NetWorthMicros        int64        `json:"net_worth_micros"`
	Won                   bool         `json:"won"`
	Lost                  bool         `json:"lost"`
}

type RentalReport struct {
	CollectedMicros int64 `json:"collected_micros"`
	EarlyLeaves     int   `json:"early_leaves"`
	Renewals        int   `json:"renewals"`
	BuyOuts         int   `json:"buy_outs"`
	MovedOut        int   `json:"moved_out"`
}

type Dashboard struct {
	Round               int            `json:"round"`
	BalanceMicros       int64          `json:"balance_micros"`
	NetWorthMicros      int64          `json:"net_worth_micros"`
	PropertyValueMicros int64          `json:"property_value_micros"`
	DebtMicros          int64          `json:"debt_micros"`
	BaseInterestRate    float64        `json:"base_interest_rate"`
	PropertyTaxRate     float64        `json:"property_tax_rate"`
	Paused              bool           `json:"paused"`
	Won                 bool           `json:"won"`
	Lost                bool           `json:"lost"`
	Message             string         `json:"message,omitempty"`
	ForSaleCount        int            `json:"for_sale_count"`
	ActiveRentals       int            `json:"active_rentals"`
	ActiveOffers        int            `json:"active_offers"`
	Owned               []PropertyView `json:"owned"`
	Loans               []LoanView     `json:"loans"`
	Stats               StatsView      `json:"stats"`
}

type PropertyView struct {
	ID                uuid.UUID  `json:"id"`
	Address           string     `json:"address"`
	City              string     `json:"city"`
	County            string     `json:"county"`
	Location          string     `json:"location"`
	Type              string     `json:"type"`
	Safety            string     `json:"safety"`
	Status            string     `json:"status"`
	PriceMicros       int64      `json:"price_micros"`
	ValueMicros       int64      `json:"value_micros"`
	MonthlyRentMicros int64      `json:"monthly_rent_micros"`
	MaintenanceMicros int64      `json:"maintenance_micros"`
	RenovationLevel   int        `json:"renovation_level"`
	TenantID          *uuid.UUID `json:"tenant_id,omitempty"`
	Bedrooms          int        `json:"bedrooms"`
	Bathrooms         int        `json:"bathrooms"`
	SquareFeet        int        `json:"square_feet"`
	ListedAt          time.Time  `json:"listed_at"`
}

type OfferView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	County         string    `json:"county"`
	DesiredType    string    `json:"desired_type"`
	DesiredSafety  string    `json:"desired_safety"`
	OfferMicros    int64     `json:"offer_micros"`
	AltSafety      string    `json:"alt_safety,omitempty"`
	AltOfferMicros int64     `json:"alt_offer_micros,omitempty"`
	Round          int       `json:"round"`
}

type EventView struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	County      string    `json:"county,omitempty"`
	Multiplier  float64   `json:"multiplier"`
	Remaining   int       `json:"remaining"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type LoanView struct {
	ID                   uuid.UUID `json:"id"`
	Purpose              string    `json:"purpose"`
	PrincipalMicros      int64     `json:"principal_micros"`
	InterestRate         float64   `json:"interest_rate"`
	MonthlyPaymentMicros int64     `json:"monthly_payment_micros"`
	MonthsRemaining      int       `json:"months_remaining"`
	TotalPaidMicros      int64     `json:"total_paid_micros"`
}

type StatsView struct {
	PropertiesBought      int   `json:"properties_bought"`
	PropertiesSold        int   `json:"properties_sold"`
	PropertiesRented      int   `json:"properties_rented"`
	MoneySpentMicros      int64 `json:"money_spent_micros"`
	MoneyEarnedMicros     int64 `json:"money_earned_micros"`
	RentalIncomeMicros    int64 `json:"rental_income_micros"`
	TaxesPaidMicros       int64 `json:"taxes_paid_micros"`
	MaintenancePaidMicros int64 `json:"maintenance_paid_micros"`
	HighestBalanceMicros  int64 `json:"highest_balance_micros"`
	RoundsPlayed          int   `json:"rounds_played"`
}

type TransactionView struct {
	ID           uuid.UUID  `json:"id"`
	PropertyID   *uuid.UUID `json:"property_id,omitempty"`
	Kind         string     `json:"kind"`
	AmountMicros int64      `json:"amount_micros"`
	Details      string     `json:"details"`
	Round        int        `json:"round"`
	At           time.Time  `json:"at"`
}

type LoanInput struct {
	AmountMicros int64
	Months       int
	Purpose      string
}

type RentOutInput struct {
	PropertyID uuid.UUID
	Months     int
	TenantName string
}
