package estate

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	MicrosPerUnit = int64(1_000_000)

	StartingBalanceMicros = int64(10_000) * MicrosPerUnit
	DefaultInterestRate   = 0.05
	DefaultPropertyTax    = 0.012
)

var Counties = []string{"AR", "TM", "B", "CT", "DN", "EX", "FR", "GV", "HX", "IR"}

// RentalDurations lists the lease lengths (in months) a contract may be signed for.
var RentalDurations = []int{3, 6, 9, 12}

type EstateType string

const (
	Apartment EstateType = "apartment"
	House     EstateType = "house"
	Mansion   EstateType = "mansion"
)

var EstateTypes = []EstateType{Apartment, House, Mansion}

type LocationType string

const (
	Center      LocationType = "center"
	AroundCity  LocationType = "around_city"
	OutsideCity LocationType = "outside_city"
)

var LocationTypes = []LocationType{Center, AroundCity, OutsideCity}

type SafetyLevel string

const (
	Safe     SafetyLevel = "safe"
	Moderate SafetyLevel = "moderate"
	Risky    SafetyLevel = "risky"
)

var SafetyLevels = []SafetyLevel{Safe, Moderate, Risky}

// Degrade moves a safety tier one notch towards Risky.
func (s SafetyLevel) Degrade() SafetyLevel {
	switch s {
	case Safe:
		return Moderate
	default:
		return Risky
	}
}

type EstateStatus string

const (
	ForSale EstateStatus = "for_sale"
	Owned   EstateStatus = "owned"
	Rented  EstateStatus = "rented"
)

type PersonRole string

const (
	Buyer  PersonRole = "buyer"
	Tenant PersonRole = "tenant"
)

type EventKind string

const (
	PriceIncrease      EventKind = "price_increase"
	PriceDecrease      EventKind = "price_decrease"
	SafetyImprovement  EventKind = "safety_improvement"
	SafetyDegradation  EventKind = "safety_degradation"
	TaxChange          EventKind = "tax_change"
	InterestRateChange EventKind = "interest_rate_change"
	NaturalDisaster    EventKind = "natural_disaster"
	EconomicBoom       EventKind = "economic_boom"
	Recession          EventKind = "recession"
)

var EventKinds = []EventKind{
	PriceIncrease,
	PriceDecrease,
	SafetyImprovement,
	SafetyDegradation,
	TaxChange,
	InterestRateChange,
	NaturalDisaster,
	EconomicBoom,
	Recession,
}

type TransactionKind string

const (
	TxPurchase     TransactionKind = "purchase"
	TxSale         TransactionKind = "sale"
	TxRentalIncome TransactionKind = "rental_income"
	TxRenovation   TransactionKind = "renovation"
	TxTax          TransactionKind = "tax"
	TxMaintenance  TransactionKind = "maintenance"
	TxEventImpact  TransactionKind = "event_impact"
	TxLoan         TransactionKind = "loan"
	TxLoanPayment  TransactionKind = "loan_payment"
)

type GameState struct {
	Version              int64
	BalanceMicros        int64
	CurrentRound         int
	LastRoundAt          time.Time
	CreatedAt            time.Time
	NetWorthMicros       int64
	BaseInterestRate     float64
	PropertyTaxRate      float64
	LastTaxRound         int
	LastMaintenanceRound int
	Paused               bool
	Won                  bool
	Lost                 bool
	EndedAt              *time.Time
	Message              string
}

// NewGameState returns the state a fresh game starts from.
func NewGameState(now time.Time) GameState {
	return GameState{
		BalanceMicros:    StartingBalanceMicros,
		CurrentRound:     1,
		LastRoundAt:      now,
		CreatedAt:        now,
		NetWorthMicros:   StartingBalanceMicros,
		BaseInterestRate: DefaultInterestRate,
		PropertyTaxRate:  DefaultPropertyTax,
	}
}

type Property struct {
	ID                 uuid.UUID
	Address            string
	City               string
	County             string
	Location           LocationType
	Type               EstateType
	Safety             SafetyLevel
	Status             EstateStatus
	PriceMicros        int64
	MarketValueMicros  int64
	MonthlyRentMicros  int64
	MaintenanceMicros  int64
	RenovationLevel    int
	OwnedByPlayer      bool
	TenantID           *uuid.UUID
	Bedrooms           int
	Bathrooms          int
	SquareFeet         int
	CreatedAt          time.Time
	ListedAt           time.Time
	PurchasedAt        time.Time
	YearsOwned         int
	AppreciationMicros int64
}

// ValueMicros is the market value, falling back to the asking price when no
// valuation has been recorded yet.
func (p *Property) ValueMicros() int64 {
	if p.MarketValueMicros > 0 {
		return p.MarketValueMicros
	}
	return p.PriceMicros
}

type Person struct {
	ID             uuid.UUID
	Name           string
	Role           PersonRole
	County         string
	DesiredType    EstateType
	DesiredSafety  SafetyLevel
	OfferMicros    int64
	AltSafety      *SafetyLevel
	AltOfferMicros int64
	Active         bool
	AppearedAt     time.Time
	Round          int
}

// Wants reports whether p is looking for exactly this kind of property.
func (p *Person) Wants(prop *Property) bool {
	return prop.County == p.County && prop.Type == p.DesiredType && prop.Safety == p.DesiredSafety
}

type RentalContract struct {
	ID                uuid.UUID
	PropertyID        uuid.UUID
	TenantID          uuid.UUID
	MonthlyRentMicros int64
	DurationMonths    int
	MonthsRemaining   int
	MonthsStayed      int
	StartedAt         time.Time
	EndsAt            time.Time
	LastRentAt        time.Time
	LeaveChance       float64
	Active            bool
}

type MarketEvent struct {
	ID          uuid.UUID
	Kind        EventKind
	Title       string
	Description string
	County      string // empty means national
	Multiplier  float64
	Duration    int
	Remaining   int
	OccurredAt  time.Time
	Active      bool
}

// Affects reports whether the event applies to county.
func (e *MarketEvent) Affects(county string) bool {
	return e.County == "" || e.County == county
}

type Loan struct {
	ID                   uuid.UUID
	Purpose              string
	PrincipalMicros      int64
	InterestRate         float64
	DurationMonths       int
	MonthsRemaining      int
	MonthlyPaymentMicros int64
	TotalPaidMicros      int64
	StartedAt            time.Time
	EndsAt               time.Time
	Active               bool
}

type PlayerStatistics struct {
	PropertiesBought      int
	PropertiesSold        int
	PropertiesRented      int
	MoneySpentMicros      int64
	MoneyEarnedMicros     int64
	RentalIncomeMicros    int64
	TaxesPaidMicros       int64
	MaintenancePaidMicros int64
	HighestBalanceMicros  int64
	NetWorthMicros        int64
	RoundsPlayed          int
	UpdatedAt             time.Time
}

type PropertyTransaction struct {
	ID           uuid.UUID
	PropertyID   *uuid.UUID
	Kind         TransactionKind
	AmountMicros int64
	Details      string
	Round        int
	At           time.Time
}

func UnitsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerUnit)))
}

func MicrosToUnits(v int64) float64 {
	return float64(v) / float64(MicrosPerUnit)
}

// ScaleMicros multiplies an amount by f, rounding to the nearest micro.
func ScaleMicros(v int64, f float64) int64 {
	return int64(math.Round(float64(v) * f))
}

// RoundToUnit rounds an amount to the nearest whole currency unit.
func RoundToUnit(v int64) int64 {
	return int64(math.Round(float64(v)/float64(MicrosPerUnit))) * MicrosPerUnit
}
