package game

import (
	"errors"
	"math"
	"slices"

	"estates/internal/estate"
)

const (
	RoundsPerTaxCycle    = 12
	RoundsPerMaintenance = 6
	MaxForSaleListings   = 20
	PeopleStaleRounds    = 5
	BankruptAfterRound   = 10

	EventSpawnChance    = 0.10
	RegionalEventChance = 0.30
	BuyerChance         = 0.50
	AltOfferChance      = 0.50
	StarterRiskyChance  = 0.60

	LoanPenaltyFactor = 1.05
	BuyOutPremium     = 1.15
	BuyOutAcceptRatio = 1.10

	VictoryNetWorthMicros  = int64(1_000_000) * estate.MicrosPerUnit
	BankruptNetWorthMicros = int64(-50_000) * estate.MicrosPerUnit
	BankruptBalanceMicros  = int64(-10_000) * estate.MicrosPerUnit

	StarterFloorMicros          = int64(3_000) * estate.MicrosPerUnit
	StarterCeilingMicros        = int64(9_000) * estate.MicrosPerUnit
	StarterAffordabilityMicros  = int64(10_000) * estate.MicrosPerUnit
	RenovationCostMicros        = int64(5) * estate.MicrosPerUnit
	MinRentMicros               = int64(10) * estate.MicrosPerUnit
	MaxRentMicros               = int64(50_000) * estate.MicrosPerUnit
	MinSalePriceMicros          = int64(1_000) * estate.MicrosPerUnit
	MaxSalePriceMicros          = int64(1_000_000) * estate.MicrosPerUnit
	MaxLoanMicros               = int64(500_000) * estate.MicrosPerUnit
	MaxLoanMonths               = 120
	DefaultTransactionsPageSize = 20
)

var (
	ErrGamePaused        = errors.New("game is paused")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrPersonNotFound    = errors.New("person not found")
	ErrNotForSale        = errors.New("property is not for sale")
	ErrNotOwned          = errors.New("property is not owned by the player")
	ErrAlreadyRented     = errors.New("property is rented")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWrongRole         = errors.New("person has the wrong role for this action")
	ErrOfferInactive     = errors.New("offer is no longer active")
	ErrOfferMismatch     = errors.New("offer does not match the property")
	ErrInvalidDuration   = errors.New("invalid rental duration")
	ErrInvalidAmount     = errors.New("amount out of range")
	ErrNothingAffordable = errors.New("no starter property is affordable")
)

// validRentalDuration reports whether months is one of the offered lease lengths.
func validRentalDuration(months int) bool {
	return slices.Contains(estate.RentalDurations, months)
}

// MonthlyPaymentMicros is the annuity payment that amortizes principal over
// months at the given annual rate.
func MonthlyPaymentMicros(principalMicros int64, annualRate float64, months int) int64 {
	if months <= 0 {
		return principalMicros
	}
	r := annualRate / 12
	if r <= 0 {
		return int64(math.Round(float64(principalMicros) / float64(months)))
	}
	p := float64(principalMicros) * r / (1 - math.Pow(1+r, -float64(months)))
	return int64(math.Round(p))
}
