package estate

// Pricing and appreciation policy. Every numeric knob the round engine uses to
// value property lives in these tables.

var BasePriceMicros = map[EstateType]int64{
	Apartment: 50_000 * MicrosPerUnit,
	House:     150_000 * MicrosPerUnit,
	Mansion:   500_000 * MicrosPerUnit,
}

var LocationMultiplier = map[LocationType]float64{
	Center:      1.5,
	AroundCity:  1.1,
	OutsideCity: 0.8,
}

var SafetyPriceMultiplier = map[SafetyLevel]float64{
	Safe:     1.3,
	Moderate: 1.0,
	Risky:    0.7,
}

// BaseOfferMicros is what a buyer or tenant opens with for each property type.
var BaseOfferMicros = map[EstateType]int64{
	Apartment: 60_000 * MicrosPerUnit,
	House:     200_000 * MicrosPerUnit,
	Mansion:   600_000 * MicrosPerUnit,
}

// AppreciationRate is the per-round growth of market value.
var AppreciationRate = map[EstateType]float64{
	Apartment: 0.002,
	House:     0.003,
	Mansion:   0.004,
}

var SafetyAppreciationMultiplier = map[SafetyLevel]float64{
	Safe:     1.2,
	Moderate: 1.0,
	Risky:    0.8,
}

// RenewalSafetyBonus is added to the base renewal chance when a lease expires.
var RenewalSafetyBonus = map[SafetyLevel]float64{
	Safe:     0.30,
	Moderate: 0.15,
	Risky:    0,
}

type EventSpec struct {
	Multiplier float64
	// FixedDuration overrides the random duration when > 0.
	FixedDuration int
}

// EventImpact holds the price multiplier of each event kind. Tax and rate
// changes pick their direction at spawn time; see TaxIncreaseMultiplier.
var EventImpact = map[EventKind]EventSpec{
	EconomicBoom:       {Multiplier: 1.15},
	Recession:          {Multiplier: 0.85},
	SafetyImprovement:  {Multiplier: 1.10},
	SafetyDegradation:  {Multiplier: 0.90},
	TaxChange:          {Multiplier: 1.0},
	InterestRateChange: {Multiplier: 1.0},
	NaturalDisaster:    {Multiplier: 0.70, FixedDuration: 5},
	PriceIncrease:      {Multiplier: 1.20},
	PriceDecrease:      {Multiplier: 0.80},
}

const (
	TaxIncreaseMultiplier = 0.95
	TaxReliefMultiplier   = 1.05
	TaxRateStep           = 0.10
	InterestRateStep      = 0.20
)
