package domain

// NutrientKind is the pure nutrient a commercial fertilizer supplies.
type NutrientKind string

const (
	NutrientNone NutrientKind = ""
	NutrientN    NutrientKind = "N"
	NutrientP    NutrientKind = "P"
	NutrientK    NutrientKind = "K"
)

// ParseNutrientKind accepts "N", "P" or "K".
func ParseNutrientKind(s string) (NutrientKind, bool) {
	switch NutrientKind(s) {
	case NutrientN, NutrientP, NutrientK:
		return NutrientKind(s), true
	default:
		return NutrientNone, false
	}
}

// NutrientContent is the active-nutrient mass fraction of a commercial product.
type NutrientContent struct {
	Kind     NutrientKind
	Fraction float64
}

// PriceRecord is one observed workbook price.
type PriceRecord struct {
	Year          int
	Category      string
	Fertilizer    string
	Province      string
	PricePerTonne float64 // PLN per tonne, always > 0 for observed rows
}

// NutrientPriceRecord extends a PriceRecord with its pure-nutrient price.
// Nutrient is NutrientNone when the fertilizer is not in the nutrient table.
// Extrapolated records carry no observed price per tonne.
type NutrientPriceRecord struct {
	PriceRecord
	Nutrient     NutrientKind
	PricePerKg   *float64 // PLN per kg of pure nutrient
	Extrapolated bool
}

// Resolved reports whether the record has a nutrient classification.
func (r NutrientPriceRecord) Resolved() bool {
	return r.Nutrient != NutrientNone
}
