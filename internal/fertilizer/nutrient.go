package fertilizer

import (
	"strings"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

// NutrientTable maps lowercase commercial fertilizer names to their active
// nutrient content.
type NutrientTable map[string]domain.NutrientContent

// Lookup finds a fertilizer by trimmed, case-insensitive name.
func (t NutrientTable) Lookup(name string) (domain.NutrientContent, bool) {
	c, ok := t[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Convert derives the price of one kilogram of pure nutrient. Unknown
// fertilizers come back unresolved; a zero fraction leaves the price empty.
func (t NutrientTable) Convert(r domain.PriceRecord) domain.NutrientPriceRecord {
	out := domain.NutrientPriceRecord{PriceRecord: r}
	content, ok := t.Lookup(r.Fertilizer)
	if !ok {
		return out
	}
	out.Nutrient = content.Kind
	if content.Fraction > 0 {
		out.PricePerKg = domain.Float((r.PricePerTonne / 1000) / content.Fraction)
	}
	return out
}

// ConvertAll converts records and splits off the unresolved ones.
func (t NutrientTable) ConvertAll(records []domain.PriceRecord) (resolved []domain.NutrientPriceRecord, unresolved []domain.PriceRecord) {
	resolved = make([]domain.NutrientPriceRecord, 0, len(records))
	for _, r := range records {
		nr := t.Convert(r)
		if !nr.Resolved() {
			unresolved = append(unresolved, r)
			continue
		}
		resolved = append(resolved, nr)
	}
	return resolved, unresolved
}
