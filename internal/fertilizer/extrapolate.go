package fertilizer

import (
	"cmp"
	"slices"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

type groupKey struct {
	fertilizer string
	province   string
	nutrient   domain.NutrientKind
}

func compareKeys(a, b groupKey) int {
	if c := cmp.Compare(a.fertilizer, b.fertilizer); c != 0 {
		return c
	}
	if c := cmp.Compare(a.province, b.province); c != 0 {
		return c
	}
	return cmp.Compare(a.nutrient, b.nutrient)
}

// Extrapolate appends projected records for target years past each
// (fertilizer, province, nutrient) group's last observation. The step is the
// difference between the two most recent observations, applied once per
// year past the later one. Groups with fewer than two distinct years get no
// projections. The input records are returned first and unchanged.
func Extrapolate(records []domain.NutrientPriceRecord, targets []int) []domain.NutrientPriceRecord {
	groups := make(map[groupKey][]domain.NutrientPriceRecord)
	for _, r := range records {
		k := groupKey{fertilizer: r.Fertilizer, province: r.Province, nutrient: r.Nutrient}
		groups[k] = append(groups[k], r)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)

	out := make([]domain.NutrientPriceRecord, len(records), len(records)+len(keys)*len(targets))
	copy(out, records)

	for _, k := range keys {
		out = append(out, projectGroup(groups[k], targets)...)
	}
	return out
}

func projectGroup(group []domain.NutrientPriceRecord, targets []int) []domain.NutrientPriceRecord {
	if distinctYears(group) < 2 {
		return nil
	}

	sorted := slices.Clone(group)
	slices.SortStableFunc(sorted, func(a, b domain.NutrientPriceRecord) int {
		return cmp.Compare(a.Year, b.Year)
	})
	prev, last := sorted[len(sorted)-2], sorted[len(sorted)-1]
	lastYear := max(prev.Year, last.Year)

	var projected []domain.NutrientPriceRecord
	for _, year := range targets {
		if year <= lastYear {
			continue
		}
		projected = append(projected, domain.NutrientPriceRecord{
			PriceRecord: domain.PriceRecord{
				Year:       year,
				Category:   prev.Category,
				Fertilizer: last.Fertilizer,
				Province:   last.Province,
			},
			Nutrient:     last.Nutrient,
			PricePerKg:   projectPrice(prev.PricePerKg, last.PricePerKg, year-lastYear),
			Extrapolated: true,
		})
	}
	return projected
}

func projectPrice(prev, last *float64, steps int) *float64 {
	if prev == nil || last == nil {
		return nil
	}
	delta := *last - *prev
	return domain.Float(*last + delta*float64(steps))
}

func distinctYears(group []domain.NutrientPriceRecord) int {
	seen := make(map[int]struct{}, len(group))
	for _, r := range group {
		seen[r.Year] = struct{}{}
	}
	return len(seen)
}
