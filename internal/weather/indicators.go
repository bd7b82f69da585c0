// Package weather derives agro-meteorological indicators from daily
// observations: monthly hydrothermal indices and yearly heat and frost counts.
package weather

import (
	"cmp"
	"math"
	"slices"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

const (
	heatThreshold  = 30.0 // Tmax above this is a heat day
	frostThreshold = 0.0  // Tmax below this is a frost day
)

type monthKey struct {
	province string
	year     int
	month    int
}

type yearKey struct {
	province string
	year     int
}

// meanAcc accumulates a mean over present values only.
type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a meanAcc) value() *float64 {
	if a.n == 0 {
		return nil
	}
	return domain.Float(a.sum / float64(a.n))
}

type monthAcc struct {
	mean     meanAcc
	precip   float64
	max, min *float64
}

// Monthly aggregates days per (province, year, month), ordered by those keys.
func Monthly(days []domain.DailyWeather) []domain.MonthlyIndicators {
	groups := make(map[monthKey]*monthAcc)
	for _, d := range days {
		k := monthKey{province: d.Province, year: d.Year, month: int(d.Date.Month())}
		acc, ok := groups[k]
		if !ok {
			acc = &monthAcc{}
			groups[k] = acc
		}
		acc.mean.add(d.TempMean)
		if d.Precipitation != nil {
			acc.precip += *d.Precipitation
		}
		acc.max = pick(acc.max, d.TempMax, math.Max)
		acc.min = pick(acc.min, d.TempMin, math.Min)
	}

	keys := make([]monthKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b monthKey) int {
		return cmp.Or(cmp.Compare(a.province, b.province), cmp.Compare(a.year, b.year), cmp.Compare(a.month, b.month))
	})

	out := make([]domain.MonthlyIndicators, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		mean := acc.mean.value()
		out = append(out, domain.MonthlyIndicators{
			Province:      k.province,
			Year:          k.year,
			Month:         k.month,
			TempMean:      mean,
			Precipitation: acc.precip,
			TempMax:       acc.max,
			TempMin:       acc.min,
			Hydrothermal:  Hydrothermal(acc.precip, mean),
		})
	}
	return out
}

// Hydrothermal is Sielianinov's coefficient precip / (mean temp × 10),
// rounded to two decimals. A missing or zero temperature yields 0.
func Hydrothermal(precip float64, meanTemp *float64) float64 {
	if meanTemp == nil || *meanTemp == 0 {
		return 0
	}
	return round2(precip / (*meanTemp * 10))
}

type yearAcc struct {
	mean   meanAcc
	precip float64
	heat   int
	frost  int
}

// Yearly aggregates days per (province, year), ordered by those keys.
func Yearly(days []domain.DailyWeather) []domain.YearlyIndicators {
	groups := make(map[yearKey]*yearAcc)
	for _, d := range days {
		k := yearKey{province: d.Province, year: d.Year}
		acc, ok := groups[k]
		if !ok {
			acc = &yearAcc{}
			groups[k] = acc
		}
		acc.mean.add(d.TempMean)
		if d.Precipitation != nil {
			acc.precip += *d.Precipitation
		}
		if d.TempMax != nil {
			if *d.TempMax > heatThreshold {
				acc.heat++
			}
			if *d.TempMax < frostThreshold {
				acc.frost++
			}
		}
	}

	keys := make([]yearKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b yearKey) int {
		return cmp.Or(cmp.Compare(a.province, b.province), cmp.Compare(a.year, b.year))
	})

	out := make([]domain.YearlyIndicators, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		out = append(out, domain.YearlyIndicators{
			Province:      k.province,
			Year:          k.year,
			TempMean:      acc.mean.value(),
			Precipitation: acc.precip,
			HeatDays:      acc.heat,
			FrostDays:     acc.frost,
		})
	}
	return out
}

func pick(cur, v *float64, f func(a, b float64) float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil {
		return domain.Float(*v)
	}
	return domain.Float(f(*cur, *v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
