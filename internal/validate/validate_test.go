package validate

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/wheat-yield-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/fertilizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var provinces = []string{"MAZOWIECKIE", "POMORSKIE"}

func observed(year int, province string, perTonne, perKg float64) domain.NutrientPriceRecord {
	return domain.NutrientPriceRecord{
		PriceRecord: domain.PriceRecord{
			Year:          year,
			Category:      "nawozy azotowe",
			Fertilizer:    "Saletra amonowa",
			Province:      province,
			PricePerTonne: perTonne,
		},
		Nutrient:   domain.NutrientN,
		PricePerKg: domain.Float(perKg),
	}
}

func projected(year int, province string, perKg float64) domain.NutrientPriceRecord {
	r := observed(year, province, 0, perKg)
	r.Extrapolated = true
	return r
}

func validResult() fertilizer.Result {
	nutrients := []domain.NutrientPriceRecord{
		observed(2017, "MAZOWIECKIE", 1000, 2.94),
		observed(2018, "MAZOWIECKIE", 1100, 3.23),
		observed(2018, "POMORSKIE", 1050, 3.08),
	}
	prices := make([]domain.PriceRecord, 0, len(nutrients))
	for _, r := range nutrients {
		prices = append(prices, r.PriceRecord)
	}
	return fertilizer.Result{
		Prices:         prices,
		NutrientPrices: nutrients,
		Extrapolated: append(append([]domain.NutrientPriceRecord{}, nutrients...),
			projected(2019, "MAZOWIECKIE", 3.52),
			projected(2020, "MAZOWIECKIE", 3.81),
		),
	}
}

func writeResult(t *testing.T, res fertilizer.Result) string {
	t.Helper()
	dir := t.TempDir()
	w := csvfile.NewWriter(dir, slog.Default())
	for _, tbl := range res.Tables() {
		require.NoError(t, w.Load(context.Background(), tbl))
	}
	return dir
}

func run(t *testing.T, dir string) *Report {
	t.Helper()
	report, err := New(dir, provinces, "ŚREDNIA").Run()
	require.NoError(t, err)
	return report
}

func phaseErrors(r *Report, name string) []string {
	for _, p := range r.Phases {
		if strings.Contains(p.Name, name) {
			return p.Errors
		}
	}
	return nil
}

func TestRun_ValidOutput(t *testing.T) {
	report := run(t, writeResult(t, validResult()))

	for _, p := range report.Phases {
		assert.Empty(t, p.Errors, p.Name)
	}
	assert.True(t, report.Passed())
	assert.Equal(t, 3, report.Rows[fertilizer.TablePrices])
	assert.Equal(t, 5, report.Rows[fertilizer.TableExtrapolated])

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_MissingFile(t *testing.T) {
	_, err := New(t.TempDir(), provinces, "ŚREDNIA").Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), fertilizer.TablePrices)
}

func TestRun_SchemaErrors(t *testing.T) {
	dir := writeResult(t, validResult())
	path := filepath.Join(dir, fertilizer.TablePrices+".csv")
	require.NoError(t, os.WriteFile(path, []byte("rok,nawóz\n2018,Mocznik\n"), 0o600))

	report := run(t, dir)
	errs := phaseErrors(report, "Schema")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "header")
	assert.False(t, report.Passed())
}

func TestRun_SchemaBadType(t *testing.T) {
	dir := writeResult(t, validResult())
	path := filepath.Join(dir, fertilizer.TablePrices+".csv")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes.Replace(raw, []byte("2017,"), []byte("rok2017,"), 1), 0o600))

	errs := phaseErrors(run(t, dir), "Schema")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "is not int")
}

func TestRun_InvariantErrors(t *testing.T) {
	res := validResult()
	res.Prices[0].Province = "ŚREDNIA"
	res.Prices[1].Province = "MAZOWSZE"
	res.Prices[2].PricePerTonne = -5
	res.NutrientPrices[2].Nutrient = "Ca"

	errs := phaseErrors(run(t, writeResult(t, res)), "Invariants")
	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "average province")
	assert.Contains(t, errs[1], "unknown province")
	assert.Contains(t, errs[2], "not positive")
	assert.Contains(t, errs[3], "not N, P or K")
}

func TestRun_ExtrapolationErrors(t *testing.T) {
	res := validResult()
	res.Extrapolated = append(res.Extrapolated[1:], // drop an observed row
		projected(2018, "POMORSKIE", 3.1),  // not after last observation
		projected(2020, "MAZOWIECKIE", 3.9), // duplicate
	)

	errs := phaseErrors(run(t, writeResult(t, res)), "Extrapolation")
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "missing from")
	assert.Contains(t, errs[1], "not after last observed year 2018")
	assert.Contains(t, errs[2], "duplicate projection")

	var out bytes.Buffer
	run(t, writeResult(t, res)).Print(&out)
	assert.Contains(t, out.String(), "Validation FAILED.")
}
