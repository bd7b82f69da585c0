package fertilizer

import (
	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

// Output table names.
const (
	TablePrices         = "ceny_nawozow"
	TableNutrientPrices = "ceny_nawozow_pierwiastki"
	TableExtrapolated   = "ceny_nawozow_pierwiastki_uzupelnione"
)

const (
	columnYear          = "rok"
	columnCategory      = "kategoria"
	columnFertilizer    = "nawóz"
	columnProvince      = "wojewodztwo"
	columnPricePerTonne = "cena_pln_t"
	columnNutrient      = "skladnik"
	columnNutrientPerKg = "cena_za_kg_czysty"
)

func priceColumns() []domain.Column {
	return []domain.Column{
		{Name: columnYear, Kind: domain.ColumnInt},
		{Name: columnCategory, Kind: domain.ColumnText},
		{Name: columnFertilizer, Kind: domain.ColumnText},
		{Name: columnProvince, Kind: domain.ColumnText},
		{Name: columnPricePerTonne, Kind: domain.ColumnFloat},
	}
}

// PriceTable renders observed price records.
func PriceTable(records []domain.PriceRecord) *domain.Table {
	t := domain.NewTable(TablePrices, priceColumns()...)
	for _, r := range records {
		t.Append(r.Year, r.Category, r.Fertilizer, r.Province, r.PricePerTonne)
	}
	return t
}

// NutrientPriceTable renders nutrient price records under the given table
// name. Projected records have no price per tonne.
func NutrientPriceTable(name string, records []domain.NutrientPriceRecord) *domain.Table {
	cols := append(priceColumns(),
		domain.Column{Name: columnNutrient, Kind: domain.ColumnText},
		domain.Column{Name: columnNutrientPerKg, Kind: domain.ColumnFloat},
	)
	t := domain.NewTable(name, cols...)
	for _, r := range records {
		var perTonne any
		if !r.Extrapolated {
			perTonne = r.PricePerTonne
		}
		t.Append(r.Year, r.Category, r.Fertilizer, r.Province, perTonne, string(r.Nutrient), domain.Deref(r.PricePerKg))
	}
	return t
}
