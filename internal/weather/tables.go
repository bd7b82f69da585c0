package weather

import "github.com/couchcryptid/wheat-yield-etl/internal/domain"

// Output table names.
const (
	TableYearly  = "dane_pogodowe"
	TableMonthly = "wskazniki_miesieczne"
)

// YearlyTable renders yearly indicators.
func YearlyTable(rows []domain.YearlyIndicators) *domain.Table {
	t := domain.NewTable(TableYearly,
		domain.Column{Name: "wojewodztwo", Kind: domain.ColumnText},
		domain.Column{Name: "rok", Kind: domain.ColumnInt},
		domain.Column{Name: "średnia_temp_roczna", Kind: domain.ColumnFloat},
		domain.Column{Name: "suma_opadów", Kind: domain.ColumnFloat},
		domain.Column{Name: "dni_upały", Kind: domain.ColumnInt},
		domain.Column{Name: "dni_mrozy", Kind: domain.ColumnInt},
	)
	for _, r := range rows {
		t.Append(r.Province, r.Year, domain.Deref(r.TempMean), r.Precipitation, r.HeatDays, r.FrostDays)
	}
	return t
}

// MonthlyTable renders monthly indicators.
func MonthlyTable(rows []domain.MonthlyIndicators) *domain.Table {
	t := domain.NewTable(TableMonthly,
		domain.Column{Name: "wojewodztwo", Kind: domain.ColumnText},
		domain.Column{Name: "rok", Kind: domain.ColumnInt},
		domain.Column{Name: "miesiąc", Kind: domain.ColumnInt},
		domain.Column{Name: "średnia_temp", Kind: domain.ColumnFloat},
		domain.Column{Name: "suma_opadów", Kind: domain.ColumnFloat},
		domain.Column{Name: "temp_max", Kind: domain.ColumnFloat},
		domain.Column{Name: "temp_min", Kind: domain.ColumnFloat},
		domain.Column{Name: "wskaźnik_hydrotermiczny", Kind: domain.ColumnFloat},
	)
	for _, r := range rows {
		t.Append(r.Province, r.Year, r.Month, domain.Deref(r.TempMean), r.Precipitation,
			domain.Deref(r.TempMax), domain.Deref(r.TempMin), r.Hydrothermal)
	}
	return t
}
