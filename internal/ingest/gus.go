package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/reference"
)

// Output table names.
const (
	TableYields        = "plony_pszenicy"
	TableFertilization = "nawozenie_npk"
	TableWheatPrices   = "ceny_pszenicy"
)

// VariableFetcher fetches one BDL variable for one year.
type VariableFetcher interface {
	FetchVariable(ctx context.Context, variableID string, year int) ([]domain.ProvinceValue, error)
}

// GUSExtractor builds the yield, fertilization and wheat price tables.
// It implements pipeline.Extractor.
type GUSExtractor struct {
	fetcher   VariableFetcher
	variables reference.GUSVariables
	years     []int
	pacer     *Pacer
	strict    bool
	logger    *slog.Logger
	report    FetchReport
}

// NewGUSExtractor creates an extractor for the given years.
func NewGUSExtractor(f VariableFetcher, vars reference.GUSVariables, years []int, pacer *Pacer, strict bool, logger *slog.Logger) *GUSExtractor {
	return &GUSExtractor{
		fetcher:   f,
		variables: vars,
		years:     years,
		pacer:     pacer,
		strict:    strict,
		logger:    logger,
	}
}

// Name identifies the pipeline in logs and metrics.
func (e *GUSExtractor) Name() string {
	return "gus"
}

// Report returns the failures of the last extraction.
func (e *GUSExtractor) Report() *FetchReport {
	return &e.report
}

func (e *GUSExtractor) Extract(ctx context.Context) ([]*domain.Table, error) {
	e.report = FetchReport{}

	yields, err := e.fetchAll(ctx, e.variables.Yields)
	if err != nil {
		return nil, err
	}

	fertilization := make([][]domain.ProvinceValue, len(e.variables.Fertilization))
	for i, v := range e.variables.Fertilization {
		if fertilization[i], err = e.fetchAll(ctx, v); err != nil {
			return nil, err
		}
	}

	prices, err := e.fetchAll(ctx, e.variables.WheatPrice)
	if err != nil {
		return nil, err
	}

	if e.strict && e.report.Failed() {
		return nil, fmt.Errorf("gus: %d of %d requests failed: %w", len(e.report.Failures), e.report.Requests, e.report.Err())
	}

	return []*domain.Table{
		yieldTable(e.variables.Yields.Column, yields),
		fertilizationTable(e.variables.Fertilization, fertilization),
		wheatPriceTable(e.variables.WheatPrice.Column, prices),
	}, nil
}

// fetchAll requests a variable for every year. Failed years are logged and
// dropped; only context cancellation aborts.
func (e *GUSExtractor) fetchAll(ctx context.Context, v reference.Variable) ([]domain.ProvinceValue, error) {
	var out []domain.ProvinceValue
	for _, year := range e.years {
		if err := e.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		e.logger.Info("fetching gus variable", "variable", v.ID, "column", v.Column, "year", year)
		values, err := e.fetcher.FetchVariable(ctx, v.ID, year)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.report.record(err)
		if err != nil {
			e.logger.Warn("gus fetch failed, dropping", "variable", v.ID, "year", year, "error", err)
			continue
		}
		out = append(out, values...)
	}
	return out, nil
}

func provinceColumns() []domain.Column {
	return []domain.Column{
		{Name: "id", Kind: domain.ColumnText},
		{Name: "wojewodztwo", Kind: domain.ColumnText},
		{Name: "rok", Kind: domain.ColumnInt},
	}
}

func yieldTable(column string, values []domain.ProvinceValue) *domain.Table {
	t := domain.NewTable(TableYields, append(provinceColumns(), domain.Column{Name: column, Kind: domain.ColumnFloat})...)
	for _, v := range values {
		t.Append(v.UnitID, v.Province, v.Year, domain.Deref(v.Value))
	}
	return t
}

func wheatPriceTable(column string, values []domain.ProvinceValue) *domain.Table {
	t := domain.NewTable(TableWheatPrices, append(provinceColumns(),
		domain.Column{Name: column, Kind: domain.ColumnFloat},
		domain.Column{Name: "cena_pszenicy_t", Kind: domain.ColumnFloat},
	)...)
	for _, v := range values {
		var perTonne any
		if v.Value != nil {
			perTonne = *v.Value * 10
		}
		t.Append(v.UnitID, v.Province, v.Year, domain.Deref(v.Value), perTonne)
	}
	return t
}

type provinceYear struct {
	id       string
	province string
	year     int
}

// fertilizationTable left-joins every variable onto the first one by
// (unit id, province, year).
func fertilizationTable(vars []reference.Variable, series [][]domain.ProvinceValue) *domain.Table {
	cols := provinceColumns()
	for _, v := range vars {
		cols = append(cols, domain.Column{Name: v.Column, Kind: domain.ColumnFloat})
	}
	t := domain.NewTable(TableFertilization, cols...)
	if len(series) == 0 {
		return t
	}

	lookups := make([]map[provinceYear]*float64, len(series))
	for i := 1; i < len(series); i++ {
		m := make(map[provinceYear]*float64, len(series[i]))
		for _, v := range series[i] {
			k := provinceYear{id: v.UnitID, province: v.Province, year: v.Year}
			if _, dup := m[k]; !dup {
				m[k] = v.Value
			}
		}
		lookups[i] = m
	}

	for _, base := range series[0] {
		k := provinceYear{id: base.UnitID, province: base.Province, year: base.Year}
		row := []any{base.UnitID, base.Province, base.Year, domain.Deref(base.Value)}
		for i := 1; i < len(series); i++ {
			row = append(row, domain.Deref(lookups[i][k]))
		}
		t.Append(row...)
	}
	return t
}
