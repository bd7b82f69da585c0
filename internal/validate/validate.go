// Package validate re-reads the fertilizer CSV outputs and checks their
// integrity in three phases: schema, invariants, and extrapolation.
package validate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/fertilizer"
)

// Phase tracks pass/fail for a validation phase.
type Phase struct {
	Name   string
	Errors []string
}

func (p *Phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

// Passed reports whether the phase recorded no errors.
func (p *Phase) Passed() bool { return len(p.Errors) == 0 }

// Report is the outcome of a validation run.
type Report struct {
	Phases []*Phase
	Rows   map[string]int // data rows per table
}

// Passed reports whether every phase passed.
func (r *Report) Passed() bool {
	for _, p := range r.Phases {
		if !p.Passed() {
			return false
		}
	}
	return true
}

// Print writes a summary followed by the detailed errors of failed phases.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Fertilizer Output Validation ===")
	fmt.Fprintln(w)
	for _, p := range r.Phases {
		status := "PASS"
		if !p.Passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.Errors))
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.Name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d %s, %d %s, %d %s\n",
		r.Rows[fertilizer.TablePrices], fertilizer.TablePrices,
		r.Rows[fertilizer.TableNutrientPrices], fertilizer.TableNutrientPrices,
		r.Rows[fertilizer.TableExtrapolated], fertilizer.TableExtrapolated)

	for _, p := range r.Phases {
		if p.Passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if r.Passed() {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
}

// Validator checks the CSV files in a directory.
type Validator struct {
	dir       string
	provinces map[string]bool
	average   string
}

// New creates a Validator for the CSVs under dir. provinces lists the
// canonical province names; average is the name that must never appear.
func New(dir string, provinces []string, average string) *Validator {
	set := make(map[string]bool, len(provinces))
	for _, p := range provinces {
		set[p] = true
	}
	return &Validator{dir: dir, provinces: set, average: average}
}

// Run loads the three fertilizer tables and validates them. A missing or
// unreadable file is returned as an error; data problems are reported in
// the Report.
func (v *Validator) Run() (*Report, error) {
	prices, err := v.load(fertilizer.TablePrices)
	if err != nil {
		return nil, err
	}
	nutrients, err := v.load(fertilizer.TableNutrientPrices)
	if err != nil {
		return nil, err
	}
	extrapolated, err := v.load(fertilizer.TableExtrapolated)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Rows: map[string]int{
			prices.name:       len(prices.rows),
			nutrients.name:    len(nutrients.rows),
			extrapolated.name: len(extrapolated.rows),
		},
	}
	report.Phases = []*Phase{
		validateSchema(prices, nutrients, extrapolated),
		v.validateInvariants(prices, nutrients, extrapolated),
		validateExtrapolation(nutrients, extrapolated),
	}
	return report, nil
}

type csvTable struct {
	name   string
	header []string
	rows   [][]string
}

func (t *csvTable) index(column string) int {
	return slices.Index(t.header, column)
}

func (v *Validator) load(name string) (*csvTable, error) {
	path := filepath.Join(v.dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return &csvTable{name: name, header: records[0], rows: records[1:]}, nil
}

// ── Phase 1: Schema ──

func validateSchema(prices, nutrients, extrapolated *csvTable) *Phase {
	p := &Phase{Name: "Phase 1: Schema"}
	checkSchema(p, prices, fertilizer.PriceTable(nil))
	checkSchema(p, nutrients, fertilizer.NutrientPriceTable(fertilizer.TableNutrientPrices, nil))
	checkSchema(p, extrapolated, fertilizer.NutrientPriceTable(fertilizer.TableExtrapolated, nil))
	return p
}

func checkSchema(p *Phase, got *csvTable, want *domain.Table) {
	if !slices.Equal(got.header, want.ColumnNames()) {
		p.errorf("%s: header %v, want %v", got.name, got.header, want.ColumnNames())
		return
	}
	for i, row := range got.rows {
		if len(row) != len(want.Columns) {
			p.errorf("%s row %d: %d fields, want %d", got.name, i+1, len(row), len(want.Columns))
			continue
		}
		for j, col := range want.Columns {
			if !validKind(row[j], col.Kind) {
				p.errorf("%s row %d: %s=%q is not %s", got.name, i+1, col.Name, row[j], col.Kind)
			}
		}
	}
}

func validKind(s string, k domain.ColumnKind) bool {
	if s == "" {
		return true
	}
	switch k {
	case domain.ColumnInt:
		_, err := strconv.Atoi(s)
		return err == nil
	case domain.ColumnFloat:
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	default:
		return true
	}
}

// ── Phase 2: Invariants ──

func (v *Validator) validateInvariants(prices, nutrients, extrapolated *csvTable) *Phase {
	p := &Phase{Name: "Phase 2: Invariants"}

	for _, t := range []*csvTable{prices, nutrients, extrapolated} {
		province := t.index("wojewodztwo")
		if province < 0 {
			continue
		}
		for i, row := range t.rows {
			if province >= len(row) {
				continue
			}
			switch name := row[province]; {
			case name == v.average:
				p.errorf("%s row %d: average province %q emitted", t.name, i+1, name)
			case !v.provinces[name]:
				p.errorf("%s row %d: unknown province %q", t.name, i+1, name)
			}
		}
	}

	// Observed rows always carry a positive price per tonne.
	checkPositive(p, prices, "cena_pln_t", true)
	checkPositive(p, nutrients, "cena_pln_t", true)
	checkPositive(p, extrapolated, "cena_pln_t", false)

	for _, t := range []*csvTable{nutrients, extrapolated} {
		nutrient := t.index("skladnik")
		if nutrient < 0 {
			continue
		}
		for i, row := range t.rows {
			if nutrient >= len(row) {
				continue
			}
			if _, ok := domain.ParseNutrientKind(row[nutrient]); !ok {
				p.errorf("%s row %d: nutrient %q is not N, P or K", t.name, i+1, row[nutrient])
			}
		}
	}
	return p
}

func checkPositive(p *Phase, t *csvTable, column string, required bool) {
	idx := t.index(column)
	if idx < 0 {
		return
	}
	for i, row := range t.rows {
		if idx >= len(row) {
			continue
		}
		if row[idx] == "" {
			if required {
				p.errorf("%s row %d: %s is empty", t.name, i+1, column)
			}
			continue
		}
		if f, err := strconv.ParseFloat(row[idx], 64); err == nil && f <= 0 {
			p.errorf("%s row %d: %s=%s is not positive", t.name, i+1, column, row[idx])
		}
	}
}

// ── Phase 3: Extrapolation ──

type seriesKey struct {
	fertilizer, province, nutrient string
}

func validateExtrapolation(nutrients, extrapolated *csvTable) *Phase {
	p := &Phase{Name: "Phase 3: Extrapolation"}

	cols := []string{"rok", "nawóz", "wojewodztwo", "skladnik", "cena_pln_t"}
	nIdx := indexes(nutrients, cols)
	eIdx := indexes(extrapolated, cols)
	if nIdx == nil || eIdx == nil {
		p.errorf("cannot check extrapolation: missing columns")
		return p
	}

	// Every observed row survives unchanged.
	remaining := make(map[string]int)
	for _, row := range extrapolated.rows {
		remaining[fmt.Sprint(row)]++
	}
	lastObserved := make(map[seriesKey]int)
	for i, row := range nutrients.rows {
		k := fmt.Sprint(row)
		if remaining[k] == 0 {
			p.errorf("%s row %d missing from %s", nutrients.name, i+1, extrapolated.name)
		} else {
			remaining[k]--
		}
		key, year, ok := keyOf(row, nIdx)
		if ok && year > lastObserved[key] {
			lastObserved[key] = year
		}
	}

	projected := make(map[seriesKey]map[int]bool)
	for i, row := range extrapolated.rows {
		if eIdx[4] >= len(row) || row[eIdx[4]] != "" {
			continue
		}
		key, year, ok := keyOf(row, eIdx)
		if !ok {
			continue
		}
		last, observed := lastObserved[key]
		switch {
		case !observed:
			p.errorf("%s row %d: projection for %v without observations", extrapolated.name, i+1, key)
		case year <= last:
			p.errorf("%s row %d: projected year %d not after last observed year %d", extrapolated.name, i+1, year, last)
		}
		if projected[key] == nil {
			projected[key] = make(map[int]bool)
		}
		if projected[key][year] {
			p.errorf("%s row %d: duplicate projection for %v in %d", extrapolated.name, i+1, key, year)
		}
		projected[key][year] = true
	}
	return p
}

func indexes(t *csvTable, cols []string) []int {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.index(c)
		if idx[i] < 0 {
			return nil
		}
	}
	return idx
}

func keyOf(row []string, idx []int) (seriesKey, int, bool) {
	for _, i := range idx {
		if i >= len(row) {
			return seriesKey{}, 0, false
		}
	}
	year, err := strconv.Atoi(row[idx[0]])
	if err != nil {
		return seriesKey{}, 0, false
	}
	return seriesKey{fertilizer: row[idx[1]], province: row[idx[2]], nutrient: row[idx[3]]}, year, true
}
