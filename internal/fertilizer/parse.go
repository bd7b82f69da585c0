package fertilizer

import (
	"strings"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/sheet"
)

const (
	categoryPrefix = "nawozy"
	averagePrefix  = "średnia"
)

// ProvinceDirectory resolves workbook province abbreviations.
type ProvinceDirectory struct {
	names   map[string]string
	average string
}

// NewProvinceDirectory builds a directory from abbreviation → name pairs.
// average is the name of the pseudo-province whose prices are never emitted.
func NewProvinceDirectory(abbreviations map[string]string, average string) ProvinceDirectory {
	names := make(map[string]string, len(abbreviations))
	for k, v := range abbreviations {
		names[k] = v
	}
	return ProvinceDirectory{names: names, average: average}
}

// Resolve maps an abbreviation to the full province name. Unknown
// abbreviations resolve to the trimmed text itself.
func (d ProvinceDirectory) Resolve(abbr string) string {
	abbr = strings.TrimSpace(abbr)
	if name, ok := d.names[abbr]; ok {
		return name
	}
	return abbr
}

// IsAverage reports whether name is the average pseudo-province.
func (d ProvinceDirectory) IsAverage(name string) bool {
	return name == d.average
}

// Parser turns blocks into price records.
type Parser struct {
	provinces ProvinceDirectory
}

// NewParser creates a Parser resolving province headers through dir.
func NewParser(dir ProvinceDirectory) *Parser {
	return &Parser{provinces: dir}
}

// foldState is the accumulator threaded through a block's data rows.
type foldState struct {
	category *string
	records  []domain.PriceRecord
}

// ParseBlock parses one block. It fails with a *domain.MalformedBlockError
// when the block has no year.
func (p *Parser) ParseBlock(b Block) ([]domain.PriceRecord, error) {
	if len(b.Rows) == 0 {
		return nil, &domain.MalformedBlockError{Block: b.Index, Row: b.StartRow, Reason: "empty block"}
	}
	columns := p.columnProvinces(b.Rows[0])

	if len(b.Rows) < 2 {
		return nil, &domain.MalformedBlockError{Block: b.Index, Row: b.StartRow, Reason: "missing year row"}
	}
	year, ok := blockYear(b.Rows[1])
	if !ok {
		return nil, &domain.MalformedBlockError{Block: b.Index, Row: b.StartRow, Reason: "no year in year row"}
	}

	state := foldState{}
	for _, row := range b.Rows[2:] {
		state = p.step(state, year, columns, row)
	}
	return state.records, nil
}

// columnProvinces maps column index to province name. Columns without a
// header have no entry.
func (p *Parser) columnProvinces(header sheet.Row) map[int]string {
	columns := make(map[int]string, len(header))
	for j := 1; j < len(header); j++ {
		if header[j].IsBlank() {
			continue
		}
		columns[j] = p.provinces.Resolve(header[j].String())
	}
	return columns
}

// blockYear returns the first non-blank cell after the label as a year.
func blockYear(row sheet.Row) (int, bool) {
	for j := 1; j < len(row); j++ {
		c := row[j]
		if c.IsBlank() {
			continue
		}
		if c.Kind != sheet.Number {
			return 0, false
		}
		return int(c.Number), true
	}
	return 0, false
}

func (p *Parser) step(s foldState, year int, columns map[int]string, row sheet.Row) foldState {
	label := row.At(0)
	first := label.Trimmed()
	lower := strings.ToLower(first)

	if strings.HasPrefix(lower, categoryPrefix) {
		category := label.String()
		s.category = &category
		return s
	}
	if s.category == nil || first == "" || strings.HasPrefix(lower, averagePrefix) {
		return s
	}

	for j := 1; j < len(row); j++ {
		c := row[j]
		if c.Kind != sheet.Number || c.Number <= 0 {
			continue
		}
		province, ok := columns[j]
		if !ok || p.provinces.IsAverage(province) {
			continue
		}
		s.records = append(s.records, domain.PriceRecord{
			Year:          year,
			Category:      *s.category,
			Fertilizer:    first,
			Province:      province,
			PricePerTonne: c.Number,
		})
	}
	return s
}
