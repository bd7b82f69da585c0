// Package sheet reads spreadsheet rows and classifies their cells into
// blank, text and number variants before any business parsing happens.
package sheet

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the variant of a classified cell.
type Kind int

const (
	Blank Kind = iota
	Text
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "blank"
	}
}

// Cell is a classified spreadsheet cell. Text keeps the raw cell content
// for every kind; Number is only meaningful when Kind is Number.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
}

// Classify turns raw cell content into a Cell.
func Classify(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: Blank, Text: raw}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Cell{Kind: Number, Text: raw, Number: v}
	}
	return Cell{Kind: Text, Text: raw}
}

// TextCell classifies s like a raw sheet value.
func TextCell(s string) Cell { return Classify(s) }

// NumberCell builds a Number cell whose text is the shortest rendering of v.
func NumberCell(v float64) Cell {
	return Cell{Kind: Number, Text: strconv.FormatFloat(v, 'f', -1, 64), Number: v}
}

// String renders the cell as text. Blank cells render empty.
func (c Cell) String() string {
	if c.Kind == Blank {
		return ""
	}
	return c.Text
}

// Trimmed is String without surrounding whitespace.
func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

// IsBlank reports whether the cell holds no content.
func (c Cell) IsBlank() bool {
	return c.Kind == Blank
}

// Row is one spreadsheet row. Missing trailing cells read as Blank.
type Row []Cell

// At returns cell i, or a Blank cell past the end of the row.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{Kind: Blank}
	}
	return r[i]
}

// ClassifyRows classifies a grid of raw cell strings.
func ClassifyRows(raw [][]string) []Row {
	rows := make([]Row, len(raw))
	for i, cells := range raw {
		row := make(Row, len(cells))
		for j, v := range cells {
			row[j] = Classify(v)
		}
		rows[i] = row
	}
	return rows
}
