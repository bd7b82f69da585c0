package domain

import (
	"fmt"
	"strconv"
)

// ColumnKind is the storage type of a table column.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnInt
	ColumnFloat
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnInt:
		return "int"
	case ColumnFloat:
		return "float"
	default:
		return "text"
	}
}

// Column names and types one table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table is a named, typed, row-major dataset handed to loaders.
// Cell values are string, int, float64 or nil (missing).
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// NewTable creates an empty table with the given schema.
func NewTable(name string, columns ...Column) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds one row. It panics when the arity does not match the schema,
// which is always a programming error.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("table %s: row has %d values, schema has %d columns", t.Name, len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Record returns row i as a column-name → value map.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for j, c := range t.Columns {
		rec[c.Name] = t.Rows[i][j]
	}
	return rec
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// FormatValue renders a cell for text sinks. Missing values render empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Deref flattens an optional float into a table cell value.
func Deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
