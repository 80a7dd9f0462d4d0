// Package dataset defines the tabular representations of the firm-year
// panel: the untyped Table exchanged through CSV, the typed Panel the
// schema validator produces, and the Frame view the estimator consumes.
package dataset

import "strconv"

// Column names of the firm-year panel, in canonical order
const (
	ColFirmID = "firm_id"
	ColYear   = "year"
	ColX      = "x"
	ColTreat  = "treat"
	ColY      = "y"
)

// Columns returns the canonical column order of the panel
func Columns() []string {
	return []string{ColFirmID, ColYear, ColX, ColTreat, ColY}
}

// Table is an untyped row-oriented dataset as read from or written to
// CSV: a header plus string records. Typing happens in the schema
// validator, which coerces a Table into a Panel.
type Table struct {
	Columns []string
	Records [][]string
}

// NumRows returns the number of data records in the table
func (t *Table) NumRows() int {
	return len(t.Records)
}

// ColumnIndex returns the position of name in the header, or -1 when
// the column is absent
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) != -1
}

// FormatFloat renders v in the shortest form that parses back to the
// same bits, so a written table reads back value-identical
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatInt renders an integer cell
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
