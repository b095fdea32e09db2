package model

import (
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a parsed cell. The zero value is CellNull so a lookup of
// a missing column reads as an empty cell.
type CellKind int

const (
	CellNull CellKind = iota
	CellText
	CellNumber
)

// nullMarkers are the textual values treated as missing, matching what
// spreadsheet exports usually write for empty cells.
var nullMarkers = map[string]struct{}{
	"":     {},
	"NaN":  {},
	"nan":  {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"NULL": {},
	"null": {},
	"None": {},
	"<NA>": {},
}

// Cell is a single value of the uploaded table.
type Cell struct {
	Raw    string
	Kind   CellKind
	Number float64
}

// NewCell parses raw text into a cell. Surrounding whitespace is ignored.
func NewCell(raw string) Cell {
	raw = strings.TrimSpace(raw)
	if _, ok := nullMarkers[raw]; ok {
		return Cell{Raw: raw, Kind: CellNull}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return Cell{Raw: raw, Kind: CellText}
	}
	return Cell{Raw: raw, Kind: CellNumber, Number: n}
}

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool { return c.Kind == CellNull }

// IsNumber reports whether the cell holds a finite number.
func (c Cell) IsNumber() bool { return c.Kind == CellNumber }

// String returns the display text of the cell; null cells render empty.
func (c Cell) String() string {
	if c.IsNull() {
		return ""
	}
	return c.Raw
}

// Row maps column names to cells.
type Row map[string]Cell

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// StudentTable is the uploaded grade sheet: header order plus rows keyed by header.
type StudentTable struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *StudentTable) Len() int { return len(t.Rows) }

// HasColumn reports whether the header contains name.
func (t *StudentTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns every cell of the named column in row order.
func (t *StudentTable) Column(name string) []Cell {
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[name]
	}
	return cells
}
