// Package dataset provides the tabular model shared by every pipeline
// step: a table of numeric observations keyed by date, with the
// weekly-to-monthly aggregation and left-join operations the panel merge
// is built from.
package dataset

import (
	"sort"
	"time"

	"panelcli/internal/errors"
)

// Cell is a single numeric observation. Valid reports whether the value is
// present; an invalid cell renders as an empty CSV field.
type Cell struct {
	Value float64
	Valid bool
}

// Float returns a valid cell holding v.
func Float(v float64) Cell {
	return Cell{Value: v, Valid: true}
}

// Empty is the missing-value cell.
var Empty = Cell{}

// Row is one dated observation with cells parallel to the table's columns.
type Row struct {
	Date  time.Time
	Cells []Cell
}

// Table is a set of rows keyed by date with a fixed ordered column list.
// Dates are normalized to midnight UTC; inserting a duplicate date replaces
// the previous row (keep-last), so a table never holds duplicate keys.
type Table struct {
	cols   []string
	rows   []Row
	index  map[time.Time]int
	sorted bool
}

// New creates an empty table with the given value columns. The date key is
// implicit and not part of the column list.
func New(cols ...string) *Table {
	return &Table{
		cols:   append([]string(nil), cols...),
		index:  make(map[time.Time]int),
		sorted: true,
	}
}

// Columns returns the value column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// ColumnIndex returns the position of a value column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.cols {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// normalizeDate truncates to a calendar date in UTC.
func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Upsert inserts a row for the given date, replacing any existing row with
// the same date. The number of cells must match the column count.
func (t *Table) Upsert(date time.Time, cells ...Cell) error {
	if len(cells) != len(t.cols) {
		return errors.SchemaMismatch("cell count does not match column count")
	}
	key := normalizeDate(date)
	row := Row{Date: key, Cells: append([]Cell(nil), cells...)}

	if pos, ok := t.index[key]; ok {
		t.rows[pos] = row
		return nil
	}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, row)
	t.sorted = false
	return nil
}

// Get returns the row for a date, if present.
func (t *Table) Get(date time.Time) (Row, bool) {
	pos, ok := t.index[normalizeDate(date)]
	if !ok {
		return Row{}, false
	}
	return t.rows[pos], true
}

// Cell returns the observation at (date, column).
func (t *Table) Cell(date time.Time, col string) (Cell, bool) {
	row, ok := t.Get(date)
	if !ok {
		return Empty, false
	}
	idx, ok := t.ColumnIndex(col)
	if !ok {
		return Empty, false
	}
	return row.Cells[idx], true
}

// Rows returns the rows in ascending date order.
func (t *Table) Rows() []Row {
	t.sortRows()
	return append([]Row(nil), t.rows...)
}

// Dates returns the row keys in ascending order.
func (t *Table) Dates() []time.Time {
	t.sortRows()
	dates := make([]time.Time, len(t.rows))
	for i, r := range t.rows {
		dates[i] = r.Date
	}
	return dates
}

// DateRange returns the earliest and latest row dates. ok is false for an
// empty table.
func (t *Table) DateRange() (min, max time.Time, ok bool) {
	if len(t.rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	t.sortRows()
	return t.rows[0].Date, t.rows[len(t.rows)-1].Date, true
}

// FilterYears returns a new table containing only rows whose date falls in
// [startYear, endYear].
func (t *Table) FilterYears(startYear, endYear int) *Table {
	out := New(t.cols...)
	t.sortRows()
	for _, r := range t.rows {
		if r.Date.Year() >= startYear && r.Date.Year() <= endYear {
			out.Upsert(r.Date, r.Cells...)
		}
	}
	return out
}

func (t *Table) sortRows() {
	if t.sorted {
		return
	}
	sort.Slice(t.rows, func(i, j int) bool {
		return t.rows[i].Date.Before(t.rows[j].Date)
	})
	for i, r := range t.rows {
		t.index[r.Date] = i
	}
	t.sorted = true
}
