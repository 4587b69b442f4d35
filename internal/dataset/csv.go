package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"panelcli/internal/errors"
)

// dateLayout is the ISO form used for the date key in every table CSV.
const dateLayout = "2006-01-02"

// Header returns the CSV header row: the date key followed by the value
// columns.
func (t *Table) Header() []string {
	return append([]string{"date"}, t.cols...)
}

// Records returns the formatted CSV body rows in ascending date order.
// Missing cells render as empty fields.
func (t *Table) Records() [][]string {
	t.sortRows()
	records := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		rec := make([]string, 0, len(r.Cells)+1)
		rec = append(rec, r.Date.Format(dateLayout))
		for _, c := range r.Cells {
			rec = append(rec, FormatCell(c))
		}
		records = append(records, rec)
	}
	return records
}

// FormatCell renders a cell for CSV output.
func FormatCell(c Cell) string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range t.Records() {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FromCSV reads a table previously written by WriteCSV: a header row whose
// first field is the date key, then one row per date. Empty fields become
// missing cells.
func FromCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to read csv", err)
	}
	if len(records) == 0 {
		return nil, errors.SchemaMismatch("csv has no header row")
	}

	header := records[0]
	if len(header) < 1 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, errors.SchemaMismatch("first column must be the date key")
	}

	t := New(header[1:]...)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.SchemaMismatch(fmt.Sprintf("row %d has %d fields, want %d", i+2, len(rec), len(header)))
		}
		date, err := parseDate(rec[0])
		if err != nil {
			return nil, errors.Wrap(errors.CodeSchemaMismatch, fmt.Sprintf("row %d has invalid date %q", i+2, rec[0]), err)
		}
		cells := make([]Cell, 0, len(rec)-1)
		for j, field := range rec[1:] {
			field = strings.TrimSpace(field)
			if field == "" {
				cells = append(cells, Empty)
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrap(errors.CodeSchemaMismatch,
					fmt.Sprintf("row %d column %q has non-numeric value %q", i+2, header[j+1], field), err)
			}
			cells = append(cells, Float(v))
		}
		if err := t.Upsert(date, cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseDate accepts the ISO date key, tolerating a timestamp suffix as
// written by some spreadsheet exports.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
