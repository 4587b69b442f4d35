package dataset

import (
	"fmt"

	"panelcli/internal/errors"
)

// LeftJoin joins t with right on the date key. The result carries t's
// columns followed by right's columns, and exactly t's rows: dates missing
// from right become empty cells, dates present only in right are dropped.
// Column name collisions are a schema error because every source table in
// the pipeline owns a distinct variable set.
func (t *Table) LeftJoin(right *Table) (*Table, error) {
	for _, c := range right.cols {
		if _, dup := t.ColumnIndex(c); dup {
			return nil, errors.SchemaMismatch(fmt.Sprintf("duplicate column %q in join", c))
		}
	}

	out := New(append(t.Columns(), right.cols...)...)
	t.sortRows()
	for _, r := range t.rows {
		cells := append([]Cell(nil), r.Cells...)
		if rr, ok := right.Get(r.Date); ok {
			cells = append(cells, rr.Cells...)
		} else {
			for range right.cols {
				cells = append(cells, Empty)
			}
		}
		if err := out.Upsert(r.Date, cells...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
