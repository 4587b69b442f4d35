package dataset

import (
	"panelcli/internal/timeutil"
)

// AggregateMonthly collapses a table of weekly (or otherwise intra-month)
// observations to monthly frequency. Each month is represented by the row
// with the latest date inside that month, not an average, and the result is
// re-keyed to end-of-month dates. Months with no source rows are simply
// absent from the output; nothing is forward-filled.
//
// The operation is deterministic and idempotent: aggregating an already
// monthly table returns an identical table.
func (t *Table) AggregateMonthly() *Table {
	out := New(t.cols...)
	t.sortRows()

	// Rows are in ascending date order, so a later row in the same month
	// always replaces an earlier one.
	for _, r := range t.rows {
		out.Upsert(timeutil.EndOfMonth(r.Date), r.Cells...)
	}
	return out
}
