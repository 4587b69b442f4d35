// Package panel merges the three processed source tables into the final
// monthly analysis panel and enforces its quality rules.
package panel

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
	"panelcli/internal/timeutil"
)

// percentSumTolerance bounds how far the three survey shares may drift
// from 100 before the row is considered corrupt.
const percentSumTolerance = 0.5

// Inputs holds the processed source tables. Michigan and French are
// monthly; AAII is weekly and aggregated during the build.
type Inputs struct {
	Michigan *dataset.Table
	AAII     *dataset.Table
	French   *dataset.Table
}

// Build assembles the panel: a complete monthly date index for the
// configured range, left-joined with Michigan sentiment, monthly-aggregated
// AAII sentiment, and French factors, in that fixed order. Sources with no
// rows are skipped with a warning, matching a partial pipeline run.
func Build(in Inputs, startYear, endYear int, logger *slog.Logger) (*dataset.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	panel := dateIndex(startYear, endYear)
	logger.Info("Created monthly date index", slog.Int("months", panel.NumRows()))

	var err error
	if hasRows(in.Michigan) {
		if panel, err = panel.LeftJoin(in.Michigan); err != nil {
			return nil, err
		}
		logger.Info("Merged Michigan sentiment", slog.Int("columns", len(in.Michigan.Columns())))
	} else {
		logger.Warn("Michigan sentiment missing, panel will have no consumer sentiment columns")
	}

	if hasRows(in.AAII) {
		monthly := in.AAII.AggregateMonthly()
		if panel, err = panel.LeftJoin(monthly); err != nil {
			return nil, err
		}
		logger.Info("Merged AAII sentiment",
			slog.Int("weekly_rows", in.AAII.NumRows()),
			slog.Int("monthly_rows", monthly.NumRows()))
	} else {
		logger.Warn("AAII sentiment missing, panel will have no survey columns")
	}

	if hasRows(in.French) {
		if panel, err = panel.LeftJoin(in.French); err != nil {
			return nil, err
		}
		logger.Info("Merged French factors", slog.Int("columns", len(in.French.Columns())))
	} else {
		logger.Warn("French factors missing, panel will have no return columns")
	}

	return panel, nil
}

// Validate enforces the panel's postconditions:
//
//   - the join preserved the date index: one row per month in the range;
//   - every cell inside the common date range is populated, where the
//     common range is the overlap of the sources' own spans clipped to the
//     configured range;
//   - survey percentages, where present, sum to 100 within tolerance.
//
// Any violation aborts the run.
func Validate(panel *dataset.Table, in Inputs, startYear, endYear int) error {
	expected := len(timeutil.MonthEnds(startYear, endYear))
	if panel.NumRows() != expected {
		return errors.ValidationFailed(fmt.Sprintf(
			"panel has %d rows, expected %d (one per month %d-%d)",
			panel.NumRows(), expected, startYear, endYear))
	}

	if start, end, ok := commonRange(in, startYear, endYear); ok {
		if err := checkNoGaps(panel, start, end); err != nil {
			return err
		}
	}

	return checkPercentSums(panel)
}

// commonRange returns the months where every available source has data,
// clipped to the configured range. ok is false when no source overlaps.
func commonRange(in Inputs, startYear, endYear int) (time.Time, time.Time, bool) {
	start := timeutil.EndOfMonth(time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC))
	end := timeutil.EndOfMonth(time.Date(endYear, time.December, 1, 0, 0, 0, 0, time.UTC))

	found := false
	for _, t := range []*dataset.Table{in.Michigan, monthlyAAII(in.AAII), in.French} {
		if !hasRows(t) {
			continue
		}
		found = true
		min, max, _ := t.DateRange()
		min, max = timeutil.EndOfMonth(min), timeutil.EndOfMonth(max)
		if min.After(start) {
			start = min
		}
		if max.Before(end) {
			end = max
		}
	}
	if !found || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func monthlyAAII(weekly *dataset.Table) *dataset.Table {
	if !hasRows(weekly) {
		return weekly
	}
	return weekly.AggregateMonthly()
}

// checkNoGaps rejects the panel if any cell inside the common range is
// empty: within the overlap every source is supposed to have published.
func checkNoGaps(panel *dataset.Table, start, end time.Time) error {
	cols := panel.Columns()
	for _, row := range panel.Rows() {
		if row.Date.Before(start) || row.Date.After(end) {
			continue
		}
		for i, cell := range row.Cells {
			if !cell.Valid {
				return errors.ValidationFailed(fmt.Sprintf(
					"empty cell for %s on %s inside common range %s..%s",
					cols[i],
					row.Date.Format(config.DateLayout),
					start.Format(config.DateLayout),
					end.Format(config.DateLayout)))
			}
		}
	}
	return nil
}

// checkPercentSums verifies that bullish+neutral+bearish is 100 within
// tolerance on every row where all three shares are present.
func checkPercentSums(panel *dataset.Table) error {
	bullIdx, okBull := panel.ColumnIndex(config.ColBullishPct)
	neutralIdx, okNeutral := panel.ColumnIndex(config.ColNeutralPct)
	bearIdx, okBear := panel.ColumnIndex(config.ColBearishPct)
	if !okBull || !okNeutral || !okBear {
		return nil
	}

	for _, row := range panel.Rows() {
		bull, neutral, bear := row.Cells[bullIdx], row.Cells[neutralIdx], row.Cells[bearIdx]
		if !bull.Valid || !neutral.Valid || !bear.Valid {
			continue
		}
		sum := bull.Value + neutral.Value + bear.Value
		if math.Abs(sum-100) > percentSumTolerance {
			return errors.ValidationFailed(fmt.Sprintf(
				"survey percentages on %s sum to %.2f, expected 100±%.1f",
				row.Date.Format(config.DateLayout), sum, percentSumTolerance))
		}
	}
	return nil
}

// dateIndex builds the zero-column spine the sources join onto.
func dateIndex(startYear, endYear int) *dataset.Table {
	index := dataset.New()
	for _, monthEnd := range timeutil.MonthEnds(startYear, endYear) {
		index.Upsert(monthEnd)
	}
	return index
}

func hasRows(t *dataset.Table) bool {
	return t != nil && t.NumRows() > 0
}
