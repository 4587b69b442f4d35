package panel

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
)

// QualityReport logs the panel's time coverage and per-column missing
// counts.
func QualityReport(panel *dataset.Table, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	min, max, ok := panel.DateRange()
	if !ok {
		logger.Warn("Panel is empty, nothing to report")
		return
	}
	logger.Info("Panel time coverage",
		slog.String("start", min.Format(config.DateLayout)),
		slog.String("end", max.Format(config.DateLayout)),
		slog.Int("months", panel.NumRows()))

	cols := panel.Columns()
	missing := make([]int, len(cols))
	for _, row := range panel.Rows() {
		for i, cell := range row.Cells {
			if !cell.Valid {
				missing[i]++
			}
		}
	}

	clean := true
	for i, col := range cols {
		if missing[i] == 0 {
			continue
		}
		clean = false
		pct := float64(missing[i]) / float64(panel.NumRows()) * 100
		logger.Warn("Column has missing values",
			slog.String("column", col),
			slog.Int("missing", missing[i]),
			slog.String("percent", fmt.Sprintf("%.2f", pct)))
	}
	if clean {
		logger.Info("No missing values in panel")
	}
}

// summaryStats is the row order of the summary statistics file.
var summaryStats = []string{"count", "mean", "median", "stddev", "min", "25%", "50%", "75%", "max"}

// SummaryStatistics computes descriptive statistics per panel column and
// returns them as CSV records, one row per statistic. Missing cells are
// excluded column by column, so columns with different coverage are each
// summarized over their own observations.
func SummaryStatistics(panel *dataset.Table) [][]string {
	cols := panel.Columns()
	perColumn := make(map[string]map[string]string, len(cols))

	for i, col := range cols {
		values := columnValues(panel, i)
		perColumn[col] = describeColumn(col, values)
	}

	records := make([][]string, 0, len(summaryStats)+1)
	records = append(records, append([]string{"statistic"}, cols...))
	for _, stat := range summaryStats {
		row := make([]string, 0, len(cols)+1)
		row = append(row, stat)
		for _, col := range cols {
			row = append(row, perColumn[col][stat])
		}
		records = append(records, row)
	}
	return records
}

func columnValues(panel *dataset.Table, idx int) []float64 {
	var values []float64
	for _, row := range panel.Rows() {
		if row.Cells[idx].Valid {
			values = append(values, row.Cells[idx].Value)
		}
	}
	return values
}

// describeColumn runs gota's Describe over one column's observations and
// flattens the result into stat-name -> formatted value.
func describeColumn(col string, values []float64) map[string]string {
	stats := map[string]string{"count": strconv.Itoa(len(values))}
	if len(values) == 0 {
		for _, stat := range summaryStats[1:] {
			stats[stat] = ""
		}
		return stats
	}

	df := dataframe.New(series.New(values, series.Float, col))
	for _, rec := range df.Describe().Records()[1:] {
		if len(rec) != 2 {
			continue
		}
		stats[rec[0]] = rec[1]
	}
	return stats
}
