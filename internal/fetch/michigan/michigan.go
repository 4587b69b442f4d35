// Package michigan fetches and cleans the University of Michigan consumer
// sentiment series into a standardized monthly table.
//
// The primary source is the FRED statistics API. When no API key is
// configured or the fetch fails, a manually downloaded raw file
// (data/raw/michigan_consumer_sentiment.csv or .xlsx) is used instead.
package michigan

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"panelcli/internal/config"
	"panelcli/internal/dataset"
	"panelcli/internal/errors"
	"panelcli/internal/fetch/fred"
	"panelcli/internal/timeutil"
)

// ManualDownloadInstructions is printed when neither the API nor a manual
// file can supply the data. The survey archive requires subscription
// access, so the pipeline cannot fetch it on the user's behalf.
const ManualDownloadInstructions = `Michigan consumer sentiment data could not be obtained automatically.
Either configure a FRED API key (PANEL_FRED_API_KEY) or download the data manually:
  1. Visit https://data.sca.isr.umich.edu/data-archive/mine.php (subscription)
     or https://fred.stlouisfed.org/series/UMCSENT (public)
  2. Save the monthly Index of Consumer Sentiment as
     data/raw/michigan_consumer_sentiment.csv (or .xlsx)
  3. Re-run the fetch step`

// Fetcher obtains the sentiment series from FRED.
type Fetcher struct {
	client *fred.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher on top of a FRED client.
func NewFetcher(client *fred.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch downloads the headline sentiment index plus, best-effort, the
// expectations and current-conditions subindices, and returns the cleaned
// monthly table. The subindices are not always published separately on
// FRED; their absence is logged, not fatal.
func (f *Fetcher) Fetch(ctx context.Context, startYear, endYear int) (*dataset.Table, error) {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	ics, err := f.client.Observations(ctx, config.SeriesConsumerSentiment, start, end)
	if err != nil {
		return nil, err
	}

	ice := f.optionalSeries(ctx, config.SeriesConsumerExpectations, start, end)
	icc := f.optionalSeries(ctx, config.SeriesCurrentConditions, start, end)

	cols := []string{config.ColMichiganICS}
	if len(ice) > 0 {
		cols = append(cols, config.ColMichiganICE)
	}
	if len(icc) > 0 {
		cols = append(cols, config.ColMichiganICC)
	}

	iceByMonth := observationsByMonth(ice)
	iccByMonth := observationsByMonth(icc)

	table := dataset.New(cols...)
	for _, obs := range ics {
		monthEnd := timeutil.EndOfMonth(obs.Date)
		cells := []dataset.Cell{dataset.Float(obs.Value)}
		if len(ice) > 0 {
			cells = append(cells, lookupCell(iceByMonth, monthEnd))
		}
		if len(icc) > 0 {
			cells = append(cells, lookupCell(iccByMonth, monthEnd))
		}
		if err := table.Upsert(monthEnd, cells...); err != nil {
			return nil, err
		}
	}

	return table.FilterYears(startYear, endYear), nil
}

func (f *Fetcher) optionalSeries(ctx context.Context, seriesID string, start, end time.Time) []fred.Observation {
	obs, err := f.client.Observations(ctx, seriesID, start, end)
	if err != nil {
		f.logger.Info("Subindex not available separately, continuing without it",
			slog.String("series_id", seriesID),
			slog.String("reason", err.Error()))
		return nil
	}
	return obs
}

func observationsByMonth(obs []fred.Observation) map[time.Time]float64 {
	byMonth := make(map[time.Time]float64, len(obs))
	for _, o := range obs {
		byMonth[timeutil.EndOfMonth(o.Date)] = o.Value
	}
	return byMonth
}

func lookupCell(byMonth map[time.Time]float64, monthEnd time.Time) dataset.Cell {
	if v, ok := byMonth[monthEnd]; ok {
		return dataset.Float(v)
	}
	return dataset.Empty
}

// LoadManual reads a manually downloaded raw file from the raw data
// directory and cleans it into the standardized monthly table. Column
// positions are detected from the header because archive exports vary.
func LoadManual(rawDir string, startYear, endYear int, logger *slog.Logger) (*dataset.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	csvPath := filepath.Join(rawDir, config.RawMichiganCSV)
	xlsxPath := filepath.Join(rawDir, config.RawMichiganXLSX)

	var rows [][]string
	switch {
	case fileExists(csvPath):
		logger.Info("Found raw Michigan data", slog.String("path", csvPath))
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, errors.Wrap(errors.CodeMissingFile, "failed to open raw file", err)
		}
		defer f.Close()
		rows, err = readCSVRows(f)
		if err != nil {
			return nil, err
		}
	case fileExists(xlsxPath):
		logger.Info("Found raw Michigan data", slog.String("path", xlsxPath))
		var err error
		rows, err = readWorkbookRows(xlsxPath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.MissingFile(csvPath)
	}

	return processRows(rows, startYear, endYear)
}

// processRows maps loosely named source columns onto the standardized
// sentiment columns and normalizes dates to end of month.
func processRows(rows [][]string, startYear, endYear int) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, errors.EmptyDataset("michigan raw file")
	}

	header := rows[0]
	dateIdx := findColumn(header, "date", "month", "time", "period")
	if dateIdx < 0 {
		return nil, errors.SchemaMismatch("could not identify date column in michigan raw file")
	}

	// Standardized name -> candidate header fragments, in priority order.
	targets := []struct {
		name  string
		terms []string
	}{
		{config.ColMichiganICS, []string{"ics", "umcsent", "sentiment", "index"}},
		{config.ColMichiganICE, []string{"ice", "expect"}},
		{config.ColMichiganICC, []string{"icc", "current", "conditions"}},
	}

	var cols []string
	var srcIdx []int
	for _, target := range targets {
		if idx := findColumn(header, target.terms...); idx >= 0 && idx != dateIdx {
			cols = append(cols, target.name)
			srcIdx = append(srcIdx, idx)
		}
	}
	if len(cols) == 0 {
		return nil, errors.SchemaMismatch("could not identify any sentiment column in michigan raw file")
	}

	table := dataset.New(cols...)
	for i, row := range rows[1:] {
		if len(row) <= dateIdx || strings.TrimSpace(row[dateIdx]) == "" {
			continue
		}
		date, err := parseFlexibleDate(row[dateIdx])
		if err != nil {
			return nil, errors.Wrap(errors.CodeSchemaMismatch,
				fmt.Sprintf("row %d has unparsable date %q", i+2, row[dateIdx]), err)
		}
		cells := make([]dataset.Cell, len(cols))
		for j, idx := range srcIdx {
			cells[j] = parseNumericCell(row, idx)
		}
		if err := table.Upsert(timeutil.EndOfMonth(date), cells...); err != nil {
			return nil, err
		}
	}

	if table.NumRows() == 0 {
		return nil, errors.EmptyDataset("michigan raw file")
	}
	return table.FilterYears(startYear, endYear), nil
}

// findColumn returns the first header index whose lowercased name contains
// any of the terms.
func findColumn(header []string, terms ...string) int {
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, term := range terms {
			if strings.Contains(name, term) {
				return i
			}
		}
	}
	return -1
}

// parseFlexibleDate accepts the date forms seen in archive exports.
func parseFlexibleDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"2006-01-02", "2006-01", "01/02/2006", "1/2/2006", "Jan-06", "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// parseNumericCell reads a numeric field, treating blanks and the FRED "."
// marker as missing.
func parseNumericCell(row []string, idx int) dataset.Cell {
	if idx >= len(row) {
		return dataset.Empty
	}
	s := strings.TrimSpace(row[idx])
	if s == "" || s == "." {
		return dataset.Empty
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dataset.Empty
	}
	return dataset.Float(v)
}

// newLenientCSVReader tolerates the ragged rows common in archive exports.
func newLenientCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader
}

func readCSVRows(f *os.File) ([][]string, error) {
	reader := newLenientCSVReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to read michigan raw csv", err)
	}
	return rows, nil
}

func readWorkbookRows(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to open michigan workbook", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.SchemaMismatch("michigan workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to read michigan workbook rows", err)
	}
	return rows, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
