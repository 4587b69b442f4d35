// Package aaii cleans the AAII Investor Sentiment Survey into a
// standardized weekly table of bullish/neutral/bearish percentages.
//
// The survey's historical export requires membership, so the raw file is
// supplied manually under data/raw as either the member spreadsheet
// (aaii_sentiment.xlsx) or a CSV export (aaii_sentiment.csv). The weekly
// table is aggregated to monthly frequency later, at merge time.
package aaii

import (
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
)

// ManualDownloadInstructions is printed when no raw survey file exists.
const ManualDownloadInstructions = `AAII sentiment data requires membership access and must be supplied manually:
  1. Visit https://www.aaii.com/sentimentsurvey and log in
  2. Download the historical weekly sentiment data
  3. Save the file as data/raw/aaii_sentiment.xlsx (or .csv)
  4. Re-run the fetch step`

// preambleRows is the number of title/notes rows before the data header in
// the member spreadsheet export.
const preambleRows = 6

// workbookColumns is the fixed column order of the member spreadsheet:
// only the first four are used, the rest are moving averages and S&P data.
const (
	colReportedDate = 0
	colBullish      = 1
	colNeutral      = 2
	colBearish      = 3
)

// Columns returns the standardized weekly column set.
func Columns() []string {
	return []string{
		config.ColBullishPct,
		config.ColNeutralPct,
		config.ColBearishPct,
		config.ColBullBearSpread,
	}
}

// Load reads the raw survey file from the raw data directory, preferring
// the spreadsheet over a CSV export.
func Load(rawDir string, startYear, endYear int, logger *slog.Logger) (*dataset.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	xlsxPath := filepath.Join(rawDir, config.RawAAIIXLSX)
	csvPath := filepath.Join(rawDir, config.RawAAIICSV)

	switch {
	case fileExists(xlsxPath):
		logger.Info("Found raw AAII data", slog.String("path", xlsxPath))
		return ParseWorkbook(xlsxPath, startYear, endYear)
	case fileExists(csvPath):
		logger.Info("Found raw AAII data", slog.String("path", csvPath))
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, errors.Wrap(errors.CodeMissingFile, "failed to open raw file", err)
		}
		defer f.Close()
		return ParseCSV(f, startYear, endYear)
	default:
		return nil, errors.MissingFile(xlsxPath)
	}
}

// ParseWorkbook reads the member spreadsheet export: six preamble rows,
// then weekly rows in a fixed column order. Summary rows (the trailing
// "Count"/average block) and rows with unparsable dates are dropped.
func ParseWorkbook(path string, startYear, endYear int) (*dataset.Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to open aaii workbook", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.SchemaMismatch("aaii workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to read aaii workbook rows", err)
	}
	if len(rows) <= preambleRows {
		return nil, errors.EmptyDataset("aaii workbook")
	}

	table := dataset.New(Columns()...)
	for _, row := range rows[preambleRows:] {
		if len(row) <= colBearish {
			continue
		}
		dateStr := strings.TrimSpace(row[colReportedDate])
		if dateStr == "" || strings.Contains(dateStr, "Count") {
			continue
		}
		date, err := parseSurveyDate(dateStr)
		if err != nil {
			// Trailing summary block; stop treating rows as data.
			continue
		}

		bullish, ok1 := parseSurveyValue(row[colBullish])
		neutral, ok2 := parseSurveyValue(row[colNeutral])
		bearish, ok3 := parseSurveyValue(row[colBearish])
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		bullish, neutral, bearish = scaleToPercent(bullish, neutral, bearish)
		if err := upsertWeek(table, date, bullish, neutral, bearish); err != nil {
			return nil, err
		}
	}

	if table.NumRows() == 0 {
		return nil, errors.EmptyDataset("aaii workbook")
	}
	return table.FilterYears(startYear, endYear), nil
}

// ParseCSV reads a CSV export, detecting columns from the header because
// export layouts vary.
func ParseCSV(r io.Reader, startYear, endYear int) (*dataset.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.CodeSchemaMismatch, "failed to read aaii csv", err)
	}
	if len(records) < 2 {
		return nil, errors.EmptyDataset("aaii csv")
	}

	header := records[0]
	dateIdx := findHeader(header, func(name string) bool {
		return containsAny(name, "date", "week", "time", "period")
	})
	bullIdx := findHeader(header, func(name string) bool {
		return strings.Contains(name, "bull") && !strings.Contains(name, "bear") && !strings.Contains(name, "spread")
	})
	neutralIdx := findHeader(header, func(name string) bool {
		return strings.Contains(name, "neutral")
	})
	bearIdx := findHeader(header, func(name string) bool {
		return strings.Contains(name, "bear") && !strings.Contains(name, "bull") && !strings.Contains(name, "spread")
	})

	if dateIdx < 0 {
		return nil, errors.SchemaMismatch("could not identify date column in aaii csv")
	}
	if bullIdx < 0 || neutralIdx < 0 || bearIdx < 0 {
		return nil, errors.SchemaMismatch("could not identify bullish/neutral/bearish columns in aaii csv")
	}

	table := dataset.New(Columns()...)
	for _, rec := range records[1:] {
		if len(rec) <= dateIdx || strings.TrimSpace(rec[dateIdx]) == "" {
			continue
		}
		date, err := parseSurveyDate(rec[dateIdx])
		if err != nil {
			continue
		}

		bullish, ok1 := parseSurveyValue(field(rec, bullIdx))
		neutral, ok2 := parseSurveyValue(field(rec, neutralIdx))
		bearish, ok3 := parseSurveyValue(field(rec, bearIdx))
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		bullish, neutral, bearish = scaleToPercent(bullish, neutral, bearish)
		if err := upsertWeek(table, date, bullish, neutral, bearish); err != nil {
			return nil, err
		}
	}

	if table.NumRows() == 0 {
		return nil, errors.EmptyDataset("aaii csv")
	}
	return table.FilterYears(startYear, endYear), nil
}

func upsertWeek(table *dataset.Table, date time.Time, bullish, neutral, bearish float64) error {
	return table.Upsert(date,
		dataset.Float(bullish),
		dataset.Float(neutral),
		dataset.Float(bearish),
		dataset.Float(bullish-bearish),
	)
}

// scaleToPercent converts fractional survey shares (the spreadsheet stores
// 0.38 for 38%) to percentage points. CSV exports already in percent pass
// through unchanged.
func scaleToPercent(bullish, neutral, bearish float64) (float64, float64, float64) {
	sum := bullish + neutral + bearish
	if sum > 0.5 && sum < 1.5 {
		return bullish * 100, neutral * 100, bearish * 100
	}
	return bullish, neutral, bearish
}

// parseSurveyValue reads a share that may carry a percent sign.
func parseSurveyValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseSurveyDate accepts the date forms seen in survey exports.
func parseSurveyDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layouts := []string{
		"2006-01-02",
		"1/2/2006",
		"01/02/2006",
		"1/2/06",
		"1-2-06",
		"Jan 2, 2006",
		"January 2, 2006",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized survey date %q", s)
}

func findHeader(header []string, match func(string) bool) int {
	for i, h := range header {
		if match(strings.ToLower(strings.TrimSpace(h))) {
			return i
		}
	}
	return -1
}

func containsAny(name string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(name, term) {
			return true
		}
	}
	return false
}

func field(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
