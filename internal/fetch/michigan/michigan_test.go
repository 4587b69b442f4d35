package michigan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"panelcli/internal/config"
	apperrors "panelcli/internal/errors"
	"panelcli/internal/fetch/fred"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newFredServer serves canned observation payloads per series ID. Series
// absent from the map return 400 like FRED does for unknown IDs.
func newFredServer(t *testing.T, payloads map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		series := r.URL.Query().Get("series_id")
		payload, ok := payloads[series]
		if !ok {
			http.Error(w, fmt.Sprintf("series %s does not exist", series), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
}

func TestFetch_HeadlineOnly(t *testing.T) {
	server := newFredServer(t, map[string]string{
		config.SeriesConsumerSentiment: `{"observations":[
			{"date":"2004-01-01","value":"103.8"},
			{"date":"2004-02-01","value":"94.4"}
		]}`,
	})
	defer server.Close()

	fetcher := NewFetcher(fred.New(server.URL, "key", 100, nil), nil)
	table, err := fetcher.Fetch(context.Background(), 2004, 2024)
	require.NoError(t, err)

	// Subindices are unavailable; only the headline column exists.
	assert.Equal(t, []string{config.ColMichiganICS}, table.Columns())
	assert.Equal(t, 2, table.NumRows())

	// Observation dates are re-keyed to end of month.
	cell, ok := table.Cell(date(2004, time.January, 31), config.ColMichiganICS)
	require.True(t, ok)
	assert.Equal(t, 103.8, cell.Value)
}

func TestFetch_WithSubindices(t *testing.T) {
	server := newFredServer(t, map[string]string{
		config.SeriesConsumerSentiment:    `{"observations":[{"date":"2004-01-01","value":"103.8"}]}`,
		config.SeriesConsumerExpectations: `{"observations":[{"date":"2004-01-01","value":"96.0"}]}`,
		config.SeriesCurrentConditions:    `{"observations":[{"date":"2004-01-01","value":"109.5"}]}`,
	})
	defer server.Close()

	fetcher := NewFetcher(fred.New(server.URL, "key", 100, nil), nil)
	table, err := fetcher.Fetch(context.Background(), 2004, 2024)
	require.NoError(t, err)

	assert.Equal(t, []string{
		config.ColMichiganICS,
		config.ColMichiganICE,
		config.ColMichiganICC,
	}, table.Columns())

	row, ok := table.Get(date(2004, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, 103.8, row.Cells[0].Value)
	assert.Equal(t, 96.0, row.Cells[1].Value)
	assert.Equal(t, 109.5, row.Cells[2].Value)
}

func TestFetch_HeadlineFailureIsFatal(t *testing.T) {
	server := newFredServer(t, map[string]string{})
	defer server.Close()

	fetcher := NewFetcher(fred.New(server.URL, "key", 100, nil), nil)
	_, err := fetcher.Fetch(context.Background(), 2004, 2024)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDownloadFailed))
}

func TestLoadManual_CSV(t *testing.T) {
	rawDir := t.TempDir()
	content := "DATE,UMCSENT\n2004-01-01,103.8\n2004-02-01,.\n2004-03-01,95.8\n2003-06-01,89.6\n"
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, config.RawMichiganCSV), []byte(content), 0644))

	table, err := LoadManual(rawDir, 2004, 2024, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{config.ColMichiganICS}, table.Columns())
	// 2003 filtered out; "." stays as an empty cell on its month.
	assert.Equal(t, 3, table.NumRows())

	cell, ok := table.Cell(date(2004, time.February, 29), config.ColMichiganICS)
	require.True(t, ok)
	assert.False(t, cell.Valid)

	cell, ok = table.Cell(date(2004, time.March, 31), config.ColMichiganICS)
	require.True(t, ok)
	assert.Equal(t, 95.8, cell.Value)
}

func TestLoadManual_CSVFuzzyColumns(t *testing.T) {
	rawDir := t.TempDir()
	content := "Month,Index of Consumer Sentiment,Index of Consumer Expectations\n2004-01,103.8,96.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, config.RawMichiganCSV), []byte(content), 0644))

	table, err := LoadManual(rawDir, 2004, 2024, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{config.ColMichiganICS, config.ColMichiganICE}, table.Columns())
	row, ok := table.Get(date(2004, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, 103.8, row.Cells[0].Value)
	assert.Equal(t, 96.0, row.Cells[1].Value)
}

func TestLoadManual_Workbook(t *testing.T) {
	rawDir := t.TempDir()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"date", "UMCSENT"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"2004-01-01", 103.8}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"2004-02-01", 94.4}))
	require.NoError(t, wb.SaveAs(filepath.Join(rawDir, config.RawMichiganXLSX)))

	table, err := LoadManual(rawDir, 2004, 2024, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())
}

func TestLoadManual_MissingFile(t *testing.T) {
	_, err := LoadManual(t.TempDir(), 2004, 2024, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingFile))
}

func TestLoadManual_NoSentimentColumn(t *testing.T) {
	rawDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, config.RawMichiganCSV),
		[]byte("date,unrelated\n2004-01-01,1\n"), 0644))

	_, err := LoadManual(rawDir, 2004, 2024, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSchemaMismatch))
}

func TestLoadManual_DuplicateMonthsKeepLast(t *testing.T) {
	rawDir := t.TempDir()
	content := "date,UMCSENT\n2004-01-01,100\n2004-01-15,101\n"
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, config.RawMichiganCSV), []byte(content), 0644))

	table, err := LoadManual(rawDir, 2004, 2024, nil)
	require.NoError(t, err)

	require.Equal(t, 1, table.NumRows())
	cell, _ := table.Cell(date(2004, time.January, 31), config.ColMichiganICS)
	assert.Equal(t, 101.0, cell.Value)
}
