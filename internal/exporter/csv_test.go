package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelcli/internal/config"
)

func setupWriter(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())
	return NewCSVWriter(paths), paths
}

func TestWriteSimpleCSV(t *testing.T) {
	writer, paths := setupWriter(t)

	headers := []string{"date", "v"}
	records := [][]string{
		{"2024-01-31", "1.5"},
		{"2024-02-29", ""},
	}

	require.NoError(t, writer.WriteSimpleCSV("table.csv", headers, records))

	data, err := os.ReadFile(paths.GetProcessedPath("table.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,v\n2024-01-31,1.5\n2024-02-29,\n", string(data))
}

func TestWriteCSV_BOMPrefix(t *testing.T) {
	writer, paths := setupWriter(t)

	require.NoError(t, writer.WriteCSV("bom.csv", WriteOptions{
		Headers:   []string{"a"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	}))

	data, err := os.ReadFile(paths.GetProcessedPath("bom.csv"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestAppendToCSV(t *testing.T) {
	writer, paths := setupWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("a.csv", []string{"v"}, [][]string{{"1"}}))
	require.NoError(t, writer.AppendToCSV("a.csv", [][]string{{"2"}}))

	data, err := os.ReadFile(paths.GetProcessedPath("a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "v\n1\n2\n", string(data))
}

func TestWriteCSV_TruncatesByDefault(t *testing.T) {
	writer, paths := setupWriter(t)

	require.NoError(t, writer.WriteSimpleCSV("a.csv", []string{"v"}, [][]string{{"1"}}))
	require.NoError(t, writer.WriteSimpleCSV("a.csv", []string{"v"}, [][]string{{"9"}}))

	data, err := os.ReadFile(paths.GetProcessedPath("a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "v\n9\n", string(data))
}

func TestResolvePath(t *testing.T) {
	writer, paths := setupWriter(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"default goes to processed", "x.csv", paths.GetProcessedPath("x.csv")},
		{"processed prefix", "processed/x.csv", paths.GetProcessedPath("x.csv")},
		{"raw prefix", "raw/x.csv", paths.GetRawPath("x.csv")},
		{"final prefix", "final/x.csv", paths.GetFinalPath("x.csv")},
		{"absolute passthrough", filepath.Join(paths.BaseDir, "abs.csv"), filepath.Join(paths.BaseDir, "abs.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, writer.resolvePath(tt.input))
		})
	}
}

func TestStreamWriter(t *testing.T) {
	writer, paths := setupWriter(t)

	sw, err := writer.CreateStreamWriter("final/stream.csv", []string{"date", "v"})
	require.NoError(t, err)

	require.NoError(t, sw.WriteRecord([]string{"2024-01-31", "1"}))
	require.NoError(t, sw.WriteRecord([]string{"2024-02-29", "2"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(paths.GetFinalPath("stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,v\n2024-01-31,1\n2024-02-29,2\n", string(data))
}

func TestWriteCSV_CreatesMissingDirectories(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	// No EnsureDirectories call; the writer must create what it needs.
	writer := NewCSVWriter(paths)

	require.NoError(t, writer.WriteSimpleCSV("deep.csv", []string{"v"}, nil))
	_, err := os.Stat(paths.GetProcessedPath("deep.csv"))
	assert.NoError(t, err)
}
