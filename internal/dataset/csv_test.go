package dataset

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "panelcli/internal/errors"
)

func TestWriteCSVAndFromCSV_RoundTrip(t *testing.T) {
	tbl := New("ics", "mkt_rf")
	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(79.0), Float(1.25)))
	require.NoError(t, tbl.Upsert(date(2024, time.February, 29), Float(76.9), Empty))

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,ics,mkt_rf", lines[0])
	assert.Equal(t, "2024-01-31,79,1.25", lines[1])
	assert.Equal(t, "2024-02-29,76.9,", lines[2])

	back, err := FromCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, tbl.Columns(), back.Columns())
	assert.Equal(t, tbl.Records(), back.Records())
}

func TestFromCSV_DateWithTimestampSuffix(t *testing.T) {
	in := "date,v\n2024-01-31 00:00:00,5\n"
	tbl, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)

	cell, ok := tbl.Cell(date(2024, time.January, 31), "v")
	require.True(t, ok)
	assert.Equal(t, 5.0, cell.Value)
}

func TestFromCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"wrong key column", "month,v\n2024-01-31,5\n"},
		{"bad date", "date,v\nnot-a-date,5\n"},
		{"non numeric cell", "date,v\n2024-01-31,abc\n"},
		{"ragged row", "date,v\n2024-01-31\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeSchemaMismatch))
		})
	}
}

func TestFromCSV_DuplicateDatesKeepLast(t *testing.T) {
	in := "date,v\n2024-01-31,1\n2024-01-31,2\n"
	tbl, err := FromCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.NumRows())
	cell, _ := tbl.Cell(date(2024, time.January, 31), "v")
	assert.Equal(t, 2.0, cell.Value)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(Empty))
	assert.Equal(t, "100", FormatCell(Float(100)))
	assert.Equal(t, "-0.35", FormatCell(Float(-0.35)))
}
