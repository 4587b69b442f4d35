package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTable_UpsertAndGet(t *testing.T) {
	tbl := New("a", "b")

	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(1), Float(2)))
	require.NoError(t, tbl.Upsert(date(2024, time.February, 29), Float(3), Empty))

	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())

	row, ok := tbl.Get(date(2024, time.January, 31))
	require.True(t, ok)
	assert.Equal(t, []Cell{Float(1), Float(2)}, row.Cells)

	cell, ok := tbl.Cell(date(2024, time.February, 29), "b")
	require.True(t, ok)
	assert.False(t, cell.Valid)

	_, ok = tbl.Get(date(2024, time.March, 31))
	assert.False(t, ok)
}

func TestTable_UpsertKeepsLast(t *testing.T) {
	tbl := New("v")

	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(1)))
	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(42)))

	assert.Equal(t, 1, tbl.NumRows())
	cell, ok := tbl.Cell(date(2024, time.January, 31), "v")
	require.True(t, ok)
	assert.Equal(t, 42.0, cell.Value)
}

func TestTable_UpsertNormalizesDates(t *testing.T) {
	tbl := New("v")

	// Same calendar day in a different zone and with a time component
	// collapses onto one key.
	loc := time.FixedZone("X", -5*3600)
	require.NoError(t, tbl.Upsert(time.Date(2024, time.January, 31, 18, 30, 0, 0, loc), Float(1)))
	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(2)))

	assert.Equal(t, 1, tbl.NumRows())
}

func TestTable_UpsertCellCountMismatch(t *testing.T) {
	tbl := New("a", "b")
	err := tbl.Upsert(date(2024, time.January, 31), Float(1))
	assert.Error(t, err)
}

func TestTable_RowsSorted(t *testing.T) {
	tbl := New("v")

	require.NoError(t, tbl.Upsert(date(2024, time.March, 31), Float(3)))
	require.NoError(t, tbl.Upsert(date(2024, time.January, 31), Float(1)))
	require.NoError(t, tbl.Upsert(date(2024, time.February, 29), Float(2)))

	dates := tbl.Dates()
	require.Len(t, dates, 3)
	assert.True(t, dates[0].Equal(date(2024, time.January, 31)))
	assert.True(t, dates[1].Equal(date(2024, time.February, 29)))
	assert.True(t, dates[2].Equal(date(2024, time.March, 31)))

	// Lookups still work after the sort reindexes rows.
	cell, ok := tbl.Cell(date(2024, time.February, 29), "v")
	require.True(t, ok)
	assert.Equal(t, 2.0, cell.Value)
}

func TestTable_DateRange(t *testing.T) {
	tbl := New("v")
	_, _, ok := tbl.DateRange()
	assert.False(t, ok)

	require.NoError(t, tbl.Upsert(date(2010, time.June, 30), Float(1)))
	require.NoError(t, tbl.Upsert(date(2005, time.January, 31), Float(2)))

	min, max, ok := tbl.DateRange()
	require.True(t, ok)
	assert.True(t, min.Equal(date(2005, time.January, 31)))
	assert.True(t, max.Equal(date(2010, time.June, 30)))
}

func TestTable_FilterYears(t *testing.T) {
	tbl := New("v")
	require.NoError(t, tbl.Upsert(date(2003, time.December, 31), Float(1)))
	require.NoError(t, tbl.Upsert(date(2004, time.January, 31), Float(2)))
	require.NoError(t, tbl.Upsert(date(2024, time.December, 31), Float(3)))
	require.NoError(t, tbl.Upsert(date(2025, time.January, 31), Float(4)))

	filtered := tbl.FilterYears(2004, 2024)
	assert.Equal(t, 2, filtered.NumRows())
	_, ok := filtered.Get(date(2003, time.December, 31))
	assert.False(t, ok)
	_, ok = filtered.Get(date(2004, time.January, 31))
	assert.True(t, ok)
}
