package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"mid month", date(2024, time.January, 15), date(2024, time.January, 31)},
		{"already last day", date(2024, time.April, 30), date(2024, time.April, 30)},
		{"first day", date(2024, time.June, 1), date(2024, time.June, 30)},
		{"february leap year", date(2024, time.February, 10), date(2024, time.February, 29)},
		{"february non leap", date(2023, time.February, 10), date(2023, time.February, 28)},
		{"december year boundary", date(2024, time.December, 31), date(2024, time.December, 31)},
		{"non utc input normalized", time.Date(2024, time.March, 5, 14, 30, 0, 0, time.FixedZone("X", 3600)), date(2024, time.March, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(EndOfMonth(tt.input)),
				"got %v", EndOfMonth(tt.input))
		})
	}
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-01", MonthKey(date(2024, time.January, 31)))
	assert.Equal(t, "2004-12", MonthKey(date(2004, time.December, 2)))
}

func TestParseYearMonth(t *testing.T) {
	got, err := ParseYearMonth("200401")
	require.NoError(t, err)
	assert.True(t, date(2004, time.January, 31).Equal(got))

	got, err = ParseYearMonth("202402")
	require.NoError(t, err)
	assert.True(t, date(2024, time.February, 29).Equal(got))

	_, err = ParseYearMonth("2004")
	assert.Error(t, err)
	_, err = ParseYearMonth("20041x")
	assert.Error(t, err)
}

func TestMonthEnds(t *testing.T) {
	months := MonthEnds(2004, 2024)
	require.Len(t, months, 21*12)

	assert.True(t, date(2004, time.January, 31).Equal(months[0]))
	assert.True(t, date(2024, time.December, 31).Equal(months[len(months)-1]))

	// Every entry is its own month's last day, strictly increasing.
	for i := 1; i < len(months); i++ {
		assert.True(t, months[i-1].Before(months[i]))
		assert.True(t, months[i].Equal(EndOfMonth(months[i])))
	}
}

func TestMonthEnds_SingleYearAndEmpty(t *testing.T) {
	assert.Len(t, MonthEnds(2020, 2020), 12)
	assert.Empty(t, MonthEnds(2021, 2020))
}

func TestInYearRange(t *testing.T) {
	assert.True(t, InYearRange(date(2004, time.January, 31), 2004, 2024))
	assert.True(t, InYearRange(date(2024, time.December, 31), 2004, 2024))
	assert.False(t, InYearRange(date(2003, time.December, 31), 2004, 2024))
	assert.False(t, InYearRange(date(2025, time.January, 31), 2004, 2024))
}
