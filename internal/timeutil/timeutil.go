// Package timeutil provides the calendar arithmetic behind the panel's
// end-of-month join key.
package timeutil

import (
	"fmt"
	"time"
)

// EndOfMonth returns the last calendar day of t's month at midnight UTC.
// Every table in the pipeline is keyed on this normalized form so that
// joins compare equal regardless of the source's original day component.
func EndOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// MonthKey returns the YYYY-MM grouping key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseYearMonth parses a compact YYYYMM value such as "200401" into the
// end-of-month date of that month.
func ParseYearMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("200601", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return EndOfMonth(t), nil
}

// MonthEnds returns the complete monthly date index from January of
// startYear through December of endYear, one end-of-month date per month.
func MonthEnds(startYear, endYear int) []time.Time {
	if endYear < startYear {
		return nil
	}
	months := make([]time.Time, 0, (endYear-startYear+1)*12)
	cursor := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	stop := time.Date(endYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	for cursor.Before(stop) {
		months = append(months, EndOfMonth(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

// InYearRange reports whether t falls within [startYear, endYear].
func InYearRange(t time.Time, startYear, endYear int) bool {
	return t.Year() >= startYear && t.Year() <= endYear
}
