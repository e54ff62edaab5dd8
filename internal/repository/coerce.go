package repository

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

var dateLayouts = []string{
	dateLayout,
	dateTimeLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02-Jan-2006",
	"Jan 2, 2006",
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", "none", "n/a", "na", "-":
		return true
	}
	return false
}

// parseDate returns the zero time for missing values; coerced is true when a
// non-empty value could not be parsed.
func parseDate(s string) (t time.Time, coerced bool) {
	s = strings.TrimSpace(s)
	if isNullToken(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), false
		}
	}
	return time.Time{}, true
}

// parseDuration coerces malformed or negative values to null.
func parseDuration(s string) (v sql.NullFloat64, coerced bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if isNullToken(s) {
		return sql.NullFloat64{}, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}, true
	}
	return sql.NullFloat64{Float64: f, Valid: true}, false
}

// parseCount coerces malformed or negative values to zero. Fractional counts
// are truncated and reported as coerced; "3.0" is a whole count.
func parseCount(s string) (n int64, coerced bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if isNullToken(s) {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if i < 0 {
			return 0, true
		}
		return i, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true
	}
	whole := math.Trunc(f)
	return int64(whole), whole != f
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

func formatDuration(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
