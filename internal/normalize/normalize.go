// Package normalize parses source-locale date and number formats into
// canonical types
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateTimeLayout = "02.01.2006 15:04"
	dateLayout     = "02.01.2006"
)

// ParseDate parses a "DD.MM.YYYY HH:MM" string in the given location.
// A date without a time part is accepted and defaults to 00:00.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(dateTimeLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a timestamp back into the upstream display form
func FormatDate(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// ParseDecimal parses a decimal that uses comma as the separator, e.g.
// "1.234,5" or "12,7". Thousands dots are tolerated. Callers skip the
// record on error instead of propagating it.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return 0, fmt.Errorf("empty numeric value")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
