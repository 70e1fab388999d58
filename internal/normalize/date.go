package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLayouts are tried in order before the permissive fallback, so an
// ambiguous "01/02/2020" always reads month first.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
	"2006-1-2 15:04:05",
}

// shortYearLayouts cover the two-digit-year text spreadsheets export for
// their default short date ("03-14-80"). They are tried only after the exact
// layouts miss.
var shortYearLayouts = []string{
	"1-2-06",
	"1/2/06",
}

// ParseDate returns the date in raw, or nil when raw is blank or cannot be
// read as a date.
func ParseDate(raw string) *time.Time {
	t, err := TryParseDate(raw)
	if err != nil {
		return nil
	}
	return t
}

// TryParseDate is ParseDate with the reason for a failure. Blank input
// returns nil and no error.
func TryParseDate(raw string) (*time.Time, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	s := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}

	for _, layout := range shortYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}
