// Package normalize turns raw spreadsheet cells into typed patient fields.
// Every cleaner returns nil for a missing, blank or placeholder value and
// never fails.
package normalize

import (
	"math"
	"strconv"
	"strings"
)

// nullMarkers are the placeholder spellings spreadsheet exports use for an
// empty cell. They are matched after trimming.
var nullMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsAbsent reports whether v carries no value.
func IsAbsent(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := nullMarkers[v]
	return ok
}

// CleanString trims v, returning nil when nothing meaningful is left.
func CleanString(v string) *string {
	if IsAbsent(v) {
		return nil
	}
	s := strings.TrimSpace(v)
	return &s
}

// CleanFloat parses v as a decimal number. Anything that is not a finite
// number yields nil.
func CleanFloat(v string) *float64 {
	if IsAbsent(v) {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
