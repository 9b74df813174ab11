package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches a maximal run of digits with an optional single decimal
// point, e.g. "1234" or "1.5".
var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseNumeric parses a free-text count field into a number, or nil when the
// field carries no value. It never fails. Rules, in order:
//
//  1. Empty after trimming → nil.
//  2. Parenthetical substrings and commas are removed.
//  3. Every digit run (optional decimal point) becomes a candidate; none → nil.
//  4. A hyphen plus at least two candidates is a range: the mean of the first
//     and last candidate is returned ("1000-2000" → 1500).
//  5. A "<" plus at least one candidate returns the first candidate
//     ("less than 500" style qualifiers are taken at face value).
//  6. Otherwise the first candidate is returned.
func ParseNumeric(raw string) *float64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	cleaned := parentheticalRe.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	matches := numberRe.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return nil
	}

	candidates := make([]float64, len(matches))
	for i, m := range matches {
		// Cannot fail: the regexp only admits valid float syntax.
		candidates[i], _ = strconv.ParseFloat(m, 64)
	}

	if strings.Contains(cleaned, "-") && len(candidates) >= 2 {
		mean := (candidates[0] + candidates[len(candidates)-1]) / 2
		return &mean
	}
	if strings.Contains(cleaned, "<") {
		return &candidates[0]
	}
	return &candidates[0]
}

// ParsePopulation parses a population cell as a non-negative integer after
// stripping thousands separators. Returns false for anything else; callers
// drop those rows rather than propagating an error.
func ParsePopulation(raw string) (int64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
