package domain

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// UnknownState is the canonical sentinel for empty or unparsable state input.
const UnknownState = "Unknown"

// stateByCode maps USPS two-letter codes to canonical state names,
// covering the 50 states plus the District of Columbia.
var stateByCode = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana",
	"IA": "Iowa", "KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana",
	"ME": "Maine", "MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
	"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri", "MT": "Montana",
	"NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey",
	"NM": "New Mexico", "NY": "New York", "NC": "North Carolina",
	"ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
	"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// stateByFIPS maps two-digit FIPS codes to canonical state names. TopoJSON
// features from the census cartographic files identify states by FIPS only.
var stateByFIPS = map[string]string{
	"01": "Alabama", "02": "Alaska", "04": "Arizona", "05": "Arkansas",
	"06": "California", "08": "Colorado", "09": "Connecticut", "10": "Delaware",
	"11": "District of Columbia", "12": "Florida", "13": "Georgia",
	"15": "Hawaii", "16": "Idaho", "17": "Illinois", "18": "Indiana",
	"19": "Iowa", "20": "Kansas", "21": "Kentucky", "22": "Louisiana",
	"23": "Maine", "24": "Maryland", "25": "Massachusetts", "26": "Michigan",
	"27": "Minnesota", "28": "Mississippi", "29": "Missouri", "30": "Montana",
	"31": "Nebraska", "32": "Nevada", "33": "New Hampshire", "34": "New Jersey",
	"35": "New Mexico", "36": "New York", "37": "North Carolina",
	"38": "North Dakota", "39": "Ohio", "40": "Oklahoma", "41": "Oregon",
	"42": "Pennsylvania", "44": "Rhode Island", "45": "South Carolina",
	"46": "South Dakota", "47": "Tennessee", "48": "Texas", "49": "Utah",
	"50": "Vermont", "51": "Virginia", "53": "Washington",
	"54": "West Virginia", "55": "Wisconsin", "56": "Wyoming",
}

// stateByLowerName indexes canonical names by their lowercased form for
// case-insensitive exact matching.
var stateByLowerName = func() map[string]string {
	m := make(map[string]string, len(stateByCode))
	for _, name := range stateByCode {
		m[strings.ToLower(name)] = name
	}
	return m
}()

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
)

// Canonicalize maps any textual state reference to a canonical state name.
// It is pure, never fails, and always returns a non-empty string. Matching
// rules, first hit wins:
//
//  1. Empty or whitespace-only input returns [UnknownState].
//  2. Periods are stripped and whitespace runs collapsed.
//  3. Exactly two characters are treated as a USPS code.
//  4. Parenthetical substrings and the standalone word "state" are dropped.
//  5. Case-insensitive exact match against the 51 known full names.
//  6. Fallback: each token is title-cased and the guess returned verbatim.
//
// Fallback output may lie outside the known set; callers must gate population
// and geometry joins on [IsKnownState]. Such names still participate in
// language aggregation under their own key.
func Canonicalize(raw string) string {
	cleaned := collapseWhitespace(strings.ReplaceAll(raw, ".", ""))
	if cleaned == "" {
		return UnknownState
	}

	if len(cleaned) == 2 {
		if name, ok := stateByCode[strings.ToUpper(cleaned)]; ok {
			return name
		}
	}

	cleaned = parentheticalRe.ReplaceAllString(cleaned, "")
	cleaned = dropToken(cleaned, "state")
	cleaned = collapseWhitespace(cleaned)
	if cleaned == "" {
		return UnknownState
	}

	if name, ok := stateByLowerName[strings.ToLower(cleaned)]; ok {
		return name
	}

	return titleCase(cleaned)
}

// IsKnownState reports whether name is one of the 50 states or the District
// of Columbia under its canonical casing.
func IsKnownState(name string) bool {
	_, ok := stateByLowerName[strings.ToLower(name)]
	return ok && stateByLowerName[strings.ToLower(name)] == name
}

// StateByFIPS resolves a two-digit FIPS code (leading zero optional) to a
// canonical state name. Returns ("", false) for territories and junk.
func StateByFIPS(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if len(code) == 1 {
		code = "0" + code
	}
	name, ok := stateByFIPS[code]
	return name, ok
}

// KnownStates returns the 51 canonical state names in sorted order.
func KnownStates() []string {
	names := make([]string, 0, len(stateByCode))
	for _, name := range stateByCode {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchStates returns the known state names containing q, case-insensitively,
// in sorted order. An empty query matches every state.
func SearchStates(q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []string
	for _, name := range KnownStates() {
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, name)
		}
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// dropToken removes whole-word, case-insensitive occurrences of token.
func dropToken(s, token string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f, token) {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// titleCase uppercases the first rune of each whitespace-separated token
// and lowercases the remainder.
func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		_, size := utf8.DecodeRuneInString(f)
		fields[i] = strings.ToUpper(f[:size]) + strings.ToLower(f[size:])
	}
	return strings.Join(fields, " ")
}
