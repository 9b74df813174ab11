package domain

import (
	"errors"
	"strings"
)

// LanguageRecord is one ingested row of the ACS language table. Numeric
// fields are parsed once at ingestion; the raw strings are retained for
// diagnostics. Records are immutable after ingestion and duplicates are
// valid (multiple rows per state/language pair are summed by aggregation).
type LanguageRecord struct {
	State    string `json:"state"` // canonical, see Canonicalize
	Language string `json:"language"`

	Speakers            *float64 `json:"speakers"`
	EnglishLessThanWell *float64 `json:"english_less_than_very_well"`
	MarginOfError       *float64 `json:"margin_of_error"`

	RawState    string `json:"-"`
	RawSpeakers string `json:"-"`
}

// Ordered header aliases for each logical column, consulted in priority
// order. Matching is case-insensitive on trimmed headers.
var (
	stateAliases    = []string{"State", "State Name", "Geography"}
	languageAliases = []string{"Language", "Language Spoken at Home"}
	speakersAliases = []string{"Speakers", "Number of Speakers", "Estimate"}
	englishAliases  = []string{
		`Speak English less than "Very Well"`,
		"Speak English less than Very Well",
		"Speak English Less Than Very Well",
		"English less than very well",
	}
	marginAliases = []string{
		"Margin of Error (Speak English Less than Very Well)",
		"Margin of Error",
	}

	popNameAliases = []string{"State", "Name", "Geographic Area", "Area"}
	popValueAliases = []string{
		"2010",
		"Population 2010",
		"2010 Population",
		"Population",
		"Census",
	}
)

// ErrMissingColumn reports a table whose header resolves none of the
// accepted aliases for a required logical column.
var ErrMissingColumn = errors.New("required column not found under any accepted alias")

// resolveColumn finds the index of the first alias present in the header.
// Aliases are tried in priority order; the first alias that matches any
// header cell wins, not the leftmost matching cell.
func resolveColumn(header []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		for i, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), alias) {
				return i, true
			}
		}
	}
	return 0, false
}

// RecordsFromTable ingests the language table (header row plus data rows)
// into LanguageRecords, canonicalizing states and parsing numeric fields.
// State and Language columns are required; the count columns are optional
// and resolve to nil when their column is absent. Short rows are padded.
func RecordsFromTable(rows [][]string) ([]LanguageRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("language table is empty")
	}
	header := rows[0]

	stateCol, ok := resolveColumn(header, stateAliases)
	if !ok {
		return nil, errors.New("language table: state: " + ErrMissingColumn.Error())
	}
	langCol, ok := resolveColumn(header, languageAliases)
	if !ok {
		return nil, errors.New("language table: language: " + ErrMissingColumn.Error())
	}
	speakersCol, hasSpeakers := resolveColumn(header, speakersAliases)
	englishCol, hasEnglish := resolveColumn(header, englishAliases)
	marginCol, hasMargin := resolveColumn(header, marginAliases)

	records := make([]LanguageRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rawState := cell(row, stateCol)
		rec := LanguageRecord{
			State:    Canonicalize(rawState),
			Language: strings.TrimSpace(cell(row, langCol)),
			RawState: rawState,
		}
		if hasSpeakers {
			rec.RawSpeakers = cell(row, speakersCol)
			rec.Speakers = ParseNumeric(rec.RawSpeakers)
		}
		if hasEnglish {
			rec.EnglishLessThanWell = ParseNumeric(cell(row, englishCol))
		}
		if hasMargin {
			rec.MarginOfError = ParseNumeric(cell(row, marginCol))
		}
		records = append(records, rec)
	}
	return records, nil
}

// PopulationFromTable ingests the population table into a canonical-name →
// population map. Rows whose population cell is not a non-negative integer
// are dropped; later rows for the same canonical name overwrite earlier ones.
// Names canonicalizing outside the known state set are excluded, so junk
// rows never pollute population joins.
func PopulationFromTable(rows [][]string) (map[string]int64, error) {
	if len(rows) == 0 {
		return nil, errors.New("population table is empty")
	}
	header := rows[0]

	nameCol, ok := resolveColumn(header, popNameAliases)
	if !ok {
		return nil, errors.New("population table: name: " + ErrMissingColumn.Error())
	}
	valueCol, ok := resolveColumn(header, popValueAliases)
	if !ok {
		return nil, errors.New("population table: population: " + ErrMissingColumn.Error())
	}

	byState := make(map[string]int64)
	for _, row := range rows[1:] {
		name := Canonicalize(cell(row, nameCol))
		if !IsKnownState(name) {
			continue
		}
		pop, ok := ParsePopulation(cell(row, valueCol))
		if !ok {
			continue
		}
		byState[name] = pop
	}
	return byState, nil
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
