package domain

import (
	"math"
	"sort"
)

// OtherBucketLabel is the synthetic label collecting long-tail share entries.
const OtherBucketLabel = "Other (<1%)"

// otherBucketThreshold is the share below which an entry joins the Other bucket.
const otherBucketThreshold = 0.01

// Share is one labeled slice of a whole: an absolute value and its fraction
// of the denominator (0–1; the view layer renders it as a percentage).
type Share struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// QuartileSummary holds nearest-rank quartile statistics over a sorted sample.
type QuartileSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	IQR    float64 `json:"iqr"`
}

// LanguageCount pairs a language with its summed speaker count.
type LanguageCount struct {
	Language string  `json:"language"`
	Speakers float64 `json:"speakers"`
}

// StateAggregate is the per-state (or nationwide) rollup consumed by the
// detail views: distinct language count, languages ordered by speakers,
// English-proficiency total, combined margin of error, and population when
// the joins resolved one.
type StateAggregate struct {
	State               string          `json:"state"`
	DistinctLanguages   int             `json:"distinct_languages"`
	Languages           []LanguageCount `json:"languages"`
	EnglishLessThanWell float64         `json:"english_less_than_very_well"`
	MarginOfErrorRMS    float64         `json:"margin_of_error_rms"`
	Population          *int64          `json:"population"`
}

// LanguageTotals sums speaker counts per language across the records for one
// state, or across every record when state is nil (nationwide). Records with
// no parsed speaker count contribute 0 but still register the language key.
func LanguageTotals(s *Snapshot, state *string) map[string]float64 {
	totals := make(map[string]float64)
	for _, rec := range s.recordsFor(state) {
		totals[rec.Language] += floatOrZero(rec.Speakers)
	}
	return totals
}

// LanguageDiversityCount returns the number of distinct language names among
// a state's records, counting languages with null or zero speakers.
func LanguageDiversityCount(s *Snapshot, state string) int {
	seen := make(map[string]struct{})
	for _, rec := range s.LanguageByState[state] {
		seen[rec.Language] = struct{}{}
	}
	return len(seen)
}

// LanguageCoverage counts, per language, the distinct canonical states in
// which at least one record has more than zero speakers.
func LanguageCoverage(s *Snapshot) map[string]int {
	statesByLanguage := make(map[string]map[string]struct{})
	for _, rec := range s.Records {
		if floatOrZero(rec.Speakers) <= 0 {
			continue
		}
		states, ok := statesByLanguage[rec.Language]
		if !ok {
			states = make(map[string]struct{})
			statesByLanguage[rec.Language] = states
		}
		states[rec.State] = struct{}{}
	}

	coverage := make(map[string]int, len(statesByLanguage))
	for lang, states := range statesByLanguage {
		coverage[lang] = len(states)
	}
	return coverage
}

// SharesWithOtherBucket turns label→value totals into an ordered share list.
// Entries under 1% of the denominator merge into a single synthetic
// "Other (<1%)" entry appended last; the rest sort by share descending.
//
// When exclude is non-nil the excluded entries are removed and the
// denominator becomes the sum of the remaining values, ignoring the passed
// denominator. A denominator that works out to zero (or negative) yields
// share 0 for every entry rather than a divide-by-zero fault.
func SharesWithOtherBucket(totals map[string]float64, denominator float64, exclude map[string]bool) []Share {
	labels := make([]string, 0, len(totals))
	for label := range totals {
		if exclude != nil && exclude[label] {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)

	if exclude != nil {
		denominator = 0
		for _, label := range labels {
			denominator += totals[label]
		}
	}

	var (
		kept  []Share
		other *Share
	)
	for _, label := range labels {
		value := totals[label]
		var share float64
		if denominator > 0 {
			share = value / denominator
		}
		if share < otherBucketThreshold {
			if other == nil {
				other = &Share{Label: OtherBucketLabel}
			}
			other.Value += value
			other.Share += share
			continue
		}
		kept = append(kept, Share{Label: label, Value: value, Share: share})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Share != kept[j].Share {
			return kept[i].Share > kept[j].Share
		}
		return kept[i].Label < kept[j].Label
	})
	if other != nil {
		kept = append(kept, *other)
	}
	return kept
}

// Quartiles computes nearest-rank quartile statistics over an ascending
// sorted sample: indices floor(n×0.25), floor(n×0.5), floor(n×0.75), no
// interpolation. Returns ok=false for an empty sample; callers present the
// degenerate case themselves instead of receiving a numeric fault.
func Quartiles(sorted []float64) (QuartileSummary, bool) {
	n := len(sorted)
	if n == 0 {
		return QuartileSummary{}, false
	}
	q1 := sorted[n/4]
	median := sorted[n/2]
	q3 := sorted[(n*3)/4]
	return QuartileSummary{
		Min:    sorted[0],
		Q1:     q1,
		Median: median,
		Q3:     q3,
		Max:    sorted[n-1],
		IQR:    q3 - q1,
	}, true
}

// RMSError combines independent error magnitudes as the square root of the
// sum of squares. Empty input yields 0.
func RMSError(errors []float64) float64 {
	var sumSquares float64
	for _, e := range errors {
		sumSquares += e * e
	}
	return math.Sqrt(sumSquares)
}

// EnglishProficiencyProportion returns 100 × (summed "speaks English less
// than very well" count) / population for a state, or nationwide when state
// is nil. When no population is known the denominator silently becomes 1,
// producing a near-zero proportion rather than a failure. That quirk is
// intentional upstream behavior and is preserved here.
func EnglishProficiencyProportion(s *Snapshot, state *string) float64 {
	var sum float64
	for _, rec := range s.recordsFor(state) {
		sum += floatOrZero(rec.EnglishLessThanWell)
	}

	denominator := 1.0
	if pop := s.Population(state); pop != nil && *pop > 0 {
		denominator = float64(*pop)
	}
	return 100 * sum / denominator
}

// StateSummary rolls one state's records up into a StateAggregate.
func StateSummary(s *Snapshot, state string) StateAggregate {
	agg := summarize(s.LanguageByState[state])
	agg.State = state
	agg.Population = s.Population(&state)
	return agg
}

// NationwideSummary rolls every record up into a single aggregate whose
// population is the sum of all known state populations (nil if none known).
func NationwideSummary(s *Snapshot) StateAggregate {
	agg := summarize(s.Records)
	agg.State = "United States"
	agg.Population = s.NationwidePopulation
	return agg
}

func summarize(records []LanguageRecord) StateAggregate {
	totals := make(map[string]float64)
	var english float64
	var margins []float64
	for _, rec := range records {
		totals[rec.Language] += floatOrZero(rec.Speakers)
		english += floatOrZero(rec.EnglishLessThanWell)
		if rec.MarginOfError != nil {
			margins = append(margins, *rec.MarginOfError)
		}
	}

	languages := make([]LanguageCount, 0, len(totals))
	for lang, speakers := range totals {
		languages = append(languages, LanguageCount{Language: lang, Speakers: speakers})
	}
	sort.SliceStable(languages, func(i, j int) bool {
		if languages[i].Speakers != languages[j].Speakers {
			return languages[i].Speakers > languages[j].Speakers
		}
		return languages[i].Language < languages[j].Language
	})

	return StateAggregate{
		DistinctLanguages:   len(totals),
		Languages:           languages,
		EnglishLessThanWell: english,
		MarginOfErrorRMS:    RMSError(margins),
	}
}

// recordsFor returns the records for one state, or every record when state
// is nil.
func (s *Snapshot) recordsFor(state *string) []LanguageRecord {
	if state == nil {
		return s.Records
	}
	return s.LanguageByState[*state]
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
