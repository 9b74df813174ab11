package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// testSnapshot joins a small record set the way the loader would.
func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	records := []LanguageRecord{
		{State: "California", Language: "Spanish", Speakers: ptr(1000000), EnglishLessThanWell: ptr(400000), MarginOfError: ptr(3), RawSpeakers: "1,000,000"},
		{State: "California", Language: "English", Speakers: ptr(5000000), MarginOfError: ptr(4), RawSpeakers: "5,000,000"},
		{State: "Texas", Language: "Spanish", Speakers: ptr(800000), EnglishLessThanWell: ptr(300000), RawSpeakers: "800,000"},
		{State: "Texas", Language: "Vietnamese", Speakers: ptr(200000), RawSpeakers: "200,000"},
		{State: "Atlantis", Language: "Atlantean", RawSpeakers: "N/A"},
	}
	population := map[string]int64{
		"California": 37253956,
		"Texas":      25145561,
	}
	return NewSnapshot(records, population, nil)
}

func TestLanguageTotals_ForState(t *testing.T) {
	s := testSnapshot(t)
	state := "California"

	totals := LanguageTotals(s, &state)

	assert.Equal(t, map[string]float64{
		"Spanish": 1000000,
		"English": 5000000,
	}, totals)
}

func TestLanguageTotals_Nationwide(t *testing.T) {
	s := testSnapshot(t)

	totals := LanguageTotals(s, nil)

	// Null speaker counts contribute 0 but the language still appears.
	assert.Equal(t, map[string]float64{
		"Spanish":    1800000,
		"English":    5000000,
		"Vietnamese": 200000,
		"Atlantean":  0,
	}, totals)

	// Sum over all languages equals the sum of speakers over all records.
	var sum float64
	for _, v := range totals {
		sum += v
	}
	assert.Equal(t, 7000000.0, sum)

	// Idempotent under repeated calls.
	assert.Equal(t, totals, LanguageTotals(s, nil))
}

func TestLanguageDiversityCount(t *testing.T) {
	s := testSnapshot(t)

	assert.Equal(t, 2, LanguageDiversityCount(s, "California"))
	assert.Equal(t, 2, LanguageDiversityCount(s, "Texas"))
	// Null speaker count still counts toward diversity.
	assert.Equal(t, 1, LanguageDiversityCount(s, "Atlantis"))
	assert.Equal(t, 0, LanguageDiversityCount(s, "Wyoming"))
}

func TestLanguageCoverage(t *testing.T) {
	s := testSnapshot(t)

	coverage := LanguageCoverage(s)

	assert.Equal(t, map[string]int{
		"Spanish":    2,
		"English":    1,
		"Vietnamese": 1,
		// Atlantean has no records with >0 speakers, so no entry.
	}, coverage)
}

func TestSharesWithOtherBucket(t *testing.T) {
	totals := map[string]float64{
		"Spanish":    600,
		"English":    390,
		"Tagalog":    6,
		"Vietnamese": 4,
	}

	shares := SharesWithOtherBucket(totals, 1000, nil)

	require.Len(t, shares, 3)
	assert.Equal(t, Share{Label: "Spanish", Value: 600, Share: 0.6}, shares[0])
	assert.Equal(t, Share{Label: "English", Value: 390, Share: 0.39}, shares[1])
	assert.Equal(t, OtherBucketLabel, shares[2].Label)
	assert.Equal(t, 10.0, shares[2].Value)
	assert.InDelta(t, 0.01, shares[2].Share, 1e-12)

	// Shares sum to 1 when the denominator equals the sum of the values.
	var sum float64
	for _, sh := range shares {
		sum += sh.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSharesWithOtherBucket_ExcludeRebasesDenominator(t *testing.T) {
	totals := map[string]float64{
		"English": 800,
		"Spanish": 150,
		"French":  50,
	}

	shares := SharesWithOtherBucket(totals, 0, map[string]bool{"English": true})

	require.Len(t, shares, 2)
	assert.Equal(t, Share{Label: "Spanish", Value: 150, Share: 0.75}, shares[0])
	assert.Equal(t, Share{Label: "French", Value: 50, Share: 0.25}, shares[1])
}

func TestSharesWithOtherBucket_ZeroDenominator(t *testing.T) {
	totals := map[string]float64{"Spanish": 100, "English": 50}

	shares := SharesWithOtherBucket(totals, 0, nil)

	// Every share is 0, so everything lands in the Other bucket; no fault.
	require.Len(t, shares, 1)
	assert.Equal(t, OtherBucketLabel, shares[0].Label)
	assert.Equal(t, 150.0, shares[0].Value)
	assert.Equal(t, 0.0, shares[0].Share)
}

func TestSharesWithOtherBucket_Empty(t *testing.T) {
	assert.Empty(t, SharesWithOtherBucket(nil, 100, nil))
}

func TestSharesWithOtherBucket_DeterministicOrder(t *testing.T) {
	totals := map[string]float64{"A": 500, "B": 500}

	first := SharesWithOtherBucket(totals, 1000, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SharesWithOtherBucket(totals, 1000, nil))
	}
	// Equal shares tie-break by label.
	assert.Equal(t, "A", first[0].Label)
	assert.Equal(t, "B", first[1].Label)
}

func TestQuartiles(t *testing.T) {
	q, ok := Quartiles([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	require.True(t, ok)

	assert.Equal(t, QuartileSummary{
		Min:    1,
		Q1:     3,
		Median: 5,
		Q3:     7,
		Max:    8,
		IQR:    4,
	}, q)
}

func TestQuartiles_SingleValue(t *testing.T) {
	q, ok := Quartiles([]float64{42})
	require.True(t, ok)
	assert.Equal(t, QuartileSummary{Min: 42, Q1: 42, Median: 42, Q3: 42, Max: 42, IQR: 0}, q)
}

func TestQuartiles_Empty(t *testing.T) {
	_, ok := Quartiles(nil)
	assert.False(t, ok)
}

func TestRMSError(t *testing.T) {
	assert.Equal(t, 5.0, RMSError([]float64{3, 4}))
	assert.Equal(t, 7.0, RMSError([]float64{7}))
	assert.Equal(t, 0.0, RMSError(nil))
}

func TestEnglishProficiencyProportion(t *testing.T) {
	s := testSnapshot(t)

	t.Run("state with population", func(t *testing.T) {
		state := "California"
		got := EnglishProficiencyProportion(s, &state)
		assert.InDelta(t, 100*400000.0/37253956.0, got, 1e-9)
	})

	t.Run("nationwide", func(t *testing.T) {
		got := EnglishProficiencyProportion(s, nil)
		assert.InDelta(t, 100*700000.0/(37253956.0+25145561.0), got, 1e-9)
	})

	t.Run("unknown population falls back to 1", func(t *testing.T) {
		// Atlantis never joins the population table; the denominator
		// silently becomes 1 (preserved upstream quirk).
		state := "Atlantis"
		assert.Equal(t, 0.0, EnglishProficiencyProportion(s, &state))

		records := []LanguageRecord{
			{State: "Atlantis", Language: "Atlantean", EnglishLessThanWell: ptr(250)},
		}
		empty := NewSnapshot(records, nil, nil)
		got := EnglishProficiencyProportion(empty, &state)
		assert.Equal(t, 25000.0, got)
	})
}

func TestStateSummary(t *testing.T) {
	s := testSnapshot(t)

	agg := StateSummary(s, "California")

	assert.Equal(t, "California", agg.State)
	assert.Equal(t, 2, agg.DistinctLanguages)
	require.Len(t, agg.Languages, 2)
	assert.Equal(t, LanguageCount{Language: "English", Speakers: 5000000}, agg.Languages[0])
	assert.Equal(t, LanguageCount{Language: "Spanish", Speakers: 1000000}, agg.Languages[1])
	assert.Equal(t, 400000.0, agg.EnglishLessThanWell)
	assert.Equal(t, 5.0, agg.MarginOfErrorRMS) // sqrt(3² + 4²)
	require.NotNil(t, agg.Population)
	assert.Equal(t, int64(37253956), *agg.Population)
}

func TestStateSummary_NoRecords(t *testing.T) {
	s := testSnapshot(t)

	agg := StateSummary(s, "Wyoming")

	assert.Equal(t, 0, agg.DistinctLanguages)
	assert.Empty(t, agg.Languages)
	assert.Nil(t, agg.Population)
}

func TestNationwideSummary(t *testing.T) {
	s := testSnapshot(t)

	agg := NationwideSummary(s)

	assert.Equal(t, "United States", agg.State)
	assert.Equal(t, 4, agg.DistinctLanguages)
	assert.Equal(t, "English", agg.Languages[0].Language)
	assert.Equal(t, 700000.0, agg.EnglishLessThanWell)
	require.NotNil(t, agg.Population)
	assert.Equal(t, int64(37253956+25145561), *agg.Population)
}

func TestNewSnapshot_Join(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	SetClock(fake)
	defer SetClock(nil)

	s := testSnapshot(t)

	assert.Equal(t, fake.Now(), s.LoadedAt)
	assert.Len(t, s.LanguageByState["California"], 2)
	assert.Len(t, s.LanguageByState["Texas"], 2)
	// Unrecognized states key language aggregation under their own name
	// but never resolve a population.
	assert.Len(t, s.LanguageByState["Atlantis"], 1)
	atlantis := "Atlantis"
	assert.Nil(t, s.Population(&atlantis))

	// Insertion order within each state is preserved.
	assert.Equal(t, "Spanish", s.LanguageByState["California"][0].Language)
	assert.Equal(t, "English", s.LanguageByState["California"][1].Language)
}

func TestNewSnapshot_NationwidePopulation(t *testing.T) {
	t.Run("sum of known states", func(t *testing.T) {
		s := testSnapshot(t)
		require.NotNil(t, s.NationwidePopulation)
		assert.Equal(t, int64(62399517), *s.NationwidePopulation)
	})

	t.Run("nil when population table empty", func(t *testing.T) {
		s := NewSnapshot(nil, nil, nil)
		assert.Nil(t, s.NationwidePopulation)
	})
}

func TestSnapshot_Fingerprint(t *testing.T) {
	a := testSnapshot(t)
	b := testSnapshot(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	changed := NewSnapshot(a.Records, map[string]int64{"California": 1}, nil)
	assert.NotEqual(t, a.Fingerprint(), changed.Fingerprint())
	assert.Contains(t, a.Fingerprint(), "snap-")
}
