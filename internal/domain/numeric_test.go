package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"plain integer", "1234", 1234},
		{"thousands separators", "1,234", 1234},
		{"large with separators", "5,000,000", 5000000},
		{"decimal", "1.5", 1.5},
		{"range", "1000-2000", 1500},
		{"spaced range", "1,000 - 3,000", 2000},
		{"less-than qualifier", "<500", 500},
		{"less-than with space", "< 500", 500},
		{"parenthetical note", "120 (estimated)", 120},
		{"parenthetical with digits", "1,234 (rev. 2012)", 1234},
		{"leading text", "about 900", 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumeric(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseNumeric_Null(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"letters only", "N/A"},
		{"dash only", "-"},
		{"digits only inside parentheses", "(1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseNumeric(tt.raw))
		})
	}
}

func TestParseNumeric_RangeTakesFirstAndLast(t *testing.T) {
	// Three candidates: the mean is of the first and last, not a midpoint
	// of all of them.
	got := ParseNumeric("100-200-500")
	require.NotNil(t, got)
	assert.Equal(t, 300.0, *got)
}

func TestParseNumeric_HyphenWithSingleCandidateIsNotARange(t *testing.T) {
	got := ParseNumeric("-500")
	require.NotNil(t, got)
	assert.Equal(t, 500.0, *got)
}

func TestParsePopulation(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		n, ok := ParsePopulation("37253956")
		require.True(t, ok)
		assert.Equal(t, int64(37253956), n)
	})

	t.Run("thousands separators", func(t *testing.T) {
		n, ok := ParsePopulation("37,253,956")
		require.True(t, ok)
		assert.Equal(t, int64(37253956), n)
	})

	t.Run("zero", func(t *testing.T) {
		n, ok := ParsePopulation("0")
		require.True(t, ok)
		assert.Equal(t, int64(0), n)
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, ok := ParsePopulation("-5")
		assert.False(t, ok)
	})

	t.Run("non-numeric rejected", func(t *testing.T) {
		_, ok := ParsePopulation("n/a")
		assert.False(t, ok)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, ok := ParsePopulation("")
		assert.False(t, ok)
	})

	t.Run("float rejected", func(t *testing.T) {
		_, ok := ParsePopulation("1234.5")
		assert.False(t, ok)
	})
}
