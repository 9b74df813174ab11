package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"empty string", "", UnknownState},
		{"whitespace only", "   \t ", UnknownState},
		{"uppercase code", "CA", "California"},
		{"lowercase code", "ca", "California"},
		{"mixed case code", "Ny", "New York"},
		{"code with periods", "N.Y.", "New York"},
		{"district code", "DC", "District of Columbia"},
		{"full name", "California", "California"},
		{"full name lowercase", "california", "California"},
		{"full name uppercase", "TEXAS", "Texas"},
		{"two-word name", "New Mexico", "New Mexico"},
		{"extra internal whitespace", "new   york", "New York"},
		{"parenthetical suffix", "California (state)", "California"},
		{"standalone state word", "Washington state", "Washington"},
		{"state word uppercase", "Washington STATE", "Washington"},
		{"leading and trailing space", "  Ohio  ", "Ohio"},
		{"unrecognized name", "Atlantis", "Atlantis"},
		{"unrecognized multi-word", "nueva york norte", "Nueva York Norte"},
		{"unrecognized accented name", "méxico", "México"},
		{"unrecognized multi-byte first rune", "águascalientes norte", "Águascalientes Norte"},
		{"unrecognized code falls through", "ZZ", "Zz"},
		{"only parenthetical", "(unknown)", UnknownState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonicalize(tt.raw))
		})
	}
}

func TestCanonicalize_AllCodesMatchFullNames(t *testing.T) {
	for code, name := range stateByCode {
		assert.Equal(t, name, Canonicalize(code), "code %s", code)
		assert.Equal(t, name, Canonicalize(strings.ToLower(code)), "lowercase code %s", code)
		assert.Equal(t, name, Canonicalize(name), "full name %s", name)
	}
}

func TestCanonicalize_NeverEmpty(t *testing.T) {
	for _, raw := range []string{"", " ", "()", "...", "-", "state"} {
		assert.NotEmpty(t, Canonicalize(raw), "input %q", raw)
	}
}

func TestIsKnownState(t *testing.T) {
	assert.True(t, IsKnownState("California"))
	assert.True(t, IsKnownState("District of Columbia"))
	assert.False(t, IsKnownState("Atlantis"))
	assert.False(t, IsKnownState(UnknownState))
	// Known only under canonical casing; callers get that from Canonicalize.
	assert.False(t, IsKnownState("california"))
}

func TestStateByFIPS(t *testing.T) {
	name, ok := StateByFIPS("06")
	require.True(t, ok)
	assert.Equal(t, "California", name)

	// Single digit codes are zero-padded.
	name, ok = StateByFIPS("6")
	require.True(t, ok)
	assert.Equal(t, "California", name)

	// Puerto Rico is not part of the 51-entry set.
	_, ok = StateByFIPS("72")
	assert.False(t, ok)

	_, ok = StateByFIPS("")
	assert.False(t, ok)
}

func TestKnownStates(t *testing.T) {
	states := KnownStates()
	require.Len(t, states, 51)
	assert.True(t, sortedStrings(states))
	assert.Contains(t, states, "District of Columbia")
	for _, name := range states {
		assert.True(t, IsKnownState(name))
	}
}

func TestSearchStates(t *testing.T) {
	assert.Equal(t, []string{"New Jersey"}, SearchStates("jers"))
	assert.Equal(t,
		[]string{"New Hampshire", "New Jersey", "New Mexico", "New York"},
		SearchStates("new "))
	assert.Len(t, SearchStates(""), 51)
	assert.Empty(t, SearchStates("atlantis"))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
