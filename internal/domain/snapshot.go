package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"
)

// StateFeature is one state polygon from the geometry topology. Geometry is
// opaque to this service: arc indices and coordinates pass straight through
// to the view layer, which owns projection and path drawing.
type StateFeature struct {
	ID       string          `json:"id"`    // FIPS code as carried by the source
	State    string          `json:"state"` // canonical name, "" when unresolved
	Geometry json.RawMessage `json:"geometry"`
}

// Atlas is the decoded TopoJSON topology: labeled features plus the shared
// arc table and transform the view layer needs to draw them.
type Atlas struct {
	Features  []StateFeature  `json:"features"`
	Arcs      json.RawMessage `json:"arcs,omitempty"`
	Transform json.RawMessage `json:"transform,omitempty"`
}

// Snapshot is the immutable post-load join of the three sources. All derived
// aggregates are pure functions of a Snapshot; nothing mutates one after
// NewSnapshot returns, so it is safe to share across concurrent readers.
type Snapshot struct {
	Records []LanguageRecord

	// LanguageByState groups records by canonical state, preserving
	// source row order within each state.
	LanguageByState map[string][]LanguageRecord

	PopulationByState map[string]int64

	// NationwidePopulation is the sum of all known state populations,
	// nil when the population table resolved no rows.
	NationwidePopulation *int64

	Atlas *Atlas

	LoadedAt    time.Time
	fingerprint string
}

// NewSnapshot joins ingested records, population, and geometry into a
// Snapshot, stamping it with the current clock and a deterministic
// fingerprint.
func NewSnapshot(records []LanguageRecord, population map[string]int64, atlas *Atlas) *Snapshot {
	byState := make(map[string][]LanguageRecord)
	for _, rec := range records {
		byState[rec.State] = append(byState[rec.State], rec)
	}

	var nationwide *int64
	if len(population) > 0 {
		var sum int64
		for _, pop := range population {
			sum += pop
		}
		nationwide = &sum
	}

	return &Snapshot{
		Records:              records,
		LanguageByState:      byState,
		PopulationByState:    population,
		NationwidePopulation: nationwide,
		Atlas:                atlas,
		LoadedAt:             clock.Now(),
		fingerprint:          fingerprintOf(records, population),
	}
}

// Fingerprint is a deterministic digest of the record set and population
// table. Two snapshots built from identical source data share a fingerprint,
// so memoized query results keyed by it survive an identical reload and are
// implicitly invalidated by a different one.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

// Population returns the population for a canonical state name, or nil when
// unknown. A nil state means nationwide.
func (s *Snapshot) Population(state *string) *int64 {
	if state == nil {
		return s.NationwidePopulation
	}
	if pop, ok := s.PopulationByState[*state]; ok {
		return &pop
	}
	return nil
}

func fingerprintOf(records []LanguageRecord, population map[string]int64) string {
	h := sha256.New()
	for _, rec := range records {
		h.Write([]byte(rec.State))
		h.Write([]byte{0})
		h.Write([]byte(rec.Language))
		h.Write([]byte{0})
		h.Write([]byte(rec.RawSpeakers))
		h.Write([]byte{0})
	}
	for _, name := range KnownStates() {
		if pop, ok := population[name]; ok {
			h.Write([]byte(name))
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(pop))
			h.Write(buf[:])
		}
	}
	return "snap-" + hex.EncodeToString(h.Sum(nil)[:8])
}
