// Package domain models US language-spoken-at-home data joined against state
// population figures.
//
// # Data Sources
//
// Language records originate from the American Community Survey (ACS)
// language-spoken-at-home tables, distributed as CSV with one row per
// (state, language) observation. Duplicate rows for the same pair are valid
// and are summed during aggregation. Population figures come from a separate
// 2010 census CSV. State geometry arrives as a TopoJSON topology whose
// features carry FIPS identifiers and/or a properties bag with a name or
// abbreviation field; geometry is carried through opaquely for the view layer.
//
// # State Name Conventions
//
// State references in the source data are free text and wildly inconsistent:
//
//	"CA", "ca", "California", "california", "N.Y.", "New  York",
//	"California (state)", "Washington state"
//
// [Canonicalize] collapses all of these into a single canonical name drawn
// from the 50 states plus the District of Columbia. Empty input becomes the
// sentinel "Unknown". Input that matches nothing is title-cased and returned
// verbatim; such names still key language aggregates but never join against
// population or geometry (see [IsKnownState]).
//
// # Numeric Field Conventions
//
// Speaker counts and margins of error are free text:
//
//	"1,234"        → 1234     (thousands separators stripped)
//	"1000-2000"    → 1500     (range: mean of first and last number)
//	"<500"         → 500      ("less than N" treated as N)
//	"120 (est.)"   → 120      (parenthetical notes removed)
//	"N/A", ""      → null     (no digits, no value)
//
// [ParseNumeric] implements these rules and never fails; absence of a value
// is represented as a nil pointer and counts as 0 in sums downstream.
//
// # Snapshot Identity
//
// The joined dataset is immutable after load. Its [Snapshot.Fingerprint] is a
// deterministic SHA-256 over the record set and population table, so derived
// results can be memoized keyed by fingerprint and invalidated simply by
// loading a new snapshot.
package domain
