// Package assess maps cataloged client evidence to framework controls and
// produces a preliminary findings document. Matching is intentionally shallow
// keyword overlap; every finding is flagged for the external consensus engine,
// which owns the final determination.
package assess
