// Package refdata loads the GLEIF Golden Copy reference dataset into a
// compact in-memory table. The source file can reach several hundred
// megabytes, so ingestion is chunked: rows are resolved, filtered and
// accumulated one chunk at a time and the raw chunk is released before
// the next one is read.
package refdata

import (
	"errors"
	"strings"
)

// ErrUnsupportedFormat reports a reference file extension the loader
// cannot read. Fatal to the run, raised before any processing.
var ErrUnsupportedFormat = errors.New("format de fichier non supporté")

// Record is one reference entity after column resolution.
//
// EntityStatus and LEIStatus are orthogonal lifecycles: the entity itself
// (ACTIVE / INACTIVE / MERGED) versus the identifier record (ISSUED /
// LAPSED / RETIRED). "Usable" always means both at once.
type Record struct {
	LEI          string
	LegalName    string
	Country      string
	EntityStatus string
	LEIStatus    string
	RAID         string
	RAEntityID   string
	RenewalDate  string
}

// ActiveIssued reports whether the entity is ACTIVE and its LEI ISSUED.
// This conjunction is the single filtering predicate used everywhere.
func (r *Record) ActiveIssued() bool {
	return strings.EqualFold(r.EntityStatus, "ACTIVE") &&
		strings.EqualFold(r.LEIStatus, "ISSUED")
}

// Table is the loaded reference dataset. Immutable for the duration of a
// run; indexes are built over it once and only ever read afterwards.
type Table struct {
	Records []Record

	// FromCompact is set when the source file already used the compact
	// schema produced by Compact.
	FromCompact bool

	// ActiveOnly is the filter flag the table was loaded with.
	ActiveOnly bool

	// HasInactive is set when at least one loaded row fails the
	// ACTIVE+ISSUED predicate. A compact file built with activeOnly has
	// permanently lost those rows; validation mode checks this to warn
	// about silently incomplete coverage.
	HasInactive bool
}

// Len returns the number of reference rows.
func (t *Table) Len() int { return len(t.Records) }
