// Package models defines the derived record types persisted by the
// expected-state store.
package models

import "time"

// ExpectedFile is the unit of verification: one row per file that should
// exist in the migrated archive. Uniqueness is enforced on
// (DOI, ExpectedPath, DuplicateSequence); DuplicateSequence starts at 0 and
// is incremented by the dedup-retry saver on a key collision.
type ExpectedFile struct {
	ID  int64
	DOI string

	// ExpectedPath is the sanitized target path inside the new archive.
	ExpectedPath      string
	DuplicateSequence int

	SHA1Checksum     string
	LegacyFileID     string
	LegacySourcePath string

	// AddedDuringMigration marks placeholder artifacts the migration itself
	// introduces (provenance, exported metadata), not legacy payload.
	AddedDuringMigration     bool
	RemovedThumbnail         bool
	RemovedOriginalDirectory bool
	TransformedName          bool

	AccessibleTo string
	VisibleTo    string
	EmbargoDate  *time.Time
}

// ExpectedDataset is the dataset-level expectation, one per migrated dataset
// version.
type ExpectedDataset struct {
	DOI            string
	AccessCategory string
	Depositor      string
	EmbargoDate    *time.Time
	LicenseName    string
	LicenseURL     string
	CitationYear   string
	Deleted        bool

	// ExpectedVersions is the number of versions the migrated dataset should
	// have; zero when the origin has no version chain concept.
	ExpectedVersions int
}
