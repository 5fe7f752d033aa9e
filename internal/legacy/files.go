// Package legacy reads the heterogeneous legacy sources feeding the
// derivation engine: the per-file records of the RDB-backed legacy file
// system, the transformation-run CSV, and the depositor account substitution
// table.
package legacy

import "context"

// FileRecord is one per-file fact from the legacy file system. Path holds
// the full legacy path including the file name; Filename repeats the name
// alone.
type FileRecord struct {
	FileID       string
	ParentID     string
	UnitID       string
	Path         string
	Filename     string
	SizeBytes    int64
	MimeType     string
	CreatorRole  string
	VisibleTo    string
	AccessibleTo string
	SHA1         string
}

// FileRepository lists the per-file records of one legacy dataset.
type FileRepository interface {
	SelectByUnitID(ctx context.Context, unitID string) ([]*FileRecord, error)
}
