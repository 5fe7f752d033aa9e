// Package store persists derived expected-state records. The engine talks to
// the ExpectedStore interface only; the Postgres implementation lives here
// alongside an in-memory one for tests.
package store

import (
	"context"

	"github.com/edtke/archivecheck/internal/models"
)

// ExpectedStore is the record store collaborator. CreateFile and
// CreateDataset report a uniqueness conflict as common.ErrUniqueViolation
// (matched with errors.Is); every other failure kind is fatal for the
// current unit of work.
type ExpectedStore interface {
	CreateFile(ctx context.Context, f *models.ExpectedFile) error
	CreateDataset(ctx context.Context, d *models.ExpectedDataset) error

	// DeleteByDOI removes all previously derived records for one DOI. The
	// batch driver calls it before re-deriving a unit; the engine itself
	// never deletes.
	DeleteByDOI(ctx context.Context, doi string) error
}
