package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/fetch"
	"github.com/edtke/archivecheck/internal/legacy"
	"github.com/edtke/archivecheck/internal/rights"
	"github.com/edtke/archivecheck/internal/store"
)

// CSVRunLoader derives expected records for one transformation-run CSV row.
// The row is authoritative for the transformation outcome; per-file facts
// come from the legacy file repository and dataset defaults from the index
// service.
type CSVRunLoader struct {
	Deps
	Files        legacy.FileRepository
	Index        fetch.Fetcher
	IndexBaseURL string
}

// Load processes one CSV row to completion. Rows without "OK" in the status
// comment are skipped entirely (log only); "no payload" suppresses payload
// files but still emits the placeholder migration files and the dataset.
func (l *CSVRunLoader) Load(ctx context.Context, rec legacy.RunRecord) error {
	log := l.Log.With("unit", rec.UnitID, "doi", rec.DOI)

	if !rec.Succeeded() {
		log.Info(ctx, "skipping unit, transformation did not succeed", "status", rec.StatusComment)
		return fmt.Errorf("unit %s: %w", rec.UnitID, common.ErrUnitSkipped)
	}

	ds, err := indexDatasetRights(ctx, l.Index, l.IndexBaseURL, rec.UnitID, l.Log)
	if err != nil {
		return err
	}
	defaults := ds.Defaults()

	if !rec.NoPayload() {
		files, err := l.Files.SelectByUnitID(ctx, rec.UnitID)
		if err != nil {
			return fmt.Errorf("unit %s: %w", rec.UnitID, err)
		}
		for _, file := range files {
			fact := fileFact{
				legacyPath: file.Path,
				fileID:     file.FileID,
				sha1:       file.SHA1,
				fileRights: rights.FileRights{AccessibleTo: file.AccessibleTo, VisibleTo: file.VisibleTo},
			}
			expected := buildExpectedFile(rec.DOI, fact, rec.OriginalVersioned(), defaults)
			if err := store.RetriedSave(ctx, l.Store, l.Log, expected); err != nil {
				return fmt.Errorf("unit %s file %s: %w", rec.UnitID, file.Path, err)
			}
		}
	}

	if err := savePlaceholders(ctx, l.Deps, rec.DOI, legacyMigrationFiles, defaults); err != nil {
		return fmt.Errorf("unit %s: %w", rec.UnitID, err)
	}
	return saveDataset(ctx, l.Deps, rec.DOI, ds, rec.ExpectedVersions(), time.Time{}, rec.Deleted())
}
