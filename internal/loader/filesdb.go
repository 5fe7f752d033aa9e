package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/edtke/archivecheck/internal/fetch"
	"github.com/edtke/archivecheck/internal/legacy"
	"github.com/edtke/archivecheck/internal/rights"
	"github.com/edtke/archivecheck/internal/store"
)

// FilesDBLoader derives expected records straight from the legacy file
// system tables, for datasets that never went through a recorded
// transformation run. Such datasets are never original-versioned.
type FilesDBLoader struct {
	Deps
	Files        legacy.FileRepository
	Index        fetch.Fetcher
	IndexBaseURL string
}

// Load processes one dataset id to completion.
func (l *FilesDBLoader) Load(ctx context.Context, unitID, doi string) error {
	ds, err := indexDatasetRights(ctx, l.Index, l.IndexBaseURL, unitID, l.Log)
	if err != nil {
		return err
	}
	defaults := ds.Defaults()

	files, err := l.Files.SelectByUnitID(ctx, unitID)
	if err != nil {
		return fmt.Errorf("unit %s: %w", unitID, err)
	}
	for _, file := range files {
		fact := fileFact{
			legacyPath: file.Path,
			fileID:     file.FileID,
			sha1:       file.SHA1,
			fileRights: rights.FileRights{AccessibleTo: file.AccessibleTo, VisibleTo: file.VisibleTo},
		}
		expected := buildExpectedFile(doi, fact, false, defaults)
		if err := store.RetriedSave(ctx, l.Store, l.Log, expected); err != nil {
			return fmt.Errorf("unit %s file %s: %w", unitID, file.Path, err)
		}
	}

	if err := savePlaceholders(ctx, l.Deps, doi, legacyMigrationFiles, defaults); err != nil {
		return fmt.Errorf("unit %s: %w", unitID, err)
	}
	return saveDataset(ctx, l.Deps, doi, ds, 1, time.Time{}, false)
}
