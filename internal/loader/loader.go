// Package loader derives expected-state records from the legacy origins.
// One loader per origin; all of them share the per-file pipeline (prefix
// strip, path transform, thumbnail detection, rights merge, dedup-retry
// save) and the emission of the fixed placeholder files the migration adds.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/fetch"
	"github.com/edtke/archivecheck/internal/legacy"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/models"
	"github.com/edtke/archivecheck/internal/pathx"
	"github.com/edtke/archivecheck/internal/resolve"
	"github.com/edtke/archivecheck/internal/rights"
	"github.com/edtke/archivecheck/internal/store"
)

// Deps are the collaborators every loader needs.
type Deps struct {
	Store    store.ExpectedStore
	Log      logging.Logger
	Accounts legacy.Accounts
}

// Placeholder files the migration itself adds next to the payload, per
// origin family.
var (
	legacyMigrationFiles = []string{
		"easy-migration/dataset.xml",
		"easy-migration/files.xml",
		"easy-migration/provenance.xml",
		"easy-migration/emd.xml",
	}
	vaultMigrationFiles = []string{
		"migration-files/dataset.xml",
		"migration-files/files.xml",
		"migration-files/provenance.xml",
	}
)

// fileFact is one raw per-file fact normalized across origins.
type fileFact struct {
	legacyPath string
	fileID     string
	sha1       string
	fileRights rights.FileRights
}

// buildExpectedFile runs one raw file fact through the shared pipeline and
// returns the record ready for saving. The thumbnail check runs against the
// prefix-stripped, pre-transform path.
func buildExpectedFile(doi string, fact fileFact, originalVersioned bool, defaults rights.FileRights) *models.ExpectedFile {
	path, removedOriginal := fact.legacyPath, false
	if originalVersioned {
		path, removedOriginal = pathx.StripOriginal(path)
	}

	expectedPath := pathx.Transform(path)
	merged := fact.fileRights.ApplyDefaults(defaults)

	return &models.ExpectedFile{
		DOI:                      doi,
		ExpectedPath:             expectedPath,
		SHA1Checksum:             fact.sha1,
		LegacyFileID:             fact.fileID,
		LegacySourcePath:         fact.legacyPath,
		RemovedOriginalDirectory: removedOriginal,
		RemovedThumbnail:         pathx.IsThumbnail(path),
		TransformedName:          pathx.Transformed(path),
		AccessibleTo:             merged.AccessibleTo,
		VisibleTo:                merged.VisibleTo,
		EmbargoDate:              merged.EmbargoDate,
	}
}

// savePlaceholders emits the origin's fixed "added during migration" files,
// inheriting the dataset's default rights.
func savePlaceholders(ctx context.Context, d Deps, doi string, names []string, defaults rights.FileRights) error {
	for _, name := range names {
		f := &models.ExpectedFile{
			DOI:                  doi,
			ExpectedPath:         name,
			AddedDuringMigration: true,
			AccessibleTo:         defaults.AccessibleTo,
			VisibleTo:            defaults.VisibleTo,
			EmbargoDate:          defaults.EmbargoDate,
		}
		if err := store.RetriedSave(ctx, d.Store, d.Log, f); err != nil {
			return fmt.Errorf("placeholder %s: %w", name, err)
		}
	}
	return nil
}

// saveDataset emits the dataset-level expectation, applying the depositor
// account substitution.
func saveDataset(ctx context.Context, d Deps, doi string, ds resolve.DatasetRights, versions int, created time.Time, deleted bool) error {
	defaults := ds.Defaults()
	record := &models.ExpectedDataset{
		DOI:              doi,
		AccessCategory:   string(ds.Category),
		Depositor:        d.Accounts.Substitute(ds.Depositor),
		EmbargoDate:      defaults.EmbargoDate,
		LicenseName:      ds.LicenseName,
		LicenseURL:       ds.LicenseURL,
		CitationYear:     citationYear(ds.Available, created),
		Deleted:          deleted,
		ExpectedVersions: versions,
	}
	if err := d.Store.CreateDataset(ctx, record); err != nil {
		return fmt.Errorf("dataset %s: %w", doi, err)
	}
	return nil
}

// indexDatasetRights asks the dataset index service for the default rights
// of one dataset. A not-found answer is no data, not a failure: the most
// restrictive category is assumed with a warning.
func indexDatasetRights(ctx context.Context, fetcher fetch.Fetcher, baseURL, unitID string, log logging.Logger) (resolve.DatasetRights, error) {
	ref := baseURL + "/datasets/" + url.PathEscape(unitID)
	line, err := fetcher.Fetch(ctx, ref)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Warn(ctx, "dataset not in index, assuming most restrictive rights", "unit", unitID)
			return resolve.DatasetRights{Category: rights.NoAccess}, nil
		}
		return resolve.DatasetRights{}, fmt.Errorf("unit %s: %w", unitID, err)
	}
	ds, err := resolve.ResolveIndexLine(ctx, line, log)
	if err != nil {
		return resolve.DatasetRights{}, fmt.Errorf("unit %s: %w", unitID, err)
	}
	return ds, nil
}

// citationYear takes the year of the availability date, falling back to the
// creation timestamp when the date is absent or unparseable.
func citationYear(available string, created time.Time) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, available); err == nil {
			return fmt.Sprintf("%d", t.Year())
		}
	}
	if !created.IsZero() {
		return fmt.Sprintf("%d", created.Year())
	}
	return ""
}
