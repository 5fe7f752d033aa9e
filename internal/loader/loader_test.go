package loader

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/legacy"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/models"
	"github.com/edtke/archivecheck/internal/store"
)

// -------- test fakes --------

type fakeFetcher struct {
	responses map[string]string
	failWith  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	if body, ok := f.responses[ref]; ok {
		return body, nil
	}
	return "", fmt.Errorf("%s: %w", ref, common.ErrNotFound)
}

type fakeFileRepo struct {
	files []*legacy.FileRecord
	err   error
}

func (f *fakeFileRepo) SelectByUnitID(ctx context.Context, unitID string) ([]*legacy.FileRecord, error) {
	return f.files, f.err
}

const indexBase = "http://index.example.org"

func indexRef(unitID string) string {
	return indexBase + "/datasets/" + url.PathEscape(unitID)
}

func newCSVLoader(s *store.InMemoryStore, repo *fakeFileRepo, fetcher *fakeFetcher) *CSVRunLoader {
	return &CSVRunLoader{
		Deps:         Deps{Store: s, Log: logging.NewNopLogger(), Accounts: legacy.Accounts{"olduser": "newuser"}},
		Files:        repo,
		Index:        fetcher,
		IndexBaseURL: indexBase,
	}
}

func payloadFiles(s *store.InMemoryStore) []*models.ExpectedFile {
	var out []*models.ExpectedFile
	for _, f := range s.Files {
		if !f.AddedDuringMigration {
			out = append(out, f)
		}
	}
	return out
}

// -------- scenarios --------

func TestCSVRunLoader_NoPayloadRowEmitsPlaceholdersOnly(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{{Path: "data/should-not-appear.txt"}}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:1"): `"easy-dataset:1","2010-01-01","OPEN_ACCESS","olduser"`,
	}}
	l := newCSVLoader(s, repo, fetcher)

	rec := legacy.RunRecord{UnitID: "easy-dataset:1", DOI: "doi:10.5072/x", StatusComment: "OK no payload", BagIDV1: "u1"}
	require.NoError(t, l.Load(context.Background(), rec))

	assert.Empty(t, payloadFiles(s))
	require.Len(t, s.Files, len(legacyMigrationFiles))
	for _, f := range s.Files {
		assert.True(t, f.AddedDuringMigration)
		assert.False(t, f.TransformedName)
		assert.Equal(t, "doi:10.5072/x", f.DOI)
		assert.Equal(t, "ANONYMOUS", f.AccessibleTo)
	}
	require.Len(t, s.Datasets, 1)
	assert.Equal(t, "OPEN_ACCESS", s.Datasets[0].AccessCategory)
	assert.Equal(t, "newuser", s.Datasets[0].Depositor, "account substitution applies")
	assert.Equal(t, "2010", s.Datasets[0].CitationYear)
	assert.Equal(t, 1, s.Datasets[0].ExpectedVersions)
}

func TestCSVRunLoader_DeletedRowYieldsTombstoneDataset(t *testing.T) {
	s := store.NewInMemoryStore()
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:9"): `"easy-dataset:9","2010-01-01","NO_ACCESS","olduser"`,
	}}
	l := newCSVLoader(s, &fakeFileRepo{}, fetcher)

	rec := legacy.RunRecord{UnitID: "easy-dataset:9", DOI: "doi:10.5072/gone", StatusComment: "OK; deleted; no payload"}
	require.NoError(t, l.Load(context.Background(), rec))

	require.Len(t, s.Datasets, 1)
	assert.True(t, s.Datasets[0].Deleted)
	assert.Empty(t, payloadFiles(s))
}

func TestCSVRunLoader_FailedRowYieldsNothing(t *testing.T) {
	s := store.NewInMemoryStore()
	l := newCSVLoader(s, &fakeFileRepo{}, &fakeFetcher{})

	rec := legacy.RunRecord{UnitID: "easy-dataset:2", DOI: "doi:10.5072/y", StatusComment: "Failed for some reason"}
	err := l.Load(context.Background(), rec)
	assert.ErrorIs(t, err, common.ErrUnitSkipped)

	assert.Empty(t, s.Files)
	assert.Empty(t, s.Datasets)
}

func TestCSVRunLoader_CollidingPathsGetDuplicateSequences(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{
		{FileID: "easy-file:1", Path: "some:/file.txt", SHA1: "aaa"},
		{FileID: "easy-file:2", Path: "some;/file.txt", SHA1: "bbb"},
	}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:3"): `"easy-dataset:3","2010-01-01","OPEN_ACCESS","someone"`,
	}}
	l := newCSVLoader(s, repo, fetcher)

	rec := legacy.RunRecord{UnitID: "easy-dataset:3", DOI: "doi:10.5072/z", StatusComment: "OK"}
	require.NoError(t, l.Load(context.Background(), rec))

	payload := payloadFiles(s)
	require.Len(t, payload, 2)
	assert.Equal(t, "some_/file.txt", payload[0].ExpectedPath)
	assert.Equal(t, 0, payload[0].DuplicateSequence)
	assert.Equal(t, "some_/file.txt", payload[1].ExpectedPath)
	assert.Equal(t, 1, payload[1].DuplicateSequence)
	assert.Equal(t, "some;/file.txt", payload[1].LegacySourcePath)
	assert.True(t, payload[0].TransformedName)
}

func TestCSVRunLoader_ThumbnailDetection(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{
		{FileID: "easy-file:1", Path: "thumbnails/image_small.png"},
		{FileID: "easy-file:2", Path: "thumbnails/image_large.png"},
	}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:4"): `"easy-dataset:4","2010-01-01","OPEN_ACCESS","someone"`,
	}}
	l := newCSVLoader(s, repo, fetcher)

	rec := legacy.RunRecord{UnitID: "easy-dataset:4", DOI: "doi:10.5072/t", StatusComment: "OK"}
	require.NoError(t, l.Load(context.Background(), rec))

	payload := payloadFiles(s)
	require.Len(t, payload, 2)
	assert.True(t, payload[0].RemovedThumbnail)
	assert.False(t, payload[1].RemovedThumbnail)
}

func TestCSVRunLoader_OriginalVersionedStripsPrefix(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{
		{FileID: "easy-file:1", Path: "original/data/file.txt"},
		{FileID: "easy-file:2", Path: "data/other.txt"},
	}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:5"): `"easy-dataset:5","2010-01-01","OPEN_ACCESS","someone"`,
	}}
	l := newCSVLoader(s, repo, fetcher)

	rec := legacy.RunRecord{
		UnitID: "easy-dataset:5", DOI: "doi:10.5072/o",
		StatusComment: "OK", TransformationKind: legacy.KindOriginalVersioned,
	}
	require.NoError(t, l.Load(context.Background(), rec))

	payload := payloadFiles(s)
	require.Len(t, payload, 2)
	assert.Equal(t, "data/file.txt", payload[0].ExpectedPath)
	assert.True(t, payload[0].RemovedOriginalDirectory)
	assert.Equal(t, "original/data/file.txt", payload[0].LegacySourcePath)
	assert.False(t, payload[1].RemovedOriginalDirectory)
}

func TestCSVRunLoader_PerFileRightsBeatDefaultsExceptEmbargo(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{
		{FileID: "easy-file:1", Path: "a.txt", AccessibleTo: "KNOWN", VisibleTo: "ANONYMOUS"},
		{FileID: "easy-file:2", Path: "b.txt"},
	}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:6"): `"easy-dataset:6","2099-01-01","NO_ACCESS","someone"`,
	}}
	l := newCSVLoader(s, repo, fetcher)

	rec := legacy.RunRecord{UnitID: "easy-dataset:6", DOI: "doi:10.5072/r", StatusComment: "OK"}
	require.NoError(t, l.Load(context.Background(), rec))

	payload := payloadFiles(s)
	require.Len(t, payload, 2)
	assert.Equal(t, "KNOWN", payload[0].AccessibleTo)
	assert.Equal(t, "NONE", payload[1].AccessibleTo, "empty per-file rights filled from defaults")
	require.NotNil(t, payload[0].EmbargoDate, "dataset embargo applies to every file")
	assert.Equal(t, 2099, payload[0].EmbargoDate.Year())
}

func TestCSVRunLoader_DatasetMissingFromIndexFallsBack(t *testing.T) {
	s := store.NewInMemoryStore()
	l := newCSVLoader(s, &fakeFileRepo{}, &fakeFetcher{})

	rec := legacy.RunRecord{UnitID: "easy-dataset:7", DOI: "doi:10.5072/m", StatusComment: "OK"}
	require.NoError(t, l.Load(context.Background(), rec))

	require.Len(t, s.Datasets, 1)
	assert.Equal(t, "NO_ACCESS", s.Datasets[0].AccessCategory)
}

func TestCSVRunLoader_FetchFailureIsFatalForUnit(t *testing.T) {
	s := store.NewInMemoryStore()
	l := newCSVLoader(s, &fakeFileRepo{}, &fakeFetcher{failWith: fmt.Errorf("status 500")})

	rec := legacy.RunRecord{UnitID: "easy-dataset:8", DOI: "doi:10.5072/f", StatusComment: "OK"}
	require.Error(t, l.Load(context.Background(), rec))
	assert.Empty(t, s.Files)
}

func TestFilesDBLoader(t *testing.T) {
	s := store.NewInMemoryStore()
	repo := &fakeFileRepo{files: []*legacy.FileRecord{
		{FileID: "easy-file:1", Path: "data/a.txt", SHA1: "aaa"},
	}}
	fetcher := &fakeFetcher{responses: map[string]string{
		indexRef("easy-dataset:9"): `"easy-dataset:9","2010-01-01","REQUEST_PERMISSION","someone"`,
	}}
	l := &FilesDBLoader{
		Deps:         Deps{Store: s, Log: logging.NewNopLogger()},
		Files:        repo,
		Index:        fetcher,
		IndexBaseURL: indexBase,
	}

	require.NoError(t, l.Load(context.Background(), "easy-dataset:9", "doi:10.5072/d"))

	payload := payloadFiles(s)
	require.Len(t, payload, 1)
	assert.Equal(t, "RESTRICTED_REQUEST", payload[0].AccessibleTo)
	assert.Len(t, s.Files, 1+len(legacyMigrationFiles))
	require.Len(t, s.Datasets, 1)
	assert.Equal(t, 1, s.Datasets[0].ExpectedVersions)
}
