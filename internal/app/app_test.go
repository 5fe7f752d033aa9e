package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/config"
	"github.com/edtke/archivecheck/internal/loader"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/models"
	"github.com/edtke/archivecheck/internal/store"
)

type fakeFetcher struct {
	responses map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if body, ok := f.responses[ref]; ok {
		return body, nil
	}
	return "", fmt.Errorf("%s: %w", ref, common.ErrNotFound)
}

func newTestApp(mem *store.InMemoryStore) *App {
	return &App{
		config: &config.Config{},
		log:    logging.NewNopLogger(),
		store:  mem,
	}
}

func TestRunUnit_ClearsPreviousRecords(t *testing.T) {
	ctx := context.Background()
	mem := store.NewInMemoryStore()

	require.NoError(t, mem.CreateFile(ctx, &models.ExpectedFile{DOI: "doi:10.5072/x", ExpectedPath: "stale.txt"}))
	require.NoError(t, mem.CreateDataset(ctx, &models.ExpectedDataset{DOI: "doi:10.5072/x"}))

	app := newTestApp(mem)
	err := app.runUnit(ctx, "easy-dataset:1", "doi:10.5072/x", func(ctx context.Context) error {
		return mem.CreateFile(ctx, &models.ExpectedFile{DOI: "doi:10.5072/x", ExpectedPath: "fresh.txt"})
	})
	require.NoError(t, err)

	require.Len(t, mem.Files, 1)
	assert.Equal(t, "fresh.txt", mem.Files[0].ExpectedPath)
	assert.Empty(t, mem.Datasets)
}

func TestRunUnit_ReportsButSurvivesFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewInMemoryStore()
	app := newTestApp(mem)

	boom := errors.New("boom")
	err := app.runUnit(ctx, "easy-dataset:2", "doi:10.5072/y", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunBag_ClearsEveryChainMember(t *testing.T) {
	ctx := context.Background()
	mem := store.NewInMemoryStore()

	const bagID = "33333333-3333-3333-3333-333333333333"
	base := "http://vault.example.org"

	fetcher := &fakeFetcher{responses: map[string]string{
		base + "/bag-sequence?contains=" + bagID: bagID + "\n",
		base + "/bags/" + bagID + "/bag-info.txt": "Created: 2015-01-01T10:00:00+01:00\n" +
			"DOI: doi:10.5072/bag\n",
		base + "/bags/" + bagID + "/metadata/dataset.xml": `<dataset>
			<accessRights>OPEN_ACCESS</accessRights>
		</dataset>`,
		base + "/bags/" + bagID + "/manifest-sha1.txt": "aaa\tdata/readme.txt\n",
	}}

	require.NoError(t, mem.CreateFile(ctx, &models.ExpectedFile{DOI: "doi:10.5072/bag", ExpectedPath: "stale.txt"}))

	app := newTestApp(mem)
	app.vault = &loader.VaultLoader{
		Deps:    loader.Deps{Store: mem, Log: logging.NewNopLogger()},
		Fetcher: fetcher,
		BaseURL: base,
	}

	require.NoError(t, app.runBag(ctx, bagID))

	paths := make([]string, 0, len(mem.Files))
	for _, f := range mem.Files {
		paths = append(paths, f.ExpectedPath)
	}
	assert.NotContains(t, paths, "stale.txt")
	assert.Contains(t, paths, "readme.txt")
	require.Len(t, mem.Datasets, 1)
	assert.Equal(t, "doi:10.5072/bag", mem.Datasets[0].DOI)
}

func TestLoadAccounts(t *testing.T) {
	t.Run("no path means no substitution", func(t *testing.T) {
		accounts, err := loadAccounts("")
		require.NoError(t, err)
		assert.Nil(t, accounts)
	})

	t.Run("reads mapping", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "accounts.csv")
		require.NoError(t, os.WriteFile(path, []byte("olduser,newuser\n"), 0o600))

		accounts, err := loadAccounts(path)
		require.NoError(t, err)
		assert.Equal(t, "newuser", accounts.Substitute("olduser"))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := loadAccounts(filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})
}

func TestRunRecords(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "run.csv")
	csv := "unitID,doi,comment,transformation,bagIdV1,bagIdV2\n" +
		"easy-dataset:1,doi:10.5072/a,OK,simple,b1,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	app := newTestApp(store.NewInMemoryStore())
	app.config.RunCSVPath = path

	records := app.runRecords(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "easy-dataset:1", records[0].UnitID)
	assert.Equal(t, "doi:10.5072/a", records[0].DOI)
}
