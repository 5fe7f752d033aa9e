// Package app wires the configured origins together and runs one derivation
// batch: it opens the stores, builds the loaders, iterates the configured
// unit ids, and isolates per-unit failures so one broken dataset does not
// stop the run.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/config"
	"github.com/edtke/archivecheck/internal/fetch"
	"github.com/edtke/archivecheck/internal/legacy"
	"github.com/edtke/archivecheck/internal/loader"
	"github.com/edtke/archivecheck/internal/logging"
	"github.com/edtke/archivecheck/internal/store"
)

type App struct {
	config *config.Config
	log    logging.Logger

	store    store.ExpectedStore
	expected *sql.DB
	legacyDB *sql.DB

	runCSV  *loader.CSVRunLoader
	filesDB *loader.FilesDBLoader
	vault   *loader.VaultLoader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	log := logging.NewSlogLogger(sl)

	st, expectedDB, err := store.Open(ctx, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("expected store init error: %w", err)
	}

	app := &App{config: cfg, log: log, store: st, expected: expectedDB}

	accounts, err := loadAccounts(cfg.AccountsCSVPath)
	if err != nil {
		return nil, err
	}

	deps := loader.Deps{Store: st, Log: log, Accounts: accounts}
	index := fetch.NewHTTPFetcher(cfg.FetchTimeout)

	if cfg.RunCSVPath != "" || len(cfg.Datasets) > 0 {
		legacyDB, err := sql.Open("pgx", cfg.LegacyDSN)
		if err != nil {
			return nil, fmt.Errorf("legacy db init error: %w", err)
		}
		app.legacyDB = legacyDB
		files := legacy.NewPostgresFileRepository(legacyDB)

		app.runCSV = &loader.CSVRunLoader{
			Deps: deps, Files: files, Index: index, IndexBaseURL: cfg.IndexBaseURL,
		}
		app.filesDB = &loader.FilesDBLoader{
			Deps: deps, Files: files, Index: index, IndexBaseURL: cfg.IndexBaseURL,
		}
	}

	if len(cfg.BagIDs) > 0 {
		bagStore, baseURL, err := bagStoreFetcher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.vault = &loader.VaultLoader{Deps: deps, Fetcher: bagStore, BaseURL: baseURL}
	}

	return app, nil
}

// bagStoreFetcher picks the transport for vault documents: the bag store
// over HTTP, or its S3 bucket mirror. The mirror keeps the store's URL
// layout as object keys, so loaders build refs the same way either way.
func bagStoreFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, string, error) {
	if !cfg.UseS3Mirror {
		return fetch.NewHTTPFetcher(cfg.FetchTimeout), cfg.VaultBaseURL, nil
	}
	f, err := fetch.NewS3Fetcher(ctx, fetch.S3Options{
		User:         cfg.S3User,
		Password:     cfg.S3Password,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, "", fmt.Errorf("s3 mirror init error: %w", err)
	}
	return f, "", nil
}

func loadAccounts(path string) (legacy.Accounts, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("accounts file error: %w", err)
	}
	defer f.Close()
	accounts, err := legacy.ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("accounts file error: %w", err)
	}
	return accounts, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run executes the whole batch: CSV rows first, then explicit dataset
// pairs, then bag store units, each serially. It returns once every unit
// has been attempted or the context is cancelled.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.log.Info(ctx, "starting derivation batch")

	app.initSignalHandler(cancelFunc)

	derived, skipped, failed := 0, 0, 0
	count := func(err error) {
		switch {
		case err == nil:
			derived++
		case errors.Is(err, common.ErrUnitSkipped):
			skipped++
		default:
			failed++
		}
	}

	for _, rec := range app.runRecords(ctx) {
		if ctx.Err() != nil {
			break
		}
		// Skip before touching the store: a failed transformation must not
		// wipe records derived for the DOI by an earlier run.
		if !rec.Succeeded() {
			app.log.Info(ctx, "skipping unit, transformation did not succeed",
				"unit", rec.UnitID, "status", rec.StatusComment)
			skipped++
			continue
		}
		count(app.runUnit(ctx, rec.UnitID, rec.DOI, func(ctx context.Context) error {
			return app.runCSV.Load(ctx, rec)
		}))
	}

	for _, pair := range app.config.Datasets {
		if ctx.Err() != nil {
			break
		}
		unitID, doi, ok := strings.Cut(pair, "=")
		if !ok {
			app.log.Error(ctx, "malformed dataset pair, expected unitID=doi", "pair", pair)
			failed++
			continue
		}
		count(app.runUnit(ctx, unitID, doi, func(ctx context.Context) error {
			return app.filesDB.Load(ctx, unitID, doi)
		}))
	}

	for _, bagID := range app.config.BagIDs {
		if ctx.Err() != nil {
			break
		}
		count(app.runBag(ctx, bagID))
	}

	app.log.Info(ctx, "derivation batch finished",
		"derived", derived, "skipped", skipped, "failed", failed)

	app.close(ctx)
}

// runRecords reads the transformation-run CSV, if one is configured.
func (app *App) runRecords(ctx context.Context) []legacy.RunRecord {
	if app.config.RunCSVPath == "" {
		return nil
	}
	f, err := os.Open(app.config.RunCSVPath)
	if err != nil {
		app.log.Error(ctx, "cannot open transformation-run CSV", "path", app.config.RunCSVPath, "error", err.Error())
		return nil
	}
	defer f.Close()
	records, err := legacy.ReadRunCSV(f)
	if err != nil {
		app.log.Error(ctx, "cannot read transformation-run CSV", "path", app.config.RunCSVPath, "error", err.Error())
		return nil
	}
	return records
}

// runUnit clears previously derived records for the unit's DOI and
// re-derives it. A failure is logged and reported to the caller but never
// aborts the batch.
func (app *App) runUnit(ctx context.Context, unitID, doi string, load func(context.Context) error) error {
	log := app.log.With("unit", unitID, "doi", doi)

	if doi != "" {
		if err := app.store.DeleteByDOI(ctx, doi); err != nil {
			log.Error(ctx, "cannot clear previous records", "error", err.Error())
			return err
		}
	}
	if err := load(ctx); err != nil {
		if !errors.Is(err, common.ErrUnitSkipped) {
			log.Error(ctx, "unit failed", "error", err.Error())
		}
		return err
	}
	return nil
}

// runBag resolves the unit's version chain first so every member DOI can be
// cleared before the chain is re-derived.
func (app *App) runBag(ctx context.Context, bagID string) error {
	log := app.log.With("bag", bagID)

	chain, err := app.vault.Chain(ctx, bagID)
	if err != nil {
		log.Error(ctx, "bag failed", "error", err.Error())
		return err
	}
	for _, member := range chain {
		if err := app.store.DeleteByDOI(ctx, member.DOI); err != nil {
			log.Error(ctx, "cannot clear previous records", "doi", member.DOI, "error", err.Error())
			return err
		}
	}
	if err := app.vault.LoadChain(ctx, chain); err != nil {
		log.Error(ctx, "bag failed", "error", err.Error())
		return err
	}
	return nil
}

func (app *App) close(ctx context.Context) {
	if app.expected != nil {
		if err := app.expected.Close(); err != nil {
			app.log.Error(ctx, "closing expected store", "error", err.Error())
		}
	}
	if app.legacyDB != nil {
		if err := app.legacyDB.Close(); err != nil {
			app.log.Error(ctx, "closing legacy db", "error", err.Error())
		}
	}
}
