package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/edtke/archivecheck/internal/common"
	"github.com/edtke/archivecheck/internal/dbx"
	"github.com/edtke/archivecheck/internal/models"
	"github.com/edtke/archivecheck/internal/store/migrations"
)

// PostgresStore implements ExpectedStore over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresStore struct {
	db dbx.DBTX
}

// NewPostgresStore constructs a store bound to the given DBTX.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to the DSN with the pgx stdlib driver and applies the
// embedded schema migrations.
func Open(ctx context.Context, dsn string) (*PostgresStore, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return NewPostgresStore(db), db, nil
}

// CreateFile inserts one expected file. A duplicate of the
// (doi, expected_path, duplicate_sequence) key is reported as
// common.ErrUniqueViolation, classified by SQLSTATE, never by message text.
func (s *PostgresStore) CreateFile(ctx context.Context, f *models.ExpectedFile) error {
	query := `
		INSERT INTO expected_files (
			doi, expected_path, duplicate_sequence,
			sha1_checksum, legacy_file_id, legacy_source_path,
			added_during_migration, removed_thumbnail, removed_original_directory, transformed_name,
			accessible_to, visible_to, embargo_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id;
	`
	err := s.db.QueryRowContext(ctx, query,
		f.DOI, f.ExpectedPath, f.DuplicateSequence,
		f.SHA1Checksum, f.LegacyFileID, f.LegacySourcePath,
		f.AddedDuringMigration, f.RemovedThumbnail, f.RemovedOriginalDirectory, f.TransformedName,
		f.AccessibleTo, f.VisibleTo, f.EmbargoDate,
	).Scan(&f.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expected file %s %s: %w", f.DOI, f.ExpectedPath, common.ErrUniqueViolation)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CreateDataset inserts one expected dataset.
func (s *PostgresStore) CreateDataset(ctx context.Context, d *models.ExpectedDataset) error {
	query := `
		INSERT INTO expected_datasets (
			doi, access_category, depositor, embargo_date,
			license_name, license_url, citation_year, deleted, expected_versions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := s.db.ExecContext(ctx, query,
		d.DOI, d.AccessCategory, d.Depositor, d.EmbargoDate,
		d.LicenseName, d.LicenseURL, d.CitationYear, d.Deleted, d.ExpectedVersions)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expected dataset %s: %w", d.DOI, common.ErrUniqueViolation)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByDOI removes the derived rows of one DOI from both tables. Both
// deletes run in a single transaction when the store is bound to a *sql.DB;
// a partially cleared unit must not survive a failed re-run.
func (s *PostgresStore) DeleteByDOI(ctx context.Context, doi string) error {
	if db, ok := s.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return deleteByDOI(ctx, tx, doi)
		})
	}
	return deleteByDOI(ctx, s.db, doi)
}

func deleteByDOI(ctx context.Context, db dbx.DBTX, doi string) error {
	for _, query := range []string{
		`DELETE FROM expected_files WHERE doi = $1;`,
		`DELETE FROM expected_datasets WHERE doi = $1;`,
	} {
		if _, err := db.ExecContext(ctx, query, doi); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
