package legacy

import (
	"context"
	"fmt"

	"github.com/edtke/archivecheck/internal/dbx"
)

// PostgresFileRepository implements FileRepository over the legacy
// file-system tables, via a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresFileRepository struct {
	db dbx.DBTX
}

// NewPostgresFileRepository constructs a repository bound to the given DBTX.
func NewPostgresFileRepository(db dbx.DBTX) *PostgresFileRepository {
	return &PostgresFileRepository{db: db}
}

// SelectByUnitID returns all file records of one legacy dataset, in the
// stable insertion order of the legacy table. Order matters: the duplicate
// sequence discriminator follows first-seen order.
func (r *PostgresFileRepository) SelectByUnitID(ctx context.Context, unitID string) ([]*FileRecord, error) {
	query := `
		SELECT pid, parent_sid, dataset_sid, path, filename, size, mimetype,
		       creator_role, visible_to, accessible_to, sha1_checksum
		FROM easy_files
		WHERE dataset_sid = $1
		ORDER BY pid;
	`
	rows, err := r.db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to select legacy files: %w", err)
	}
	defer rows.Close()

	var result []*FileRecord
	for rows.Next() {
		var item FileRecord
		if err := rows.Scan(
			&item.FileID, &item.ParentID, &item.UnitID, &item.Path, &item.Filename,
			&item.SizeBytes, &item.MimeType, &item.CreatorRole, &item.VisibleTo,
			&item.AccessibleTo, &item.SHA1,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
