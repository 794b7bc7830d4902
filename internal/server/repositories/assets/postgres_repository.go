package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/dbx"
	"github.com/mkraev/atelier/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreatePending records an intent-issued asset row. Re-issuing an intent
// for the same id refreshes the pending row; a committed row is left
// untouched so a stale intent cannot downgrade it.
func (r *PostgresRepository) CreatePending(ctx context.Context, asset *models.Asset) error {

	query :=
		`INSERT INTO assets (id, folder, file_name, size_bytes, mime_type, profile, committed)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		ON CONFLICT (id)
		DO UPDATE SET
			folder = EXCLUDED.folder,
			file_name = EXCLUDED.file_name,
			size_bytes = EXCLUDED.size_bytes,
			mime_type = EXCLUDED.mime_type,
			profile = EXCLUDED.profile
			WHERE assets.committed = false;
		`

	_, err := r.db.ExecContext(ctx, query, asset.ID, asset.Folder, asset.FileName,
		asset.SizeBytes, asset.MimeType, asset.Profile)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Commit flips a pending row to committed with the confirmed metadata.
// Committing an already-committed asset returns ErrorAssetAlreadyCommitted,
// an unknown id returns ErrorNotFound.
func (r *PostgresRepository) Commit(ctx context.Context, id string, sizeBytes int64, mimeType string, width, height int) error {

	query :=
		`UPDATE assets SET
			size_bytes=$2, mime_type=$3, width=$4, height=$5,
			committed=true, committed_at=now()
		WHERE id=$1 AND committed=false`

	res, err := r.db.ExecContext(ctx, query, id, sizeBytes, mimeType, width, height)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}

	committed, err := r.ExistsCommitted(ctx, id)
	if err != nil {
		return err
	}
	if committed {
		return common.ErrorAssetAlreadyCommitted
	}
	return common.ErrorNotFound
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	query :=
		`SELECT id, folder, file_name, size_bytes, mime_type, width, height, profile, committed, created_at, committed_at
		FROM assets WHERE id=$1`

	asset := &models.Asset{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&asset.ID, &asset.Folder, &asset.FileName,
		&asset.SizeBytes, &asset.MimeType, &asset.Width, &asset.Height, &asset.Profile,
		&asset.Committed, &asset.CreatedAt, &asset.CommittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return asset, nil
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, folder string) ([]*models.Asset, error) {
	query :=
		`SELECT id, folder, file_name, size_bytes, mime_type, width, height, profile, committed, created_at, committed_at
		FROM assets WHERE folder=$1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}

	var result []*models.Asset

	defer rows.Close()
	for rows.Next() {
		var item = models.Asset{}
		err := rows.Scan(&item.ID, &item.Folder, &item.FileName, &item.SizeBytes, &item.MimeType,
			&item.Width, &item.Height, &item.Profile, &item.Committed, &item.CreatedAt, &item.CommittedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) ExistsCommitted(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assets WHERE id=$1 AND committed=true)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountByFolder(ctx context.Context, folder string) (int64, error) {
	query := `SELECT count(*) FROM assets WHERE folder=$1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, folder).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id, newID, newFileName string) error {
	query := `UPDATE assets SET id=$2, file_name=$3 WHERE id=$1`
	return r.execExpectOne(ctx, query, id, newID, newFileName)
}

func (r *PostgresRepository) Move(ctx context.Context, id, newID, newFolder string) error {
	query := `UPDATE assets SET id=$2, folder=$3 WHERE id=$1`
	return r.execExpectOne(ctx, query, id, newID, newFolder)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM assets WHERE id=$1`
	return r.execExpectOne(ctx, query, id)
}

func (r *PostgresRepository) execExpectOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
