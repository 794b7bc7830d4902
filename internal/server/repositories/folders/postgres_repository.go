package folders

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

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, folder *models.Folder) error {

	query :=
		`INSERT INTO folders (slug, name, parent_slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, folder.Slug, folder.Name, folder.ParentSlug)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Folder, error) {
	query := `SELECT slug, name, parent_slug, created_at FROM folders WHERE slug=$1`

	folder := &models.Folder{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&folder.Slug, &folder.Name, &folder.ParentSlug, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return folder, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM folders WHERE slug=$1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Folder, error) {
	query := `SELECT slug, name, parent_slug, created_at FROM folders ORDER BY slug`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}

	var result []*models.Folder

	defer rows.Close()
	for rows.Next() {
		var item = models.Folder{}
		if err := rows.Scan(&item.Slug, &item.Name, &item.ParentSlug, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, slug, newSlug, newName string) error {
	query := `UPDATE folders SET slug=$2, name=$3 WHERE slug=$1`

	res, err := r.db.ExecContext(ctx, query, slug, newSlug, newName)
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
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, slug string) error {
	query := `DELETE FROM folders WHERE slug=$1`

	res, err := r.db.ExecContext(ctx, query, slug)
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
	return nil
}
