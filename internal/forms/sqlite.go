package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx). Schemas and data sources are stored as JSON bodies keyed by
// name.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InitSchema creates the backing tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS form_schemas (
  key TEXT PRIMARY KEY,
  body TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS data_sources (
  key TEXT PRIMARY KEY,
  body TEXT NOT NULL
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init forms schema: %w", err)
		}
	}
	return nil
}

// LoadSchema fetches and decodes one schema by key.
func (r *SQLiteRepository) LoadSchema(ctx context.Context, key string) (*Schema, error) {
	var body string
	query := `select body from form_schemas where key=?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select schema: %w", err)
	}

	var schema Schema
	if err := json.Unmarshal([]byte(body), &schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", key, err)
	}
	schema.Key = key
	return &schema, nil
}

// SaveSchema upserts a schema under its key.
func (r *SQLiteRepository) SaveSchema(ctx context.Context, schema *Schema) error {
	body, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	query := `insert into form_schemas (key, body) values (?, ?)
			on conflict(key) do update set body = excluded.body`
	_, err = r.db.ExecContext(ctx, query, schema.Key, string(body))
	if err != nil {
		return fmt.Errorf("failed to upsert schema: %w", err)
	}
	return nil
}

// DeleteSchema removes a schema. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteSchema(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `delete from form_schemas where key=?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

// ListSchemaKeys lists all stored schema keys.
func (r *SQLiteRepository) ListSchemaKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `select key from form_schemas order by key`)
	if err != nil {
		return nil, fmt.Errorf("failed to select schema keys: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		result = append(result, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadDataSource returns the raw JSON body of one data source.
func (r *SQLiteRepository) LoadDataSource(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `select body from data_sources where key=?`, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select data source: %w", err)
	}
	return []byte(body), nil
}

// SaveDataSource upserts a data source body under its key.
func (r *SQLiteRepository) SaveDataSource(ctx context.Context, key string, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("data source %s: %w", key, common.ErrorValidation)
	}
	query := `insert into data_sources (key, body) values (?, ?)
			on conflict(key) do update set body = excluded.body`
	_, err := r.db.ExecContext(ctx, query, key, string(body))
	if err != nil {
		return fmt.Errorf("failed to upsert data source: %w", err)
	}
	return nil
}
