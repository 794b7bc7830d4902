package forms

import "context"

// Repository persists schemas and data-source catalogs. It replaces the
// ambient browser-storage catalogs of the original builder with an
// explicit, injectable store.
type Repository interface {
	LoadSchema(ctx context.Context, key string) (*Schema, error)
	SaveSchema(ctx context.Context, schema *Schema) error
	DeleteSchema(ctx context.Context, key string) error
	ListSchemaKeys(ctx context.Context) ([]string, error)

	LoadDataSource(ctx context.Context, key string) ([]byte, error)
	SaveDataSource(ctx context.Context, key string, body []byte) error
}
