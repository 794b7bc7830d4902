package forms

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/rules"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(context.Background(), db))
	return db
}

func sampleSchema(key string) *Schema {
	return &Schema{
		Key: key,
		Nodes: []Node{
			{
				Render: RenderTab,
				Name:   "main",
				Children: []Node{
					{
						Render: RenderField,
						Name:   "DOORTYPE",
						Label:  "Door type",
						Options: []rules.Option{
							{Value: "sliding"},
							{Value: "hinged"},
						},
					},
				},
			},
		},
	}
}

func TestSQLiteRepository_SchemaRoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.SaveSchema(ctx, sampleSchema("doors")))

	got, err := r.LoadSchema(ctx, "doors")
	require.NoError(t, err)
	assert.Equal(t, "doors", got.Key)
	require.NotNil(t, got.FindNode("DOORTYPE"))
	assert.Len(t, got.FindNode("DOORTYPE").Options, 2)

	// upsert replaces
	updated := sampleSchema("doors")
	updated.Nodes[0].Children[0].Label = "Door kind"
	require.NoError(t, r.SaveSchema(ctx, updated))
	got, err = r.LoadSchema(ctx, "doors")
	require.NoError(t, err)
	assert.Equal(t, "Door kind", got.FindNode("DOORTYPE").Label)
}

func TestSQLiteRepository_LoadMissingSchema(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.LoadSchema(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLiteRepository_DeleteAndList(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.SaveSchema(ctx, sampleSchema("a")))
	require.NoError(t, r.SaveSchema(ctx, sampleSchema("b")))

	keys, err := r.ListSchemaKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, r.DeleteSchema(ctx, "a"))
	assert.ErrorIs(t, r.DeleteSchema(ctx, "a"), common.ErrorNotFound)
}

func TestSQLiteRepository_DataSources(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	body := []byte(`[{"value":"d-1","attributes":{"category":"doors"}}]`)
	require.NoError(t, r.SaveDataSource(ctx, "articles", body))

	got, err := r.LoadDataSource(ctx, "articles")
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(got))

	// invalid JSON is refused
	assert.ErrorIs(t, r.SaveDataSource(ctx, "broken", []byte("{")), common.ErrorValidation)

	_, err = r.LoadDataSource(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
