package inlines

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	assert.Equal(t, PostgresDefaultMaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, PostgresDefaultMaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, PostgresDefaultConnMaxLife, cfg.ConnMaxLifetime)
	assert.Equal(t, PostgresDefaultQueryTimeout, cfg.QueryTimeout)
	assert.Empty(t, cfg.ConnectionString)
	assert.Empty(t, cfg.DefaultTable)
}

func TestPostgresObjectStore_EmptyConnectionString(t *testing.T) {
	_, err := NewPostgresObjectStore(PostgresConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresEmptyDSN)
}

func TestPostgresObjectStore_InvalidConnectionString(t *testing.T) {
	_, err := NewPostgresObjectStore(PostgresConfig{
		ConnectionString: "invalid://not-a-valid-connection-string",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresConnect)
}

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		fields   []QueryField
		wantStmt string
		wantArgs []any
	}{
		{
			name:     "no fields",
			table:    "pages",
			wantStmt: `SELECT * FROM "pages" LIMIT 2`,
			wantArgs: []any{},
		},
		{
			name:     "one field",
			table:    "pages",
			fields:   []QueryField{{Field: "id", Value: int64(4)}},
			wantStmt: `SELECT * FROM "pages" WHERE "id" = $1 LIMIT 2`,
			wantArgs: []any{int64(4)},
		},
		{
			name:  "schema qualified",
			table: "cms.pages",
			fields: []QueryField{
				{Field: "slug", Value: "home"},
				{Field: "site", Value: "main"},
			},
			wantStmt: `SELECT * FROM "cms"."pages" WHERE "slug" = $1 AND "site" = $2 LIMIT 2`,
			wantArgs: []any{"home", "main"},
		},
		{
			name:     "identifiers are quoted",
			table:    `pa"ges`,
			fields:   []QueryField{{Field: "id; DROP TABLE x", Value: 1}},
			wantStmt: `SELECT * FROM "pa""ges" WHERE "id; DROP TABLE x" = $1 LIMIT 2`,
			wantArgs: []any{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, args, err := buildSelect(tt.table, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStmt, stmt)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	_, _, err := buildSelect("pages", []QueryField{{Field: "", Value: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidQueryField)
}

func TestPostgresObjectStore_GetWithoutConnection(t *testing.T) {
	// sql.Open does not connect, so these paths never reach the server.
	db, err := sql.Open(PostgresDriverName, "postgres://localhost:1/none?sslmode=disable")
	require.NoError(t, err)

	store := NewPostgresObjectStoreFromDB(db, PostgresConfig{}, nil)
	ctx := context.Background()

	_, err = store.Get(ctx, ObjectQuery{Fields: []QueryField{{Field: "id", Value: 1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresEmptyTable)

	_, err = store.Get(ctx, ObjectQuery{Source: "pages", Fields: []QueryField{{Value: 1}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgInvalidQueryField)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Get(cancelled, ObjectQuery{Source: "pages"})
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")
	_, err = store.Get(ctx, ObjectQuery{Source: "pages"})
	require.Error(t, err)
}
