package dbschema

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jardiscore/dbschema/internal/depgraph"
	"github.com/jardiscore/dbschema/internal/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email VARCHAR(255) NOT NULL UNIQUE,
	name TEXT
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	total DECIMAL(10,2) DEFAULT 0,
	FOREIGN KEY (user_id) REFERENCES users(id) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE INDEX idx_orders_user ON orders(user_id);
CREATE TABLE audit_log (
	id INTEGER PRIMARY KEY,
	message TEXT
);
`

func newTestDB(t *testing.T, ddl string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(ddl)
	require.NoError(t, err)

	return "sqlite://" + path
}

func TestConnectInvalidURL(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, "", nil)
	assert.Error(t, err)

	_, err = Connect(ctx, "oracle://db", nil)
	assert.Error(t, err)
}

func TestConnectUnsupportedDialect(t *testing.T) {
	_, err := Connect(context.Background(), newTestDB(t, fixture), &Options{Dialect: "oracle"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnsupportedDriver))
}

func TestSessionTables(t *testing.T) {
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, fixture), &Options{ExcludeTables: []string{"audit_log"}})
	require.NoError(t, err)
	defer session.Close(ctx)

	assert.Equal(t, schema.FamilySQLite, session.Family())

	tables, err := session.Tables(ctx)
	require.NoError(t, err)

	var names []string
	for _, table := range tables {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"orders", "users"}, names)
}

func TestSessionExport(t *testing.T) {
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, fixture), nil)
	require.NoError(t, err)
	defer session.Close(ctx)

	script, err := session.Export(ctx, []string{"orders", "users"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "-- Generated at:"))
	assert.Contains(t, script, "-- Tables: 2\n-- orders, users")
	assert.Contains(t, script, "BEGIN TRANSACTION;")
	assert.Contains(t, script, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, script, `CREATE INDEX "idx_orders_user" ON "orders" ("user_id");`)
	assert.Contains(t, script, `CREATE UNIQUE INDEX "users_email_unique" ON "users" ("email");`)
	assert.Contains(t, script, "ON DELETE CASCADE ON UPDATE CASCADE")
	assert.NotContains(t, script, "audit_log")

	assert.Less(t, strings.Index(script, `DROP TABLE IF EXISTS "orders"`), strings.Index(script, `DROP TABLE IF EXISTS "users"`))
	assert.Less(t, strings.Index(script, `CREATE TABLE "users"`), strings.Index(script, `CREATE TABLE "orders"`))
}

func TestSessionExportOtherDialect(t *testing.T) {
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, fixture), &Options{Dialect: "postgres"})
	require.NoError(t, err)
	defer session.Close(ctx)

	script, err := session.Export(ctx, []string{"users", "orders"})
	require.NoError(t, err)

	assert.Contains(t, script, "BEGIN;")
	assert.Contains(t, script, `"id" SERIAL NOT NULL`)
	assert.Contains(t, script, `"total" NUMERIC(10,2) DEFAULT 0`)
	assert.Contains(t, script, `ALTER TABLE "orders" ADD CONSTRAINT`)
	assert.Contains(t, script, `REFERENCES "users" ("id") ON DELETE CASCADE ON UPDATE CASCADE;`)
}

func TestSessionExportCycle(t *testing.T) {
	ddl := `
CREATE TABLE a (id INTEGER PRIMARY KEY, b_id INTEGER REFERENCES b(id));
CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id));
`
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, ddl), nil)
	require.NoError(t, err)
	defer session.Close(ctx)

	script, err := session.Export(ctx, nil)
	require.Error(t, err)
	assert.Empty(t, script)

	var cycle *depgraph.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b"}, cycle.Tables)
}

func TestSessionInspect(t *testing.T) {
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, fixture), &Options{Tables: []string{"orders", "ghost"}})
	require.NoError(t, err)
	defer session.Close(ctx)

	tables, err := session.Inspect(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	orders := tables[0]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, []string{"id"}, orders.PrimaryKey())
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, "users", orders.ForeignKeys[0].RefContainer)

	ghost := tables[1]
	assert.Empty(t, ghost.Columns)
	assert.Nil(t, ghost.Indexes)
	assert.Nil(t, ghost.ForeignKeys)
}

func TestExportDDL(t *testing.T) {
	script, err := ExportDDL(context.Background(), newTestDB(t, fixture), &Options{Tables: []string{"audit_log"}})
	require.NoError(t, err)

	assert.Contains(t, script, "-- Tables: 1\n-- audit_log")
	assert.Contains(t, script, `CREATE TABLE "audit_log"`)
}

func TestFormatTables(t *testing.T) {
	ctx := context.Background()
	session, err := Connect(ctx, newTestDB(t, fixture), nil)
	require.NoError(t, err)
	defer session.Close(ctx)

	tables, err := session.Inspect(ctx, []string{"users"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FormatTables(tables, &OutputOptions{Writer: &buf}))
	assert.Contains(t, buf.String(), "TABLE users (PK: id)")

	buf.Reset()
	require.NoError(t, FormatTables(tables, &OutputOptions{Writer: &buf, Format: "markdown"}))
	assert.Contains(t, buf.String(), "## users")

	dir := t.TempDir()
	require.NoError(t, FormatTables(tables, &OutputOptions{OutputDir: dir, Format: "md"}))
	_, err = os.Stat(filepath.Join(dir, "users.md"))
	assert.NoError(t, err)

	assert.Error(t, FormatTables(tables, &OutputOptions{Writer: &buf, Format: "yaml"}))
}
