package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cli.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`
CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT NOT NULL);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT
);
CREATE TABLE schema_migrations (version TEXT PRIMARY KEY);
`)
	require.NoError(t, err)

	return "sqlite://" + path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTablesCommand(t *testing.T) {
	out, err := execute(t, "tables", "--url", newTestDB(t), "--exclude", "schema_migrations")
	require.NoError(t, err)

	assert.Equal(t, "posts\nusers\n", out)
}

func TestExportCommand(t *testing.T) {
	out, err := execute(t, "export", "--url", newTestDB(t), "-t", "posts,users")
	require.NoError(t, err)

	assert.Contains(t, out, "-- Tables: 2\n-- posts, users")
	assert.Less(t, strings.Index(out, `CREATE TABLE "users"`), strings.Index(out, `CREATE TABLE "posts"`))
	assert.NotContains(t, out, "schema_migrations")
}

func TestExportCommandToFile(t *testing.T) {
	url := newTestDB(t)
	path := filepath.Join(t.TempDir(), "schema.sql")

	out, err := execute(t, "export", "--url", url, "--dialect", "mysql", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	script, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(script), "START TRANSACTION;")
	assert.Contains(t, string(script), "CREATE TABLE `schema_migrations`")
}

func TestExportCommandFromEnvironment(t *testing.T) {
	t.Setenv("DBSCHEMA_DATABASE_URL", newTestDB(t))
	t.Setenv("DBSCHEMA_EXPORT_TABLES", "users")

	out, err := execute(t, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "-- Tables: 1\n-- users")
}

func TestInspectCommand(t *testing.T) {
	out, err := execute(t, "inspect", "--url", newTestDB(t), "--tables", "posts", "--format", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "## posts")
	assert.Contains(t, out, "user_id → users.id")
}

func TestMissingURL(t *testing.T) {
	_, err := execute(t, "tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "tables", "--url", newTestDB(t), "--log-level", "loud")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger("debug", "json", &buf)
	require.NoError(t, err)
	logger.Debug("hello", "table", "users")
	assert.Contains(t, buf.String(), `"table":"users"`)

	buf.Reset()
	logger, err = newLogger("warn", "text", &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	_, err = newLogger("info", "xml", &buf)
	assert.Error(t, err)
}

// chdir switches the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
