package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient is a read-only connection to an SQLite database file
type SQLiteClient struct {
	db   *sql.DB
	path string
}

// NewSQLiteClient opens an existing database file in read-only mode. A
// missing file is an error rather than a freshly created empty database.
// ":memory:" opens a private in-memory database.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("database file %s: %w", path, err)
		}
		dsn = sqliteReadOnlyDSN(path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db, path: path}, nil
}

// sqliteReadOnlyDSN builds a URI filename that opens path read-only
func sqliteReadOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Opaque: path}
	u.RawQuery = url.Values{"mode": {"ro"}}.Encode()
	return u.String()
}

// DriverName reports the driver identifier used for reader selection
func (c *SQLiteClient) DriverName() string {
	return "sqlite"
}

// Path returns the database file the client was opened on
func (c *SQLiteClient) Path() string {
	return c.path
}

func (c *SQLiteClient) Close(_ context.Context) error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
