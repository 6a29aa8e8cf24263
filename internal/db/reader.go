package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jardiscore/dbschema/internal/schema"
)

// Reader translates a backend's metadata catalog into the canonical model.
//
// Absent results follow one rule per operation: Tables, Indexes and
// ForeignKeys return nil when there is nothing to report (including an
// unknown table), while Columns returns an empty, non-nil slice for an
// unknown table. Callers should treat both as "no such table".
type Reader interface {
	Family() schema.Family

	// Tables returns the base tables of the default schema, alphabetically
	Tables(ctx context.Context) ([]schema.Table, error)

	// Columns returns all columns in catalog order, or exactly the given
	// fields in the given order when fields is non-empty
	Columns(ctx context.Context, table string, fields ...string) ([]schema.Column, error)

	// Indexes returns one row per (index, column) pair
	Indexes(ctx context.Context, table string) ([]schema.Index, error)

	// ForeignKeys returns one row per (constraint, column) pair
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)

	// FieldType classifies a raw type name into one of the Kind* values,
	// or "" when it is not recognized
	FieldType(rawTypeName string) string
}

// ReaderOption configures NewReader
type ReaderOption func(*readerOptions)

type readerOptions struct {
	schemaName string
}

// WithSchema selects the schema (Postgres) or database (MySQL) to read.
// Empty means the connection's current one. SQLite ignores it.
func WithSchema(name string) ReaderOption {
	return func(o *readerOptions) {
		o.schemaName = name
	}
}

type sqlDBProvider interface {
	GetDB() *sql.DB
}

type pgConnProvider interface {
	GetConnection() *pgx.Conn
}

// NewReader selects the reader matching the client's driver identifier.
// The caller owns the result and is expected to reuse it for the session.
func NewReader(client Client, opts ...ReaderOption) (Reader, error) {
	o := &readerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	family, err := schema.ParseFamily(client.DriverName())
	if err != nil {
		return nil, err
	}

	switch family {
	case schema.FamilyMySQL:
		p, ok := client.(sqlDBProvider)
		if !ok {
			return nil, fmt.Errorf("%s client does not expose a *sql.DB", client.DriverName())
		}
		return NewMySQLReader(p.GetDB(), o.schemaName), nil
	case schema.FamilyPostgres:
		p, ok := client.(pgConnProvider)
		if !ok {
			return nil, fmt.Errorf("%s client does not expose a *pgx.Conn", client.DriverName())
		}
		return NewPostgresReader(p.GetConnection(), o.schemaName), nil
	default:
		p, ok := client.(sqlDBProvider)
		if !ok {
			return nil, fmt.Errorf("%s client does not expose a *sql.DB", client.DriverName())
		}
		return NewSQLiteReader(p.GetDB()), nil
	}
}
