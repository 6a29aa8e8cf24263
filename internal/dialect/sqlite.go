package dialect

import (
	"fmt"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// SQLite renders DDL for SQLite. SQLite cannot add a constraint to an
// existing table, so foreign keys are emitted as comments.
type SQLite struct {
	q quoter
}

func NewSQLite() *SQLite {
	return &SQLite{q: quoter{ident: `"`}}
}

func (d *SQLite) Family() schema.Family { return schema.FamilySQLite }

// TypeMapping reduces a type to its storage affinity. Fixed-point types
// keep their precision since SQLite accepts NUMERIC(p,s).
func (d *SQLite) TypeMapping(columnType string, size schema.Size) string {
	t := strings.ToLower(strings.TrimSpace(columnType))
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "int") || t == "bool" || t == "boolean" || strings.HasSuffix(t, "serial") || t == "year":
		return "INTEGER"
	case t == "decimal" || t == "numeric":
		return withPrecision("NUMERIC", size)
	case strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob"),
		t == "enum", t == "set", t == "uuid", t == "json", t == "jsonb", t == "array":
		return "TEXT"
	case t == "date" || t == "time" || t == "timetz" || t == "datetime" || strings.HasPrefix(t, "timestamp"):
		return "TEXT"
	case strings.Contains(t, "blob") || t == "bytea" || t == "binary" || t == "varbinary":
		return "BLOB"
	case strings.Contains(t, "real") || strings.Contains(t, "floa") || strings.Contains(t, "doub"):
		return "REAL"
	default:
		return strings.ToUpper(t)
	}
}

func (d *SQLite) CreateTableStatement(table string, columns []schema.Column, primaryKey []string) string {
	inline := len(primaryKey) == 1

	defs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		typ := d.TypeMapping(col.Type, col.Size)
		def := d.q.Ident(col.Name)
		if typ != "" {
			def += " " + typ
		}

		if inline && col.Name == primaryKey[0] {
			def += " PRIMARY KEY"
			if col.AutoIncrement && typ == "INTEGER" {
				def += " AUTOINCREMENT"
			}
		} else if !col.Nullable {
			def += " NOT NULL"
		}

		if col.Default != nil && !col.AutoIncrement {
			if v := d.q.Default(*col.Default, col.Type); v != "" {
				def += " DEFAULT " + v
			}
		}
		defs = append(defs, def)
	}
	if len(primaryKey) > 1 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", d.q.IdentList(primaryKey)))
	}
	return createTable(d.q, table, defs)
}

// CreateIndexStatement renames internal sqlite_autoindex_* indexes since
// the sqlite_ prefix is reserved.
func (d *SQLite) CreateIndexStatement(table string, index []schema.Index) string {
	if len(index) == 0 || isPrimaryIndex(index) {
		return ""
	}
	rows := sortedIndex(index)
	name := rows[0].Name
	if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		name = table + "_" + strings.Join(indexColumns(rows), "_") + "_unique"
	}
	return createIndex(d.q, table, name, rows)
}

func (d *SQLite) CreateForeignKeyStatement(table string, fk []schema.ForeignKey) string {
	if len(fk) == 0 {
		return ""
	}
	rows := sortedForeignKey(fk)
	local, referenced := foreignKeyColumns(rows)
	first := rows[0]
	return fmt.Sprintf("-- Foreign key %s on %s (%s) references %s (%s) ON DELETE %s ON UPDATE %s; SQLite cannot add it to an existing table",
		first.ConstraintName,
		table,
		strings.Join(local, ", "),
		first.RefContainer,
		strings.Join(referenced, ", "),
		schema.NormalizeAction(first.OnDelete),
		schema.NormalizeAction(first.OnUpdate),
	)
}

func (d *SQLite) DropTableStatement(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.q.Ident(table))
}

func (d *SQLite) BeginTransaction() string  { return "BEGIN TRANSACTION;" }
func (d *SQLite) CommitTransaction() string { return "COMMIT;" }
