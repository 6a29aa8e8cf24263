package dialect

import (
	"fmt"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// Postgres renders DDL for PostgreSQL
type Postgres struct {
	q quoter
}

func NewPostgres() *Postgres {
	return &Postgres{q: quoter{ident: `"`}}
}

func (d *Postgres) Family() schema.Family { return schema.FamilyPostgres }

func (d *Postgres) TypeMapping(columnType string, size schema.Size) string {
	t := strings.ToLower(strings.TrimSpace(columnType))
	switch t {
	case "tinyint", "smallint", "mediumint", "int", "integer", "int2", "int4",
		"smallserial", "serial", "year":
		return "INTEGER"
	case "bigint", "int8", "bigserial":
		return "BIGINT"
	case "decimal", "numeric":
		return withPrecision("NUMERIC", size)
	case "float", "real", "float4":
		return "REAL"
	case "double", "double precision", "float8":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "varchar", "character varying":
		return withLength("VARCHAR", size)
	case "char", "character":
		return withLength("CHAR", size)
	case "bit":
		return withLength("BIT", size)
	case "text", "tinytext", "mediumtext", "longtext", "set":
		return "TEXT"
	case "datetime", "timestamp":
		return "TIMESTAMP"
	case "timestamptz":
		return "TIMESTAMPTZ"
	case "date":
		return "DATE"
	case "time":
		return "TIME"
	case "timetz":
		return "TIMETZ"
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "bytea":
		return "BYTEA"
	case "json", "jsonb", "uuid":
		return strings.ToUpper(t)
	case "enum":
		return "VARCHAR(255)"
	case "array":
		return "TEXT[]"
	default:
		return strings.ToUpper(t)
	}
}

func (d *Postgres) columnType(col schema.Column) string {
	if col.AutoIncrement {
		switch strings.ToLower(col.Type) {
		case "bigint", "int8", "bigserial":
			return "BIGSERIAL"
		default:
			return "SERIAL"
		}
	}
	return d.TypeMapping(col.Type, col.Size)
}

func (d *Postgres) columnDefinition(col schema.Column) string {
	def := d.q.Ident(col.Name) + " " + d.columnType(col)
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil && !col.AutoIncrement {
		if v := d.q.Default(*col.Default, col.Type); v != "" {
			def += " DEFAULT " + v
		}
	}
	if col.Type == "enum" && len(col.EnumValues) > 0 {
		def += fmt.Sprintf(" CHECK (%s IN (%s))", d.q.Ident(col.Name), d.q.LiteralList(col.EnumValues, ", "))
	}
	return def
}

func (d *Postgres) CreateTableStatement(table string, columns []schema.Column, primaryKey []string) string {
	defs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		defs = append(defs, d.columnDefinition(col))
	}
	if len(primaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", d.q.IdentList(primaryKey)))
	}
	return createTable(d.q, table, defs)
}

func (d *Postgres) CreateIndexStatement(table string, index []schema.Index) string {
	if len(index) == 0 || isPrimaryIndex(index) {
		return ""
	}
	rows := sortedIndex(index)
	return createIndex(d.q, table, rows[0].Name, rows)
}

func (d *Postgres) CreateForeignKeyStatement(table string, fk []schema.ForeignKey) string {
	if len(fk) == 0 {
		return ""
	}
	return addForeignKey(d.q, table, sortedForeignKey(fk))
}

func (d *Postgres) DropTableStatement(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", d.q.Ident(table))
}

func (d *Postgres) BeginTransaction() string  { return "BEGIN;" }
func (d *Postgres) CommitTransaction() string { return "COMMIT;" }
