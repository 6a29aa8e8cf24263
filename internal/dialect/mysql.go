package dialect

import (
	"fmt"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// MySQL renders DDL for MySQL and MariaDB
type MySQL struct {
	q quoter
}

func NewMySQL() *MySQL {
	return &MySQL{q: quoter{ident: "`", escapeBackslash: true}}
}

func (d *MySQL) Family() schema.Family { return schema.FamilyMySQL }

func (d *MySQL) TypeMapping(columnType string, size schema.Size) string {
	t := strings.ToLower(strings.TrimSpace(columnType))
	switch t {
	case "tinyint", "smallint", "mediumint", "bigint", "year":
		return strings.ToUpper(t)
	case "int", "integer", "int4":
		return "INT"
	case "int2", "smallserial":
		return "SMALLINT"
	case "serial":
		return "INT"
	case "int8", "bigserial":
		return "BIGINT"
	case "decimal", "numeric":
		return withPrecision("DECIMAL", size)
	case "float", "real", "float4":
		return "FLOAT"
	case "double", "double precision", "float8":
		return "DOUBLE"
	case "bool", "boolean":
		return "TINYINT(1)"
	case "varchar", "character varying":
		if _, ok := size.(schema.Sized); ok {
			return withLength("VARCHAR", size)
		}
		return "VARCHAR(255)"
	case "char", "character", "binary", "varbinary", "bit":
		return withLength(strings.ToUpper(t), size)
	case "text", "tinytext", "mediumtext", "longtext",
		"blob", "tinyblob", "mediumblob", "longblob",
		"date", "time", "datetime", "timestamp", "json", "enum", "set":
		return strings.ToUpper(t)
	case "timestamptz":
		return "TIMESTAMP"
	case "timetz":
		return "TIME"
	case "bytea":
		return "LONGBLOB"
	case "jsonb", "array":
		return "JSON"
	case "uuid":
		return "CHAR(36)"
	default:
		return strings.ToUpper(t)
	}
}

func (d *MySQL) columnDefinition(col schema.Column) string {
	def := d.q.Ident(col.Name) + " " + d.columnType(col)
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil && !col.AutoIncrement {
		if v := d.q.Default(*col.Default, col.Type); v != "" {
			def += " DEFAULT " + v
		}
	}
	if col.AutoIncrement {
		def += " AUTO_INCREMENT"
	}
	return def
}

func (d *MySQL) columnType(col schema.Column) string {
	switch {
	case col.Type == "enum" && len(col.EnumValues) > 0:
		return "ENUM(" + d.q.LiteralList(col.EnumValues, ",") + ")"
	case col.Type == "set" && len(col.EnumValues) > 0:
		return "SET(" + d.q.LiteralList(col.EnumValues, ",") + ")"
	default:
		return d.TypeMapping(col.Type, col.Size)
	}
}

func (d *MySQL) CreateTableStatement(table string, columns []schema.Column, primaryKey []string) string {
	defs := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		defs = append(defs, d.columnDefinition(col))
	}
	if len(primaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", d.q.IdentList(primaryKey)))
	}
	return createTable(d.q, table, defs)
}

func (d *MySQL) CreateIndexStatement(table string, index []schema.Index) string {
	if len(index) == 0 || isPrimaryIndex(index) {
		return ""
	}
	rows := sortedIndex(index)
	return createIndex(d.q, table, rows[0].Name, rows)
}

func (d *MySQL) CreateForeignKeyStatement(table string, fk []schema.ForeignKey) string {
	if len(fk) == 0 {
		return ""
	}
	return addForeignKey(d.q, table, sortedForeignKey(fk))
}

func (d *MySQL) DropTableStatement(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.q.Ident(table))
}

func (d *MySQL) BeginTransaction() string  { return "START TRANSACTION;" }
func (d *MySQL) CommitTransaction() string { return "COMMIT;" }
