package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// mysqlSchemaExpr falls back to the connection's current database
const mysqlSchemaExpr = "COALESCE(NULLIF(?, ''), DATABASE())"

var mysqlFieldKinds = map[string]string{
	"tinyint":    KindInt,
	"smallint":   KindInt,
	"mediumint":  KindInt,
	"int":        KindInt,
	"integer":    KindInt,
	"bigint":     KindInt,
	"year":       KindInt,
	"bit":        KindInt,
	"float":      KindFloat,
	"double":     KindFloat,
	"real":       KindFloat,
	"decimal":    KindFloat,
	"numeric":    KindFloat,
	"bool":       KindBool,
	"boolean":    KindBool,
	"char":       KindString,
	"varchar":    KindString,
	"tinytext":   KindString,
	"text":       KindString,
	"mediumtext": KindString,
	"longtext":   KindString,
	"enum":       KindString,
	"json":       KindString,
	"binary":     KindString,
	"varbinary":  KindString,
	"blob":       KindString,
	"date":       KindDate,
	"time":       KindTime,
	"datetime":   KindDatetime,
	"timestamp":  KindDatetime,
	"set":        KindArray,
}

// MySQLReader reads metadata from MySQL and MariaDB
type MySQLReader struct {
	db         *sql.DB
	schemaName string
}

// NewMySQLReader creates a reader for the given database. An empty
// schemaName reads the connection's current database.
func NewMySQLReader(db *sql.DB, schemaName string) *MySQLReader {
	return &MySQLReader{
		db:         db,
		schemaName: schemaName,
	}
}

// Family implements Reader
func (r *MySQLReader) Family() schema.Family {
	return schema.FamilyMySQL
}

// FieldType implements Reader
func (r *MySQLReader) FieldType(rawTypeName string) string {
	return lookupFieldType(rawTypeName, mysqlFieldKinds)
}

// Tables returns all base tables, nil when there are none
func (r *MySQLReader) Tables(ctx context.Context) ([]schema.Table, error) {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = ` + mysqlSchemaExpr + ` AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var t schema.Table
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// mysqlColumnRow is one row of information_schema.columns
type mysqlColumnRow struct {
	Name       string
	DataType   string
	ColumnType string
	CharLength sql.NullString
	Precision  sql.NullString
	Scale      sql.NullString
	Nullable   sql.NullString
	Default    sql.NullString
	Key        sql.NullString
	Extra      sql.NullString
}

func (row mysqlColumnRow) toColumn() schema.Column {
	col := schema.Column{
		Name:          row.Name,
		Type:          strings.ToLower(row.DataType),
		Primary:       strings.EqualFold(row.Key.String, "PRI"),
		AutoIncrement: strings.Contains(strings.ToLower(row.Extra.String), "auto_increment"),
		Default:       nullableString(row.Default),
	}

	// A primary key column is never null, whatever the catalog says
	col.Nullable = toBool(row.Nullable) && !col.Primary

	// MariaDB reports a NULL default as the literal NULL
	if col.Default != nil && *col.Default == "NULL" {
		col.Default = nil
	}

	switch {
	case isFixedPoint(col.Type):
		col.Size = schema.NewSize(nil, nullableInt(row.Precision), nullableInt(row.Scale))
	case col.Type == "enum" || col.Type == "set":
		col.Size = nil
	default:
		col.Size = schema.NewSize(nullableInt(row.CharLength), nil, nil)
	}

	if col.Type == "enum" {
		col.EnumValues = parseEnumValues(row.ColumnType)
	}

	return col
}

// Columns returns the table's columns; an unknown table yields an empty slice
func (r *MySQLReader) Columns(ctx context.Context, table string, fields ...string) ([]schema.Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			column_type,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			column_key,
			extra
		FROM information_schema.columns
		WHERE table_schema = ` + mysqlSchemaExpr + ` AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	columns := []schema.Column{}
	for rows.Next() {
		var row mysqlColumnRow
		if err := rows.Scan(
			&row.Name, &row.DataType, &row.ColumnType,
			&row.CharLength, &row.Precision, &row.Scale,
			&row.Nullable, &row.Default, &row.Key, &row.Extra,
		); err != nil {
			return nil, err
		}
		columns = append(columns, row.toColumn())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return selectColumns(columns, fields), nil
}

// mysqlIndexRow is one row of information_schema.statistics
type mysqlIndexRow struct {
	Name      string
	Column    sql.NullString
	NonUnique sql.NullString
	Sequence  int
}

func (row mysqlIndexRow) toIndex() schema.Index {
	idx := schema.Index{
		Name:       row.Name,
		ColumnName: row.Column.String,
		IsUnique:   !toBool(row.NonUnique),
		Sequence:   row.Sequence,
	}

	switch {
	case row.Name == "PRIMARY":
		idx.IndexType = schema.IndexPrimary
	case idx.IsUnique:
		idx.IndexType = schema.IndexUnique
	default:
		idx.IndexType = schema.IndexPlain
	}
	return idx
}

// Indexes returns the table's index rows, nil when there are none
func (r *MySQLReader) Indexes(ctx context.Context, table string) ([]schema.Index, error) {
	query := `
		SELECT index_name, column_name, non_unique, seq_in_index
		FROM information_schema.statistics
		WHERE table_schema = ` + mysqlSchemaExpr + ` AND table_name = ?
		ORDER BY index_name = 'PRIMARY' DESC, index_name, seq_in_index
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var row mysqlIndexRow
		if err := rows.Scan(&row.Name, &row.Column, &row.NonUnique, &row.Sequence); err != nil {
			return nil, err
		}

		// Functional index parts have no column
		if !row.Column.Valid {
			continue
		}
		indexes = append(indexes, row.toIndex())
	}

	return indexes, rows.Err()
}

// ForeignKeys returns the table's foreign key rows, nil when there are none
func (r *MySQLReader) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule,
			kcu.ordinal_position
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
			AND rc.table_name = kcu.table_name
		WHERE kcu.table_schema = ` + mysqlSchemaExpr + `
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		fk := schema.ForeignKey{Container: table}
		var onUpdate, onDelete string
		if err := rows.Scan(
			&fk.ConstraintName, &fk.ConstraintCol,
			&fk.RefContainer, &fk.RefColumn,
			&onUpdate, &onDelete, &fk.Sequence,
		); err != nil {
			return nil, err
		}
		fk.OnUpdate = schema.NormalizeAction(onUpdate)
		fk.OnDelete = schema.NormalizeAction(onDelete)
		fks = append(fks, fk)
	}

	return fks, rows.Err()
}
