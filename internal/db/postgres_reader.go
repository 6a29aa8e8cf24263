package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jardiscore/dbschema/internal/schema"
)

// pgSchemaExpr falls back to the connection's current schema
const pgSchemaExpr = "COALESCE(NULLIF($1, ''), current_schema())"

var postgresFieldKinds = map[string]string{
	"smallint":                    KindInt,
	"integer":                     KindInt,
	"int":                         KindInt,
	"int2":                        KindInt,
	"int4":                        KindInt,
	"int8":                        KindInt,
	"bigint":                      KindInt,
	"smallserial":                 KindInt,
	"serial":                      KindInt,
	"bigserial":                   KindInt,
	"real":                        KindFloat,
	"float":                       KindFloat,
	"float4":                      KindFloat,
	"float8":                      KindFloat,
	"double":                      KindFloat,
	"double precision":            KindFloat,
	"numeric":                     KindFloat,
	"decimal":                     KindFloat,
	"money":                       KindFloat,
	"bool":                        KindBool,
	"boolean":                     KindBool,
	"char":                        KindString,
	"character":                   KindString,
	"bpchar":                      KindString,
	"varchar":                     KindString,
	"character varying":           KindString,
	"text":                        KindString,
	"citext":                      KindString,
	"uuid":                        KindString,
	"json":                        KindString,
	"jsonb":                       KindString,
	"xml":                         KindString,
	"bytea":                       KindString,
	"enum":                        KindString,
	"date":                        KindDate,
	"time":                        KindTime,
	"timetz":                      KindTime,
	"time without time zone":      KindTime,
	"time with time zone":         KindTime,
	"timestamp":                   KindDatetime,
	"timestamptz":                 KindDatetime,
	"timestamp without time zone": KindDatetime,
	"timestamp with time zone":    KindDatetime,
	"array":                       KindArray,
}

// PgQuerier is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type PgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresReader reads metadata from PostgreSQL
type PostgresReader struct {
	conn   PgQuerier
	schema string
}

// NewPostgresReader creates a reader for the given schema. An empty
// schemaName reads the connection's current schema.
func NewPostgresReader(conn PgQuerier, schemaName string) *PostgresReader {
	return &PostgresReader{
		conn:   conn,
		schema: schemaName,
	}
}

// Family implements Reader
func (r *PostgresReader) Family() schema.Family {
	return schema.FamilyPostgres
}

// FieldType implements Reader. Internal array names such as "_int4" are
// recognized as arrays.
func (r *PostgresReader) FieldType(rawTypeName string) string {
	if strings.HasPrefix(strings.TrimSpace(rawTypeName), "_") {
		return KindArray
	}
	return lookupFieldType(rawTypeName, postgresFieldKinds)
}

// Tables returns all base tables, nil when there are none
func (r *PostgresReader) Tables(ctx context.Context) ([]schema.Table, error) {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = ` + pgSchemaExpr + ` AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.conn.Query(ctx, query, r.schema)
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

// normalizePostgresType folds the SQL-standard names of information_schema
// into the canonical short tokens
func normalizePostgresType(dataType, udtName string) string {
	switch dataType {
	case "character varying":
		return "varchar"
	case "character":
		return "char"
	case "integer":
		return "int"
	case "numeric":
		return "decimal"
	case "double precision":
		return "double"
	case "real":
		return "float"
	case "timestamp without time zone":
		return "timestamp"
	case "timestamp with time zone":
		return "timestamptz"
	case "time without time zone":
		return "time"
	case "time with time zone":
		return "timetz"
	case "ARRAY":
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return strings.ToLower(dataType)
	}
}

// pgColumnRow is one row of information_schema.columns
type pgColumnRow struct {
	Name       string
	DataType   string
	UDTName    string
	CharLength *int
	Precision  *int
	Scale      *int
	Nullable   string
	Default    *string
	Identity   string
	Primary    bool
}

func (row pgColumnRow) toColumn() schema.Column {
	col := schema.Column{
		Name:    row.Name,
		Type:    normalizePostgresType(row.DataType, row.UDTName),
		Primary: row.Primary,
		Default: row.Default,
	}

	col.Nullable = toBool(row.Nullable) && !col.Primary

	// serial columns and identity columns
	if toBool(row.Identity) || (row.Default != nil && strings.HasPrefix(*row.Default, "nextval(")) {
		col.AutoIncrement = true
		col.Default = nil
	}

	if isFixedPoint(col.Type) {
		col.Size = schema.NewSize(nil, row.Precision, row.Scale)
	} else {
		col.Size = schema.NewSize(row.CharLength, nil, nil)
	}

	return col
}

// Columns returns the table's columns; an unknown table yields an empty slice.
// Columns of enum types get Type "enum" and their labels in EnumValues.
func (r *PostgresReader) Columns(ctx context.Context, table string, fields ...string) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.character_maximum_length::int,
			c.numeric_precision::int,
			c.numeric_scale::int,
			c.is_nullable::text,
			c.column_default::text,
			c.is_identity::text,
			EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND kcu.column_name = c.column_name
			) AS is_primary
		FROM information_schema.columns c
		WHERE c.table_schema = ` + pgSchemaExpr + ` AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := r.conn.Query(ctx, query, r.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var rawRows []pgColumnRow
	var userTypes []string
	for rows.Next() {
		var row pgColumnRow
		if err := rows.Scan(
			&row.Name, &row.DataType, &row.UDTName,
			&row.CharLength, &row.Precision, &row.Scale,
			&row.Nullable, &row.Default, &row.Identity, &row.Primary,
		); err != nil {
			return nil, err
		}
		if row.DataType == "USER-DEFINED" {
			userTypes = append(userTypes, row.UDTName)
		}
		rawRows = append(rawRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var enumValues map[string][]string
	if len(userTypes) > 0 {
		enumValues, err = r.enumValuesMap(ctx, userTypes)
		if err != nil {
			return nil, fmt.Errorf("failed to read enum values: %w", err)
		}
	}

	columns := make([]schema.Column, 0, len(rawRows))
	for _, row := range rawRows {
		col := row.toColumn()
		if values, ok := enumValues[row.UDTName]; ok && row.DataType == "USER-DEFINED" {
			col.Type = "enum"
			col.EnumValues = values
		}
		columns = append(columns, col)
	}

	return selectColumns(columns, fields), nil
}

// enumValuesMap looks up the ordered labels of the given enum types
func (r *PostgresReader) enumValuesMap(ctx context.Context, typeNames []string) (map[string][]string, error) {
	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = ` + pgSchemaExpr + ` AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := r.conn.Query(ctx, query, r.schema, typeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var typName, label string
		if err := rows.Scan(&typName, &label); err != nil {
			return nil, err
		}
		result[typName] = append(result[typName], label)
	}

	return result, rows.Err()
}

// pgIndexRow is one (index, column) row from pg_index
type pgIndexRow struct {
	Name      string
	Column    string
	IsUnique  bool
	IsPrimary bool
	Sequence  int
}

func (row pgIndexRow) toIndex() schema.Index {
	idx := schema.Index{
		Name:       row.Name,
		ColumnName: row.Column,
		IsUnique:   row.IsUnique || row.IsPrimary,
		Sequence:   row.Sequence,
	}

	switch {
	case row.IsPrimary:
		idx.IndexType = schema.IndexPrimary
	case row.IsUnique:
		idx.IndexType = schema.IndexUnique
	default:
		idx.IndexType = schema.IndexPlain
	}
	return idx
}

// Indexes returns the table's index rows, nil when there are none.
// Expression index parts and INCLUDE columns of covering indexes are
// skipped.
func (r *PostgresReader) Indexes(ctx context.Context, table string) ([]schema.Index, error) {
	query := `
		SELECT
			i.relname,
			a.attname,
			ix.indisunique,
			ix.indisprimary,
			k.ord::int
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = ` + pgSchemaExpr + `
			AND t.relname = $2
			AND t.relkind IN ('r', 'p')
			AND k.ord <= ix.indnkeyatts
		ORDER BY ix.indisprimary DESC, i.relname, k.ord
	`

	rows, err := r.conn.Query(ctx, query, r.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var row pgIndexRow
		if err := rows.Scan(&row.Name, &row.Column, &row.IsUnique, &row.IsPrimary, &row.Sequence); err != nil {
			return nil, err
		}
		indexes = append(indexes, row.toIndex())
	}

	return indexes, rows.Err()
}

// ForeignKeys returns the table's foreign key rows, nil when there are none
func (r *PostgresReader) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	query := `
		SELECT
			c.conname,
			a.attname,
			rt.relname,
			ra.attname,
			c.confupdtype::text,
			c.confdeltype::text,
			k.ord::int
		FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class rt ON rt.oid = c.confrelid
		CROSS JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(col, refcol, ord)
		JOIN pg_attribute a ON a.attrelid = c.conrelid AND a.attnum = k.col
		JOIN pg_attribute ra ON ra.attrelid = c.confrelid AND ra.attnum = k.refcol
		WHERE c.contype = 'f'
			AND n.nspname = ` + pgSchemaExpr + `
			AND t.relname = $2
		ORDER BY c.conname, k.ord
	`

	rows, err := r.conn.Query(ctx, query, r.schema, table)
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
