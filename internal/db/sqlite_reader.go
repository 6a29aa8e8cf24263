package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

var sqliteFieldKinds = map[string]string{
	"int":               KindInt,
	"integer":           KindInt,
	"tinyint":           KindInt,
	"smallint":          KindInt,
	"mediumint":         KindInt,
	"bigint":            KindInt,
	"unsigned big int":  KindInt,
	"int2":              KindInt,
	"int8":              KindInt,
	"real":              KindFloat,
	"double":            KindFloat,
	"double precision":  KindFloat,
	"float":             KindFloat,
	"numeric":           KindFloat,
	"decimal":           KindFloat,
	"boolean":           KindBool,
	"bool":              KindBool,
	"character":         KindString,
	"char":              KindString,
	"varchar":           KindString,
	"varying character": KindString,
	"nchar":             KindString,
	"native character":  KindString,
	"nvarchar":          KindString,
	"text":              KindString,
	"clob":              KindString,
	"blob":              KindString,
	"date":              KindDate,
	"time":              KindTime,
	"datetime":          KindDatetime,
	"timestamp":         KindDatetime,
}

// SQLiteReader reads metadata from SQLite
type SQLiteReader struct {
	db *sql.DB
}

// NewSQLiteReader creates a reader for the main database of db
func NewSQLiteReader(db *sql.DB) *SQLiteReader {
	return &SQLiteReader{db: db}
}

// Family implements Reader
func (r *SQLiteReader) Family() schema.Family {
	return schema.FamilySQLite
}

// FieldType implements Reader
func (r *SQLiteReader) FieldType(rawTypeName string) string {
	return lookupFieldType(rawTypeName, sqliteFieldKinds)
}

// Tables returns all user tables, nil when there are none
func (r *SQLiteReader) Tables(ctx context.Context) ([]schema.Table, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		t := schema.Table{Type: "BASE TABLE"}
		if err := rows.Scan(&t.Name); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// sqliteColumnRow is one row of pragma_table_info
type sqliteColumnRow struct {
	Name    string
	Type    string
	NotNull int
	Default sql.NullString
	PKOrder int
}

// toColumn converts a pragma row. pkCount is the number of primary key
// columns of the table, autoincrement whether its DDL uses AUTOINCREMENT.
func (row sqliteColumnRow) toColumn(pkCount int, autoincrement bool) schema.Column {
	base, args := splitTypeName(row.Type)

	col := schema.Column{
		Name:    row.Name,
		Type:    base,
		Primary: row.PKOrder > 0,
		Default: nullableString(row.Default),
	}
	col.Nullable = row.NotNull == 0 && !col.Primary

	// AUTOINCREMENT is only legal on a lone INTEGER PRIMARY KEY
	col.AutoIncrement = col.Primary && pkCount == 1 && base == "integer" && autoincrement

	switch {
	case isFixedPoint(base) && len(args) >= 2:
		scale := args[1]
		col.Size = schema.FixedPoint{Precision: args[0], Scale: &scale}
	case isFixedPoint(base) && len(args) == 1:
		col.Size = schema.FixedPoint{Precision: args[0]}
	case len(args) >= 1:
		col.Size = schema.Sized{Length: args[0]}
	}

	return col
}

func (r *SQLiteReader) columnRows(ctx context.Context, table string) ([]sqliteColumnRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sqliteColumnRow
	for rows.Next() {
		var row sqliteColumnRow
		if err := rows.Scan(&row.Name, &row.Type, &row.NotNull, &row.Default, &row.PKOrder); err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// declaresAutoincrement checks the table's DDL for the AUTOINCREMENT keyword
func (r *SQLiteReader) declaresAutoincrement(ctx context.Context, table string) (bool, error) {
	var ddl sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"), nil
}

// Columns returns the table's columns; an unknown table yields an empty slice
func (r *SQLiteReader) Columns(ctx context.Context, table string, fields ...string) ([]schema.Column, error) {
	rows, err := r.columnRows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	autoincrement, err := r.declaresAutoincrement(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition of %s: %w", table, err)
	}

	pkCount := 0
	for _, row := range rows {
		if row.PKOrder > 0 {
			pkCount++
		}
	}

	columns := make([]schema.Column, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, row.toColumn(pkCount, autoincrement))
	}

	return selectColumns(columns, fields), nil
}

// primaryKey returns the primary key column names in key order
func (r *SQLiteReader) primaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := r.columnRows(ctx, table)
	if err != nil {
		return nil, err
	}

	var pkRows []sqliteColumnRow
	for _, row := range rows {
		if row.PKOrder > 0 {
			pkRows = append(pkRows, row)
		}
	}
	sort.Slice(pkRows, func(i, j int) bool { return pkRows[i].PKOrder < pkRows[j].PKOrder })

	pk := make([]string, 0, len(pkRows))
	for _, row := range pkRows {
		pk = append(pk, row.Name)
	}
	return pk, nil
}

// sqliteIndexEntry is one row of pragma_index_list
type sqliteIndexEntry struct {
	Name   string
	Unique int
	Origin string
}

func (e sqliteIndexEntry) indexType() string {
	switch {
	case e.Origin == "pk":
		return schema.IndexPrimary
	case e.Unique == 1:
		return schema.IndexUnique
	default:
		return schema.IndexPlain
	}
}

// Indexes returns the table's index rows, nil when there are none.
// A rowid-alias primary key has no catalog index; it is reported as a
// PRIMARY index so every backend describes its primary key the same way.
func (r *SQLiteReader) Indexes(ctx context.Context, table string) ([]schema.Index, error) {
	entries, err := r.indexList(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].Origin == "pk", entries[j].Origin == "pk"
		if pi != pj {
			return pi
		}
		return entries[i].Name < entries[j].Name
	})

	var indexes []schema.Index
	hasPrimary := false
	for _, entry := range entries {
		if entry.Origin == "pk" {
			hasPrimary = true
		}

		columns, err := r.indexColumns(ctx, entry.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of index %s: %w", entry.Name, err)
		}
		for i, column := range columns {
			indexes = append(indexes, schema.Index{
				Name:       entry.Name,
				ColumnName: column,
				IsUnique:   entry.Unique == 1,
				IndexType:  entry.indexType(),
				Sequence:   i + 1,
			})
		}
	}

	if hasPrimary {
		return indexes, nil
	}

	pk, err := r.primaryKey(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
	}
	var primary []schema.Index
	for i, column := range pk {
		primary = append(primary, schema.Index{
			Name:       "PRIMARY",
			ColumnName: column,
			IsUnique:   true,
			IndexType:  schema.IndexPrimary,
			Sequence:   i + 1,
		})
	}

	return append(primary, indexes...), nil
}

func (r *SQLiteReader) indexList(ctx context.Context, table string) ([]sqliteIndexEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, "unique", origin FROM pragma_index_list(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []sqliteIndexEntry
	for rows.Next() {
		var e sqliteIndexEntry
		if err := rows.Scan(&e.Name, &e.Unique, &e.Origin); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// indexColumns returns the named columns of an index in key order.
// Expression parts have no name and are skipped.
func (r *SQLiteReader) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, index)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name.Valid {
			columns = append(columns, name.String)
		}
	}

	return columns, rows.Err()
}

// sqliteForeignKeyRow is one row of pragma_foreign_key_list
type sqliteForeignKeyRow struct {
	ID       int
	Seq      int
	Table    string
	From     string
	To       sql.NullString
	OnUpdate string
	OnDelete string
}

// ForeignKeys returns the table's foreign key rows, nil when there are none.
// SQLite constraints are unnamed; they are reported as fk_<table>_<id>.
// A reference without column list points at the referenced primary key.
func (r *SQLiteReader) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := r.foreignKeyRows(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}

	var fks []schema.ForeignKey
	refPKs := make(map[string][]string)
	for _, row := range rows {
		refColumn := row.To.String
		if !row.To.Valid || refColumn == "" {
			pk, ok := refPKs[row.Table]
			if !ok {
				pk, err = r.primaryKey(ctx, row.Table)
				if err != nil {
					return nil, fmt.Errorf("failed to read primary key of %s: %w", row.Table, err)
				}
				refPKs[row.Table] = pk
			}
			if row.Seq < len(pk) {
				refColumn = pk[row.Seq]
			}
		}

		fks = append(fks, schema.ForeignKey{
			Container:      table,
			ConstraintName: fmt.Sprintf("fk_%s_%d", table, row.ID),
			ConstraintCol:  row.From,
			RefContainer:   row.Table,
			RefColumn:      refColumn,
			OnUpdate:       schema.NormalizeAction(row.OnUpdate),
			OnDelete:       schema.NormalizeAction(row.OnDelete),
			Sequence:       row.Seq + 1,
		})
	}

	return fks, nil
}

func (r *SQLiteReader) foreignKeyRows(ctx context.Context, table string) ([]sqliteForeignKeyRow, error) {
	query := `
		SELECT id, seq, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	rows, err := r.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sqliteForeignKeyRow
	for rows.Next() {
		var row sqliteForeignKeyRow
		if err := rows.Scan(&row.ID, &row.Seq, &row.Table, &row.From, &row.To, &row.OnUpdate, &row.OnDelete); err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
