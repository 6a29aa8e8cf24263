// Package dialect renders the canonical schema model as DDL for one
// database family.
package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// Dialect translates canonical metadata into statements of one family.
// Every statement it returns is terminated with a semicolon.
type Dialect interface {
	Family() schema.Family

	// TypeMapping renders a canonical column type with its size.
	// Unknown types pass through uppercased.
	TypeMapping(columnType string, size schema.Size) string

	CreateTableStatement(table string, columns []schema.Column, primaryKey []string) string

	// CreateIndexStatement renders the rows of one index, or "" for the
	// primary key index which CreateTableStatement already covers
	CreateIndexStatement(table string, index []schema.Index) string

	// CreateForeignKeyStatement renders the rows of one constraint
	CreateForeignKeyStatement(table string, fk []schema.ForeignKey) string

	DropTableStatement(table string) string
	BeginTransaction() string
	CommitTransaction() string
}

// For returns the translator for a family
func For(family schema.Family) (Dialect, error) {
	switch family {
	case schema.FamilyMySQL:
		return NewMySQL(), nil
	case schema.FamilyPostgres:
		return NewPostgres(), nil
	case schema.FamilySQLite:
		return NewSQLite(), nil
	default:
		return nil, &schema.UnsupportedDriverError{Driver: family.String(), Supported: schema.SupportedDrivers()}
	}
}

// ForDriver resolves a driver identifier and returns its translator
func ForDriver(driver string) (Dialect, error) {
	family, err := schema.ParseFamily(driver)
	if err != nil {
		return nil, err
	}
	return For(family)
}

// sortedIndex returns the rows of an index ordered by Sequence
func sortedIndex(rows []schema.Index) []schema.Index {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b schema.Index) int {
		return a.Sequence - b.Sequence
	})
	return sorted
}

// sortedForeignKey returns the rows of a constraint ordered by Sequence
func sortedForeignKey(rows []schema.ForeignKey) []schema.ForeignKey {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b schema.ForeignKey) int {
		return a.Sequence - b.Sequence
	})
	return sorted
}

func isPrimaryIndex(rows []schema.Index) bool {
	return len(rows) > 0 && rows[0].IndexType == schema.IndexPrimary
}

func indexColumns(rows []schema.Index) []string {
	cols := make([]string, len(rows))
	for i, row := range rows {
		cols[i] = row.ColumnName
	}
	return cols
}

func foreignKeyColumns(rows []schema.ForeignKey) (local, referenced []string) {
	for _, row := range rows {
		local = append(local, row.ConstraintCol)
		referenced = append(referenced, row.RefColumn)
	}
	return local, referenced
}

// createIndex renders CREATE [UNIQUE] INDEX for dialects that share the
// standard syntax
func createIndex(q quoter, table, name string, rows []schema.Index) string {
	unique := ""
	if rows[0].IsUnique || rows[0].IndexType == schema.IndexUnique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
		unique, q.Ident(name), q.Ident(table), q.IdentList(indexColumns(rows)))
}

// addForeignKey renders ALTER TABLE ... ADD CONSTRAINT ... FOREIGN KEY
func addForeignKey(q quoter, table string, rows []schema.ForeignKey) string {
	local, referenced := foreignKeyColumns(rows)
	first := rows[0]
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s;",
		q.Ident(table),
		q.Ident(first.ConstraintName),
		q.IdentList(local),
		q.Ident(first.RefContainer),
		q.IdentList(referenced),
		schema.NormalizeAction(first.OnDelete),
		schema.NormalizeAction(first.OnUpdate),
	)
}

// createTable assembles a CREATE TABLE statement from rendered column
// definitions and an optional trailing clause
func createTable(q quoter, table string, definitions []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(q.Ident(table))
	b.WriteString(" (\n")
	for i, def := range definitions {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(definitions)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String()
}

// withLength renders name(length) when the size carries a length
func withLength(name string, size schema.Size) string {
	if s, ok := size.(schema.Sized); ok && s.Length > 0 {
		return fmt.Sprintf("%s(%d)", name, s.Length)
	}
	return name
}

// withPrecision renders name(p,s) or name(p) for fixed-point sizes
func withPrecision(name string, size schema.Size) string {
	fp, ok := size.(schema.FixedPoint)
	if !ok {
		return name
	}
	if fp.Scale != nil {
		return fmt.Sprintf("%s(%d,%d)", name, fp.Precision, *fp.Scale)
	}
	return fmt.Sprintf("%s(%d)", name, fp.Precision)
}
