package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// TextFormatter formats table metadata as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the tables in compact text format
func (f *TextFormatter) Format(tables []schema.TableMetadata) error {
	for i, table := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(table); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table schema.TableMetadata) error {
	// Table header with primary key
	pkStr := ""
	if pk := table.PrimaryKey(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	if _, err := fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr); err != nil {
		return err
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	if fks := schema.GroupForeignKeys(table.ForeignKeys); len(fks) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  FOREIGN KEYS:")
		for _, group := range fks {
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)\n", foreignKeyTarget(group), foreignKeyActions(group[0]))
		}
	}

	if indexes := secondaryIndexes(table.Indexes); len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, group := range indexes {
			unique := ""
			if group[0].IsUnique {
				unique = " UNIQUE"
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s\n", group[0].Name, indexColumns(group), unique)
		}
	}

	return nil
}

func (f *TextFormatter) formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":", typeString(col)}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	return strings.Join(parts, " ")
}
