package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// MarkdownFormatter formats table metadata as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the tables in markdown format
func (f *MarkdownFormatter) Format(tables []schema.TableMetadata) error {
	if _, err := fmt.Fprintln(f.writer, "# Database Schema"); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range tables {
		if err := f.FormatTable(table); err != nil {
			return err
		}
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.TableMetadata) error {
	if _, err := fmt.Fprintf(f.writer, "## %s\n\n", table.Name); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		constraintStr := f.formatConstraints(col)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, typeString(col), constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, typeString(col))
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if fks := schema.GroupForeignKeys(table.ForeignKeys); len(fks) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, group := range fks {
			_, _ = fmt.Fprintf(f.writer, "- %s (%s)\n", foreignKeyTarget(group), foreignKeyActions(group[0]))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if indexes := secondaryIndexes(table.Indexes); len(indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Indexes")
		_, _ = fmt.Fprintln(f.writer)
		for _, group := range indexes {
			if group[0].IsUnique {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n", group[0].Name, indexColumns(group))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", group[0].Name, indexColumns(group))
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column) string {
	var constraints []string

	if col.Primary {
		constraints = append(constraints, "PK")
	}

	if col.AutoIncrement {
		constraints = append(constraints, "AUTO_INCREMENT")
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.Default != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	return strings.Join(constraints, ", ")
}
