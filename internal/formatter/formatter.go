// Package formatter renders table metadata for humans.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Formatter writes the metadata of several tables
type Formatter interface {
	Format(tables []schema.TableMetadata) error
}

// New returns the formatter for format, writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText, "":
		return NewTextFormatter(w), nil
	case FormatMarkdown, "md":
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (use text or markdown)", format)
	}
}

// typeString renders a column type with its size, e.g. varchar(255)
func typeString(col schema.Column) string {
	if len(col.EnumValues) > 0 {
		return fmt.Sprintf("%s (%s)", col.Type, strings.Join(col.EnumValues, "|"))
	}
	switch size := col.Size.(type) {
	case schema.Sized:
		return fmt.Sprintf("%s(%d)", col.Type, size.Length)
	case schema.FixedPoint:
		if size.Scale != nil {
			return fmt.Sprintf("%s(%d,%d)", col.Type, size.Precision, *size.Scale)
		}
		return fmt.Sprintf("%s(%d)", col.Type, size.Precision)
	}
	return col.Type
}

// secondaryIndexes drops the primary key index, which the table header
// already shows
func secondaryIndexes(rows []schema.Index) [][]schema.Index {
	var result [][]schema.Index
	for _, group := range schema.GroupIndexes(rows) {
		if group[0].IndexType != schema.IndexPrimary {
			result = append(result, group)
		}
	}
	return result
}

func indexColumns(group []schema.Index) string {
	cols := make([]string, len(group))
	for i, row := range group {
		cols[i] = row.ColumnName
	}
	return strings.Join(cols, ", ")
}

// foreignKeyTarget renders "user_id → users.id" for one constraint
func foreignKeyTarget(group []schema.ForeignKey) string {
	local := make([]string, len(group))
	remote := make([]string, len(group))
	for i, row := range group {
		local[i] = row.ConstraintCol
		remote[i] = row.RefColumn
	}
	if len(group) == 1 {
		return fmt.Sprintf("%s → %s.%s", local[0], group[0].RefContainer, remote[0])
	}
	return fmt.Sprintf("(%s) → %s(%s)", strings.Join(local, ", "), group[0].RefContainer, strings.Join(remote, ", "))
}

func foreignKeyActions(fk schema.ForeignKey) string {
	return fmt.Sprintf("ON DELETE %s, ON UPDATE %s", schema.NormalizeAction(fk.OnDelete), schema.NormalizeAction(fk.OnUpdate))
}
