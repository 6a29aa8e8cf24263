package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// MultiFileFormatter writes one file per table plus an overview into a
// directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the tables to the output directory
func (f *MultiFileFormatter) Format(tables []schema.TableMetadata) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(tables); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, table := range tables {
		if err := f.writeTableFile(table, tables); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(tables []schema.TableMetadata) error {
	ext := f.getFileExtension()
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview"+ext))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	sorted := slices.Clone(tables)
	slices.SortFunc(sorted, func(a, b schema.TableMetadata) int {
		return strings.Compare(a.Name, b.Name)
	})

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", ext)
		_, _ = fmt.Fprintf(file, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(file, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n\n", ext)
	}

	for _, table := range sorted {
		name := table.Name
		if f.OutputFormat == FormatMarkdown {
			name = "- **" + name + "**"
		}
		if targets := referencedTables(table); len(targets) > 0 {
			name += fmt.Sprintf(" (references: %s)", strings.Join(targets, ", "))
		}
		if _, err := fmt.Fprintln(file, name); err != nil {
			return err
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeTableFile(table schema.TableMetadata, all []schema.TableMetadata) error {
	file, err := os.Create(filepath.Join(f.OutputDir, table.Name+f.getFileExtension()))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat != FormatMarkdown {
		return NewTextFormatter(file).formatTable(table)
	}

	if err := NewMarkdownFormatter(file).FormatTable(table); err != nil {
		return err
	}

	incoming := findIncomingReferences(table.Name, all)
	if len(incoming) > 0 {
		_, _ = fmt.Fprintf(file, "### Referenced by\n\n")
		for _, fk := range incoming {
			_, _ = fmt.Fprintf(file, "- %s.%s → %s\n", fk.Container, fk.ConstraintCol, fk.RefColumn)
		}
		_, _ = fmt.Fprintln(file)
	}
	return nil
}

// referencedTables lists the distinct tables a table's foreign keys point to
func referencedTables(table schema.TableMetadata) []string {
	var targets []string
	for _, fk := range table.ForeignKeys {
		if !slices.Contains(targets, fk.RefContainer) {
			targets = append(targets, fk.RefContainer)
		}
	}
	return targets
}

// findIncomingReferences finds all foreign key columns pointing to tableName
func findIncomingReferences(tableName string, tables []schema.TableMetadata) []schema.ForeignKey {
	var incoming []schema.ForeignKey
	for _, table := range tables {
		for _, fk := range table.ForeignKeys {
			if fk.RefContainer == tableName {
				if fk.Container == "" {
					fk.Container = table.Name
				}
				incoming = append(incoming, fk)
			}
		}
	}
	return incoming
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
