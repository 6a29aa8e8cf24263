// Package exporter assembles a complete DDL script for a set of tables.
package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jardiscore/dbschema/internal/depgraph"
	"github.com/jardiscore/dbschema/internal/dialect"
	"github.com/jardiscore/dbschema/internal/schema"
)

// MetadataReader is the part of a backend reader the exporter needs
type MetadataReader interface {
	Columns(ctx context.Context, table string, fields ...string) ([]schema.Column, error)
	Indexes(ctx context.Context, table string) ([]schema.Index, error)
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}

// Option configures an Exporter
type Option func(*Exporter)

// WithClock replaces time.Now for the header timestamp
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// WithLogger sets the logger progress is reported to
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSchemaName records the source schema in the header
func WithSchemaName(name string) Option {
	return func(e *Exporter) {
		e.schemaName = name
	}
}

// Exporter generates DDL scripts. It never executes them.
type Exporter struct {
	reader     MetadataReader
	dialect    dialect.Dialect
	now        func() time.Time
	logger     *slog.Logger
	schemaName string
}

func New(reader MetadataReader, d dialect.Dialect, opts ...Option) *Exporter {
	e := &Exporter{
		reader:  reader,
		dialect: d,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate returns the script that recreates the given tables: header,
// transaction start, drops in reverse dependency order, creates, indexes
// and foreign keys in dependency order, commit. Sections are separated by
// blank lines.
func (e *Exporter) Generate(ctx context.Context, tables []string) (string, error) {
	tables = dedupe(tables)
	sections := []string{e.header(tables), e.dialect.BeginTransaction()}

	metadata := make(map[string]schema.TableMetadata, len(tables))
	for _, table := range tables {
		meta, err := e.collect(ctx, table)
		if err != nil {
			return "", err
		}
		metadata[table] = meta
	}

	order, err := depgraph.Resolve(dependencies(tables, metadata))
	if err != nil {
		return "", fmt.Errorf("failed to order tables: %w", err)
	}
	e.logger.Debug("resolved table order", "order", order)

	var drops []string
	for i := len(order) - 1; i >= 0; i-- {
		drops = append(drops, e.dialect.DropTableStatement(order[i]))
	}
	sections = appendSection(sections, drops)

	var creates []string
	for _, table := range order {
		meta := metadata[table]
		creates = append(creates, e.dialect.CreateTableStatement(table, meta.Columns, meta.PrimaryKey()))
	}
	sections = appendSection(sections, creates)

	var indexes []string
	for _, table := range order {
		for _, rows := range schema.GroupIndexes(metadata[table].Indexes) {
			if stmt := e.dialect.CreateIndexStatement(table, rows); stmt != "" {
				indexes = append(indexes, stmt)
			}
		}
	}
	sections = appendSection(sections, indexes)

	var fks []string
	for _, table := range order {
		for _, rows := range schema.GroupForeignKeys(metadata[table].ForeignKeys) {
			if stmt := e.dialect.CreateForeignKeyStatement(table, rows); stmt != "" {
				fks = append(fks, stmt)
			}
		}
	}
	sections = appendSection(sections, fks)

	sections = append(sections, e.dialect.CommitTransaction())

	e.logger.Debug("generated script",
		"tables", len(order),
		"indexes", len(indexes),
		"foreign_keys", len(fks),
	)

	return strings.Join(sections, "\n\n") + "\n", nil
}

func (e *Exporter) header(tables []string) string {
	lines := []string{
		"-- Generated at: " + e.now().Format(time.RFC3339),
	}
	if e.schemaName != "" {
		lines = append(lines, "-- Source schema: "+e.schemaName)
	}
	lines = append(lines,
		fmt.Sprintf("-- Tables: %d", len(tables)),
		"-- "+strings.Join(tables, ", "),
	)
	return strings.Join(lines, "\n")
}

func (e *Exporter) collect(ctx context.Context, table string) (schema.TableMetadata, error) {
	e.logger.Debug("reading table metadata", "table", table)

	columns, err := e.reader.Columns(ctx, table)
	if err != nil {
		return schema.TableMetadata{}, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if columns == nil {
		columns = []schema.Column{}
	}

	indexes, err := e.reader.Indexes(ctx, table)
	if err != nil {
		return schema.TableMetadata{}, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}

	fks, err := e.reader.ForeignKeys(ctx, table)
	if err != nil {
		return schema.TableMetadata{}, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}

	return schema.TableMetadata{
		Name:        table,
		Columns:     columns,
		Indexes:     indexes,
		ForeignKeys: fks,
	}, nil
}

// dependencies builds the resolver input from foreign keys whose
// referenced table is part of the export
func dependencies(tables []string, metadata map[string]schema.TableMetadata) map[string][]string {
	deps := make(map[string][]string, len(tables))
	for _, table := range tables {
		deps[table] = nil
	}
	for _, table := range tables {
		for _, fk := range metadata[table].ForeignKeys {
			if _, ok := deps[fk.RefContainer]; ok {
				deps[table] = append(deps[table], fk.RefContainer)
			}
		}
	}
	return deps
}

// appendSection adds statements as one section. Empty sections are left out.
func appendSection(sections, statements []string) []string {
	if len(statements) == 0 {
		return sections
	}
	return append(sections, strings.Join(statements, "\n\n"))
}

func dedupe(tables []string) []string {
	seen := make(map[string]bool, len(tables))
	result := make([]string, 0, len(tables))
	for _, table := range tables {
		if !seen[table] {
			seen[table] = true
			result = append(result, table)
		}
	}
	return result
}
