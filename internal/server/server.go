// Package server exposes table metadata and DDL export over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jardiscore/dbschema/internal/depgraph"
	"github.com/jardiscore/dbschema/internal/schema"
)

const shutdownTimeout = 5 * time.Second

// Source is what the handlers read from; a dbschema.Session satisfies it
type Source interface {
	Tables(ctx context.Context) ([]schema.Table, error)
	Inspect(ctx context.Context, tables []string) ([]schema.TableMetadata, error)
	Export(ctx context.Context, tables []string) (string, error)
}

type Server struct {
	source Source
	logger *slog.Logger
	engine *gin.Engine
}

func New(source Source, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		source: source,
		logger: logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger(), cors.Default())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api/v1")
	api.GET("/tables", s.listTables)
	api.GET("/tables/:name", s.getTable)
	api.GET("/export", s.export)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// health handles GET /healthz
func (s *Server) health(c *gin.Context) {
	Success(c, http.StatusOK, gin.H{"status": "ok"}, "")
}

// listTables handles GET /api/v1/tables
func (s *Server) listTables(c *gin.Context) {
	tables, err := s.source.Tables(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list tables", "error", err)
		Fail(c, http.StatusInternalServerError, err, "Failed to list tables")
		return
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	Success(c, http.StatusOK, names, "")
}

// getTable handles GET /api/v1/tables/:name
func (s *Server) getTable(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	tables, err := s.source.Tables(ctx)
	if err != nil {
		s.logger.Error("failed to list tables", "error", err)
		Fail(c, http.StatusInternalServerError, err, "Failed to list tables")
		return
	}
	if !containsTable(tables, name) {
		Fail(c, http.StatusNotFound, nil, fmt.Sprintf("Table %s not found", name))
		return
	}

	metadata, err := s.source.Inspect(ctx, []string{name})
	if err != nil || len(metadata) == 0 {
		s.logger.Error("failed to inspect table", "table", name, "error", err)
		Fail(c, http.StatusInternalServerError, err, fmt.Sprintf("Failed to inspect table %s", name))
		return
	}

	Success(c, http.StatusOK, newTableResponse(metadata[0]), "")
}

// export handles GET /api/v1/export?tables=a,b
func (s *Server) export(c *gin.Context) {
	var tables []string
	for _, part := range strings.Split(c.Query("tables"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			tables = append(tables, part)
		}
	}

	script, err := s.source.Export(c.Request.Context(), tables)
	if err != nil {
		if errors.Is(err, depgraph.ErrCircularDependency) {
			Fail(c, http.StatusConflict, err, "Tables have circular foreign key dependencies")
			return
		}
		s.logger.Error("failed to export tables", "error", err)
		Fail(c, http.StatusInternalServerError, err, "Failed to export tables")
		return
	}

	c.String(http.StatusOK, script)
}

func containsTable(tables []schema.Table, name string) bool {
	for _, t := range tables {
		if t.Name == name {
			return true
		}
	}
	return false
}
