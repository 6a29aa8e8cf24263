package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jardiscore/dbschema"
	"github.com/jardiscore/dbschema/internal/config"
	"github.com/jardiscore/dbschema/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"url":        "database.url",
	"schema":     "database.schema",
	"tables":     "export.tables",
	"exclude":    "export.exclude",
	"output":     "export.output",
	"dialect":    "export.dialect",
	"format":     "inspect.format",
	"output-dir": "inspect.output_dir",
	"addr":       "server.addr",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// app carries state shared by the subcommands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "dbschema",
		Short: "Read database schemas and export them as DDL",
		Long: `dbschema reads table metadata from PostgreSQL, MySQL, MariaDB or SQLite and
generates a DDL script that recreates the selected tables in dependency order.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: ./dbschema.yaml)")
	rootCmd.PersistentFlags().String("url", "", "Database URL (postgres://, mysql://, mariadb://, sqlite://)")
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Schema (PostgreSQL) or database (MySQL) to read")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(a.exportCmd(), a.inspectCmd(), a.tablesCmd(), a.serveCmd())
	return rootCmd
}

// setup binds the running command's flags, loads configuration and builds
// the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return err
}

func newLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be 'text' or 'json')", format)
	}
}

func (a *app) connect(ctx context.Context) (*dbschema.Session, error) {
	if a.cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (use --url or %s_DATABASE_URL)", config.EnvPrefix)
	}

	return dbschema.Connect(ctx, a.cfg.Database.URL, &dbschema.Options{
		Tables:        a.cfg.Export.Tables,
		ExcludeTables: a.cfg.Export.Exclude,
		SchemaName:    a.cfg.Database.Schema,
		Dialect:       a.cfg.Export.Dialect,
		Logger:        a.logger,
	})
}

func (a *app) closeSession(ctx context.Context, session *dbschema.Session) {
	if err := session.Close(ctx); err != nil {
		a.logger.Warn("failed to close database connection", "error", err)
	}
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a DDL script for the selected tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer a.closeSession(ctx, session)

			script, err := session.Export(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to export schema: %w", err)
			}

			return a.writeOutput(cmd, a.cfg.Export.Output, script)
		},
	}

	cmd.Flags().StringSliceP("tables", "t", nil, "Specific tables (comma-separated, default: all)")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Tables to leave out (comma-separated)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("dialect", "", "Target dialect: mysql, postgres or sqlite (default: source)")
	return cmd
}

func (a *app) writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	a.logger.Info("script written", "path", path)
	return nil
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the selected tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer a.closeSession(ctx, session)

			tables, err := session.Inspect(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to inspect schema: %w", err)
			}

			return dbschema.FormatTables(tables, &dbschema.OutputOptions{
				Writer:    cmd.OutOrStdout(),
				OutputDir: a.cfg.Inspect.OutputDir,
				Format:    a.cfg.Inspect.Format,
			})
		},
	}

	cmd.Flags().StringSliceP("tables", "t", nil, "Specific tables (comma-separated, default: all)")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Tables to leave out (comma-separated)")
	cmd.Flags().StringP("format", "f", "text", "Output format: text or markdown")
	cmd.Flags().StringP("output-dir", "d", "", "Write one file per table into this directory")
	return cmd
}

func (a *app) tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer a.closeSession(ctx, session)

			tables, err := session.Tables(ctx)
			if err != nil {
				return err
			}
			for _, t := range tables {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceP("exclude", "x", nil, "Tables to leave out (comma-separated)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve table metadata and DDL export over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			session, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer a.closeSession(context.Background(), session)

			gin.SetMode(a.cfg.Server.Mode)
			return server.New(session, a.logger).Run(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().StringSliceP("exclude", "x", nil, "Tables to hide (comma-separated)")
	cmd.Flags().String("dialect", "", "Target dialect for /api/v1/export (default: source)")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
