package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// applicationName tags our sessions in pg_stat_activity
const applicationName = "dbschema"

// PostgresClient holds a single connection to PostgreSQL. Catalog reads are
// sequential, so no pool is needed.
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects using a postgres:// URL or keyword/value DSN
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = applicationName
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// DriverName reports the driver identifier used for reader selection
func (c *PostgresClient) DriverName() string {
	return "pgsql"
}

// ServerVersion returns the server_version reported at startup
func (c *PostgresClient) ServerVersion() string {
	return c.conn.PgConn().ParameterStatus("server_version")
}

func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}
