package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL or MariaDB
type MySQLClient struct {
	db       *sql.DB
	driver   string
	database string
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	return newMySQLFamilyClient(ctx, "mysql", connString)
}

// NewMariaDBClient creates a client for a MariaDB server. It uses the MySQL
// wire driver and only differs in the identifier it reports.
func NewMariaDBClient(ctx context.Context, connString string) (*MySQLClient, error) {
	return newMySQLFamilyClient(ctx, "mariadb", connString)
}

func newMySQLFamilyClient(ctx context.Context, driver, connString string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db, driver: driver, database: cfg.DBName}, nil
}

// Database returns the database named in the DSN, or "" when the DSN
// names none
func (c *MySQLClient) Database() string {
	return c.database
}

// DriverName reports the driver identifier used for reader selection
func (c *MySQLClient) DriverName() string {
	return c.driver
}

// Close closes the database connection
func (c *MySQLClient) Close(_ context.Context) error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}
