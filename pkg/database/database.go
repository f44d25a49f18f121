package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client holds the database handle
type Client struct {
	DB *sqlx.DB
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxOpenConns    int           // Maximum number of open connections
	MaxIdleConns    int           // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// SSLConfig holds SSL/TLS configuration for database connections
type SSLConfig struct {
	Mode         string // disable, require, verify-ca, verify-full
	CertPath     string
	KeyPath      string
	RootCertPath string
}

// DefaultPoolConfig returns sensible defaults for connection pooling
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// BuildConnectionString adds SSL parameters to a PostgreSQL connection URL
func BuildConnectionString(baseURL string, sslCfg *SSLConfig) (string, error) {
	if sslCfg == nil {
		return baseURL, nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	query := parsedURL.Query()
	if sslCfg.Mode != "" {
		query.Set("sslmode", sslCfg.Mode)
	}
	if sslCfg.CertPath != "" {
		query.Set("sslcert", sslCfg.CertPath)
	}
	if sslCfg.KeyPath != "" {
		query.Set("sslkey", sslCfg.KeyPath)
	}
	if sslCfg.RootCertPath != "" {
		query.Set("sslrootcert", sslCfg.RootCertPath)
	}
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// NewClient opens a PostgreSQL connection pool and applies the schema
func NewClient(databaseURL string, poolCfg PoolConfig, sslCfg *SSLConfig) (*Client, error) {
	connStr, err := BuildConnectionString(databaseURL, sslCfg)
	if err != nil {
		return nil, fmt.Errorf("failed building connection string: %w", err)
	}

	if sslCfg != nil && sslCfg.Mode != "" && sslCfg.Mode != "disable" {
		log.Printf("🔒 Database SSL enabled (mode: %s)", sslCfg.Mode)
	}

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	db.SetMaxOpenConns(poolCfg.MaxOpenConns)
	db.SetMaxIdleConns(poolCfg.MaxIdleConns)
	db.SetConnMaxLifetime(poolCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(poolCfg.ConnMaxIdleTime)

	log.Printf("✅ Database connection pool configured (max_open: %d, max_idle: %d, max_lifetime: %s, max_idle_time: %s)",
		poolCfg.MaxOpenConns, poolCfg.MaxIdleConns, poolCfg.ConnMaxLifetime, poolCfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := Wrap(db)
	if err := client.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed creating schema resources: %w", err)
	}

	log.Println("✅ Database connected and schema applied")
	return client, nil
}

// Wrap builds a Client around an already opened handle
func Wrap(db *sqlx.DB) *Client {
	return &Client{DB: db}
}

// Migrate creates missing tables and indexes
func (c *Client) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// InTx runs fn inside a transaction, committing only when fn returns nil
func (c *Client) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.DB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (c *Client) Stats() sql.DBStats {
	return c.DB.Stats()
}
