package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"

	"github.com/leadpulse/leadpulse/pkg/logger"
)

// Client holds the database connection pool
type Client struct {
	DB  *sql.DB
	log logger.Logger
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
	CertPath     string // Path to client certificate
	KeyPath      string // Path to client key
	RootCertPath string // Path to root CA certificate
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

// BuildConnectionString builds a PostgreSQL connection string with SSL parameters
func BuildConnectionString(baseURL string, sslCfg *SSLConfig) (string, error) {
	if sslCfg == nil {
		return baseURL, nil
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}

	query := parsedURL.Query()

	// SSL mode overrides any existing sslmode in the URL
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

// NewClient creates a new database client with connection pooling
func NewClient(databaseURL string, log logger.Logger) (*Client, error) {
	return NewClientWithPool(databaseURL, DefaultPoolConfig(), nil, log)
}

// NewClientWithPool creates a new database client with custom pool and SSL configuration
func NewClientWithPool(databaseURL string, poolCfg PoolConfig, sslCfg *SSLConfig, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Default()
	}

	connStr, err := BuildConnectionString(databaseURL, sslCfg)
	if err != nil {
		return nil, fmt.Errorf("failed building connection string: %w", err)
	}

	if sslCfg != nil && sslCfg.Mode != "" && sslCfg.Mode != "disable" {
		log.Info("database SSL enabled", "mode", sslCfg.Mode)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	db.SetMaxOpenConns(poolCfg.MaxOpenConns)
	db.SetMaxIdleConns(poolCfg.MaxIdleConns)
	db.SetConnMaxLifetime(poolCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(poolCfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed connecting to postgres: %w", err)
	}

	log.Info("database connection pool configured",
		"max_open", poolCfg.MaxOpenConns,
		"max_idle", poolCfg.MaxIdleConns,
		"max_lifetime", poolCfg.ConnMaxLifetime.String(),
	)

	client := &Client{DB: db, log: log}

	if err := client.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed creating schema resources: %w", err)
	}

	log.Info("database connected and schema ensured")

	return client, nil
}

// EnsureSchema creates the application tables when they do not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id SERIAL PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			facebook_name TEXT NOT NULL DEFAULT '',
			facebook_profile_url TEXT,
			email TEXT,
			phone TEXT,
			town TEXT NOT NULL DEFAULT '',
			group_name TEXT NOT NULL DEFAULT '',
			keywords TEXT[] NOT NULL DEFAULT '{}',
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'new',
			contact_status TEXT NOT NULL DEFAULT 'not_contacted',
			date_added TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_contacted TIMESTAMPTZ,
			lead_score INTEGER NOT NULL DEFAULT 0,
			profile_data JSONB NOT NULL DEFAULT '{}',
			source TEXT NOT NULL DEFAULT '',
			url TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS leads_source_facebook_name_idx
			ON leads (source, facebook_name)
			WHERE facebook_name <> ''`,
		`CREATE TABLE IF NOT EXISTS contact_templates (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			subject TEXT,
			content TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS contact_attempts (
			id BIGINT PRIMARY KEY,
			lead_id INTEGER NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
			contact_type TEXT NOT NULL,
			message_content TEXT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'sent',
			response_content TEXT,
			response_received_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS contact_attempts_lead_id_idx ON contact_attempts (lead_id)`,
		`CREATE INDEX IF NOT EXISTS contact_attempts_sent_at_idx ON contact_attempts (sent_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
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
