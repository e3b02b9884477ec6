package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terrep263/lakedirectory-sub002/pkg/config"
)

// PostgresConfig holds PostgreSQL connection pool settings
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
	MaxRetries      int
	RetryInterval   time.Duration
}

// DefaultPostgresConfig returns default connection settings
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        "postgres",
		SSLMode:         "disable",
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
	}
}

// FromConfig builds a PostgresConfig from application configuration
func FromConfig(cfg *config.DatabaseConfig) *PostgresConfig {
	pc := DefaultPostgresConfig()
	pc.Host = cfg.Host
	pc.Port = cfg.Port
	pc.User = cfg.User
	pc.Password = cfg.Password
	pc.Database = cfg.DBName
	pc.SSLMode = cfg.SSLMode
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	return pc
}

// DSN returns the PostgreSQL connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// PostgresDB wraps a pgx connection pool
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL connection pool with retries
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryInterval):
			}
		}

		pool, lastErr = pgxpool.NewWithConfig(ctx, poolConfig)
		if lastErr != nil {
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		lastErr = pool.Ping(pingCtx)
		cancel()
		if lastErr == nil {
			return &PostgresDB{pool: pool}, nil
		}
		pool.Close()
	}

	return nil, fmt.Errorf("failed to connect to postgres after %d retries: %w", cfg.MaxRetries, lastErr)
}

// Pool returns the underlying pgx pool
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping verifies the database connection
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// IsConnected reports whether the database is reachable
func (db *PostgresDB) IsConnected(ctx context.Context) bool {
	return db.pool.Ping(ctx) == nil
}

// HealthCheck runs a simple query to verify the database is serving
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Stats returns connection pool statistics
func (db *PostgresDB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}

// Exec executes a query without returning rows
func (db *PostgresDB) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := db.pool.Exec(ctx, query, args...)
	return err
}

// Query executes a query that returns rows
func (db *PostgresDB) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return db.pool.Query(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *PostgresDB) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return db.pool.QueryRow(ctx, query, args...)
}

// BeginTx starts a transaction with default options
func (db *PostgresDB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

// Close closes the connection pool
func (db *PostgresDB) Close() {
	db.pool.Close()
}
