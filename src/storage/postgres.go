package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/lib/pq"
)

const (
	postgresConnectAttempts = 5
	postgresConnectDelay    = 500 * time.Millisecond
)

var schemaNameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresStore places the key/value table in a schema named after the
// running executable.
func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresStore{
		Config: cfg,
		Schema: SchemaName(name),
		Logger: log,
	}, nil
}

// SchemaName lowercases name and replaces anything outside [a-z0-9_]
func SchemaName(name string) string {
	s := schemaNameSanitizer.ReplaceAllString(strings.ToLower(name), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "dashboard"
	}
	return s
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBConnectionString
	if dsn == "" {
		return helpers.InvalidArgument("postgres storage requires db_connection_string")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return &helpers.StorageError{Message: "open postgres", Cause: err}
	}

	err = helpers.RetryWithBackoff(ctx, d.Logger, "postgres ping", postgresConnectAttempts, postgresConnectDelay, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return &helpers.StorageError{Message: "connect postgres", Cause: err}
	}
	d.DB = db

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pq.QuoteIdentifier(d.Schema))); err != nil {
		return &helpers.StorageError{Message: "create schema " + d.Schema, Cause: err}
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, d.table())
	if _, err := db.ExecContext(ctx, query); err != nil {
		return &helpers.StorageError{Message: "create " + d.table(), Cause: err}
	}

	d.Logger.Info("PostgresStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

func (d *PostgresStore) table() string {
	return pq.QuoteIdentifier(d.Schema) + "." + pq.QuoteIdentifier(kvTable)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key = $1", d.table()), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &helpers.StorageError{Message: "read " + key, Cause: err}
	}
	return value, true, nil
}

func (d *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query, key, value); err != nil {
		return &helpers.StorageError{Message: "write " + key, Cause: err}
	}
	return nil
}

func (d *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = $1", d.table()), key); err != nil {
		return &helpers.StorageError{Message: "remove " + key, Cause: err}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
