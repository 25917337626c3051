package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	_ "modernc.org/sqlite"
)

const kvTable = "kv_store"

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBPath
	if dsn == "" {
		return helpers.InvalidArgument("sqlite storage requires db_path")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return &helpers.StorageError{Message: "open sqlite " + dsn, Cause: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &helpers.StorageError{Message: "ping sqlite " + dsn, Cause: err}
	}

	db.SetMaxOpenConns(1)
	d.DB = db

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`, kvTable)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return &helpers.StorageError{Message: "create " + kvTable, Cause: err}
	}

	d.Logger.Info("SQLite key/value store ready at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT value FROM %s WHERE key = ?", kvTable), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &helpers.StorageError{Message: "read " + key, Cause: err}
	}
	return value, true, nil
}

func (d *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, kvTable)
	if _, err := d.DB.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return &helpers.StorageError{Message: "write " + key, Cause: err}
	}
	return nil
}

func (d *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE key = ?", kvTable), key); err != nil {
		return &helpers.StorageError{Message: "remove " + key, Cause: err}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
