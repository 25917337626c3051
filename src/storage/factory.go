package storage

import (
	"context"
	"fmt"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// Open builds and initializes the backend named by storage.db_type
func Open(ctx context.Context, cfg *models.MConfig, log *logger.Logger) (interfaces.IKeyValueStore, error) {
	var store interfaces.IKeyValueStore

	switch cfg.Storage.DBType {
	case "", "memory":
		store = NewMemoryStore()
	case "sqlite":
		store = NewSQLiteStore(cfg, log)
	case "postgres":
		pg, err := NewPostgresStore(cfg, log)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		return nil, helpers.InvalidArgument("unknown storage db_type %q", cfg.Storage.DBType)
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize %s storage: %w", cfg.Storage.DBType, err)
	}
	return store, nil
}
