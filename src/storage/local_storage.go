package storage

import (
	"context"
	"encoding/json"
	"sync"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// LocalStorage binds one key of a key/value store to a typed value. Values are
// JSON encoded; read and write failures are logged and never returned.
// -----------------------------------------------------------------------------

type LocalStorage[T any] struct {
	key          string
	defaultValue T
	store        interfaces.IKeyValueStore
	Logger       *logger.Logger

	mu    sync.RWMutex
	value T
}

// NewLocalStorage loads key from store, falling back to defaultValue. An empty
// key fails with ErrInvalidArgument before the store is touched.
func NewLocalStorage[T any](ctx context.Context, store interfaces.IKeyValueStore, key string, defaultValue T, log *logger.Logger) (*LocalStorage[T], error) {
	if key == "" {
		return nil, helpers.InvalidArgument("storage key must be a non-empty string")
	}
	if store == nil {
		return nil, helpers.InvalidArgument("storage backend is required")
	}
	if log == nil {
		log = logger.NewLogger(nil, "LocalStorage")
	}

	ls := &LocalStorage[T]{
		key:          key,
		defaultValue: defaultValue,
		store:        store,
		Logger:       log,
	}
	ls.value = ls.read(ctx)
	return ls, nil
}

// -----------------------------------------------------------------------------

func (ls *LocalStorage[T]) read(ctx context.Context) T {
	raw, ok, err := ls.store.Get(ctx, ls.key)
	if err != nil {
		ls.Logger.Warning("Failed to read from storage key %q: %v", ls.key, err)
		return ls.defaultValue
	}
	if !ok {
		return ls.defaultValue
	}

	var v T
	if err = json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	if s, isT := any(raw).(T); isT && raw != "" {
		ls.Logger.Warning("Storage key %q contains non-JSON value, using as string: %s", ls.key, raw)
		return s
	}
	ls.Logger.Warning("Failed to read from storage key %q: %v", ls.key, err)
	return ls.defaultValue
}

func (ls *LocalStorage[T]) write(ctx context.Context, v T) {
	data, err := json.Marshal(v)
	if err == nil {
		err = ls.store.Set(ctx, ls.key, string(data))
	}
	if err != nil {
		ls.Logger.Error("Failed to write to storage key %q: %v", ls.key, err)
	}
}

// -----------------------------------------------------------------------------

func (ls *LocalStorage[T]) Key() string {
	return ls.key
}

// Value returns the in-memory copy
func (ls *LocalStorage[T]) Value() T {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.value
}

// Set updates the value and persists it
func (ls *LocalStorage[T]) Set(ctx context.Context, v T) {
	ls.mu.Lock()
	ls.value = v
	ls.mu.Unlock()
	ls.write(ctx, v)
}

// Remove deletes the key and reverts to the default without persisting it
func (ls *LocalStorage[T]) Remove(ctx context.Context) {
	if err := ls.store.Remove(ctx, ls.key); err != nil {
		ls.Logger.Error("Failed to remove from storage key %q: %v", ls.key, err)
		return
	}
	ls.mu.Lock()
	ls.value = ls.defaultValue
	ls.mu.Unlock()
}

// Reset stores the default value
func (ls *LocalStorage[T]) Reset(ctx context.Context) {
	ls.Set(ctx, ls.defaultValue)
}
