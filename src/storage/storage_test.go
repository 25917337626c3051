package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logger.NewLogger(nil, "StorageTest")
	l.SetOutput(&buf)
	return l, &buf
}

func exerciseStore(t *testing.T, store interfaces.IKeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "selectedCurrency")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "selectedCurrency", `"Usd"`))
	require.NoError(t, store.Set(ctx, "selectedCurrency", `"Aud"`))

	v, ok, err := store.Get(ctx, "selectedCurrency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"Aud"`, v)

	require.NoError(t, store.Remove(ctx, "selectedCurrency"))
	require.NoError(t, store.Remove(ctx, "selectedCurrency"))
	_, ok, err = store.Get(ctx, "selectedCurrency")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Initialize(context.Background()))
	exerciseStore(t, store)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore(t *testing.T) {
	log, _ := testLogger()
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "dashboard.db"),
	}}

	store, err := Open(context.Background(), cfg, log)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	log, _ := testLogger()
	ctx := context.Background()
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "dashboard.db"),
	}}

	first, err := Open(ctx, cfg, log)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "selectedCurrency", `"Usd"`))
	require.NoError(t, first.Close())

	second, err := Open(ctx, cfg, log)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get(ctx, "selectedCurrency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"Usd"`, v)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	log, _ := testLogger()
	ctx := context.Background()

	_, err := Open(ctx, &models.MConfig{Storage: models.MStorageConfig{DBType: "redis"}}, log)
	assert.ErrorIs(t, err, helpers.ErrInvalidArgument)

	_, err = Open(ctx, &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite"}}, log)
	assert.ErrorIs(t, err, helpers.ErrInvalidArgument)

	_, err = Open(ctx, &models.MConfig{Storage: models.MStorageConfig{DBType: "postgres"}}, log)
	assert.ErrorIs(t, err, helpers.ErrInvalidArgument)

	store, err := Open(ctx, &models.MConfig{}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "market_dashboard", SchemaName("Market-Dashboard"))
	assert.Equal(t, "main", SchemaName("main"))
	assert.Equal(t, "dashboard", SchemaName("---"))
}

// -----------------------------------------------------------------------------
// LocalStorage
// -----------------------------------------------------------------------------

type failingStore struct {
	*MemoryStore
	getErr, setErr, removeErr error
	gets                      int
}

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	f.gets++
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *failingStore) Remove(ctx context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.MemoryStore.Remove(ctx, key)
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: NewMemoryStore()}
}

func TestLocalStorageRejectsEmptyKeyWithoutTouchingStore(t *testing.T) {
	store := newFailingStore()
	_, err := NewLocalStorage(context.Background(), store, "", "default", nil)
	assert.ErrorIs(t, err, helpers.ErrInvalidArgument)
	assert.Equal(t, 0, store.gets)
}

func TestLocalStorageDefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	log, _ := testLogger()

	ls, err := NewLocalStorage(ctx, store, "selectedCurrency", "Aud", log)
	require.NoError(t, err)
	assert.Equal(t, "Aud", ls.Value())
	assert.Equal(t, "selectedCurrency", ls.Key())

	ls.Set(ctx, "Usd")
	raw, ok, _ := store.Get(ctx, "selectedCurrency")
	assert.True(t, ok)
	assert.Equal(t, `"Usd"`, raw)

	reloaded, err := NewLocalStorage(ctx, store, "selectedCurrency", "Aud", log)
	require.NoError(t, err)
	assert.Equal(t, "Usd", reloaded.Value())

	ls.Reset(ctx)
	assert.Equal(t, "Aud", ls.Value())
	raw, _, _ = store.Get(ctx, "selectedCurrency")
	assert.Equal(t, `"Aud"`, raw)

	ls.Set(ctx, "Eur")
	ls.Remove(ctx)
	assert.Equal(t, "Aud", ls.Value())
	_, ok, _ = store.Get(ctx, "selectedCurrency")
	assert.False(t, ok)
}

func TestLocalStorageAcceptsRawStringWithWarning(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, "selectedCurrency", "Usd")
	log, buf := testLogger()

	ls, err := NewLocalStorage(ctx, store, "selectedCurrency", "Aud", log)
	require.NoError(t, err)
	assert.Equal(t, "Usd", ls.Value())
	assert.Contains(t, buf.String(), "non-JSON value")
}

func TestLocalStorageFallsBackForNonStringTypes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, "interval", "not-json")
	log, buf := testLogger()

	ls, err := NewLocalStorage(ctx, store, "interval", 10000, log)
	require.NoError(t, err)
	assert.Equal(t, 10000, ls.Value())
	assert.Contains(t, buf.String(), "Failed to read from storage key")
}

func TestLocalStorageSwallowsBackendErrors(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	store.getErr = errors.New("storage error")
	log, buf := testLogger()

	ls, err := NewLocalStorage(ctx, store, "selectedCurrency", "Aud", log)
	require.NoError(t, err)
	assert.Equal(t, "Aud", ls.Value())

	store.setErr = errors.New("quota exceeded")
	ls.Set(ctx, "Usd")
	assert.Equal(t, "Usd", ls.Value())
	assert.Contains(t, buf.String(), "Failed to write to storage key")

	store.removeErr = errors.New("locked")
	ls.Remove(ctx)
	assert.Equal(t, "Usd", ls.Value())
	assert.Contains(t, buf.String(), "Failed to remove from storage key")
}
