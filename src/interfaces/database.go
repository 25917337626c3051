package interfaces

import "context"

// -----------------------------------------------------------------------------
// IKeyValueStore is the durable string key/value storage behind the
// dashboard's persisted preferences.
// -----------------------------------------------------------------------------

type IKeyValueStore interface {

	// Initialize opens the backend and creates its table.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set inserts or overwrites a value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// -----------------------------------------------------------------------------

	// Close the underlying connection
	Close() error
}
