package ports

import "context"

// KVStore defines the flat, string-keyed persistent map backing the
// localStorage action variant. Values are stored JSON-encoded; the store
// itself is payload-agnostic.
type KVStore interface {
	// Get retrieves the raw value for key.
	// Returns domain.ErrKeyNotFound if the key was never set.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the raw value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by this store.
	Clear(ctx context.Context) error
}
