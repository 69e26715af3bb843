package ports

import "context"

// SettingsStore is the persisted key/value store for small cross-invocation
// state such as the round-robin cursor and legacy flags. Values are JSON.
type SettingsStore interface {
	// Get decodes the value of key into dest. It reports false when the key is absent.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// Lock creates key if needed and holds its row lock until the transaction ends.
	Lock(ctx context.Context, key string) error
}
