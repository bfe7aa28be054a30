package settings

import "context"

// Repository is a small key-value store for app settings.
type Repository interface {
	// Set stores or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Get returns the value for key, or common.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every setting.
	Clear(ctx context.Context) error
}
