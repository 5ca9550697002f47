package license

import "context"

// Repository is the storage contract for the app_config key-value table.
type Repository interface {
	// GetValue returns pgx.ErrNoRows when the key is absent.
	GetValue(ctx context.Context, key string) (string, error)
	// SetValue upserts the key.
	SetValue(ctx context.Context, key, value string) error
}
