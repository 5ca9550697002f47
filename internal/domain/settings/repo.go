// Package settings stores lab-profile key-value pairs (lab name, address,
// report header/footer text) served to the client as one flat object.
package settings

import "context"

// Repository is the storage contract for the settings table.
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	// SaveAll upserts every pair in one transaction.
	SaveAll(ctx context.Context, values map[string]string) error
}
