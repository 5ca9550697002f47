package directory

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for the patient directory.
type Repository interface {
	// FindByName matches on name ignoring case.
	FindByName(ctx context.Context, name string) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]Patient, int, error)
}
