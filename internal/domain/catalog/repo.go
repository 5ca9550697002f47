package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for the test catalog.
type Repository interface {
	CreateTest(ctx context.Context, t *Test) error
	GetTest(ctx context.Context, id uuid.UUID) (*Test, error)
	UpdateTest(ctx context.Context, t *Test) error
	// DeleteTest removes the test; its parameters go with it via the
	// schema's cascading foreign key.
	DeleteTest(ctx context.Context, id uuid.UUID) error
	ListTests(ctx context.Context) ([]Test, error)

	CreateParameter(ctx context.Context, p *TestParameter) error
	GetParameter(ctx context.Context, id uuid.UUID) (*TestParameter, error)
	UpdateParameter(ctx context.Context, p *TestParameter) error
	DeleteParameter(ctx context.Context, id uuid.UUID) error
	// ListParameters returns the parameters of one test in insertion order.
	ListParameters(ctx context.Context, testID uuid.UUID) ([]TestParameter, error)
	// GetParameters fetches a batch of parameters by id, keyed by id.
	GetParameters(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]TestParameter, error)
}
