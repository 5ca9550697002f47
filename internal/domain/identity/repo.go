package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicateUsername is returned when a create or update collides with an
// existing username.
var ErrDuplicateUsername = errors.New("username already exists")

// Repository is the storage contract for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Update rewrites username, full name and role; the password only when
	// non-empty.
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]User, error)
}
