package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/klab/reports/internal/platform/auth"
)

// ErrBadCredentials is returned on a failed login. It stays deliberately
// vague about which half of the pair was wrong.
var ErrBadCredentials = errors.New("invalid username or password")

type Service struct {
	repo   Repository
	signer *auth.Signer
}

func NewService(repo Repository, signer *auth.Signer) *Service {
	return &Service{repo: repo, signer: signer}
}

// Login matches the username and stored password and issues a session
// token. Passwords are stored as entered; there is no hashing in the
// schema this system inherits.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrBadCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil || u.Password != password {
		return nil, "", ErrBadCredentials
	}
	token, err := s.signer.Sign(u.ID.String(), u.Username, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) Create(ctx context.Context, u *User) error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.Password == "" {
		return fmt.Errorf("password is required")
	}
	if u.Role == "" {
		u.Role = RoleTechnician
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) Update(ctx context.Context, u *User) error {
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
