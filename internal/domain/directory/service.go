package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveOrCreate finds the patient matching the given name ignoring case,
// refreshing the stored demographics from the submitted values, or creates a
// new record when no match exists. Reports always pass through here so the
// directory never grows duplicate entries for the same name.
func (s *Service) ResolveOrCreate(ctx context.Context, in *Patient) (*Patient, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	existing, err := s.repo.FindByName(ctx, in.Name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err := s.repo.Create(ctx, in); err != nil {
			return nil, err
		}
		return in, nil
	}

	existing.Age = in.Age
	existing.Gender = in.Gender
	existing.Phone = in.Phone
	existing.Address = in.Address
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}
