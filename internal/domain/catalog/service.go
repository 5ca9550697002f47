package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateTest(ctx context.Context, t *Test) error {
	if t.Name == "" {
		return fmt.Errorf("test_name is required")
	}
	if t.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return s.repo.CreateTest(ctx, t)
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.repo.GetTest(ctx, id)
}

func (s *Service) UpdateTest(ctx context.Context, t *Test) error {
	if t.Name == "" {
		return fmt.Errorf("test_name is required")
	}
	if t.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return s.repo.UpdateTest(ctx, t)
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTest(ctx, id)
}

func (s *Service) ListTests(ctx context.Context) ([]Test, error) {
	return s.repo.ListTests(ctx)
}

func validateParameter(p *TestParameter) error {
	if p.Name == "" {
		return fmt.Errorf("param_name is required")
	}
	if p.GenderSpecific != GenderAny && p.GenderSpecific != GenderMale && p.GenderSpecific != GenderFemale {
		return fmt.Errorf("invalid gender_specific: %d", p.GenderSpecific)
	}
	if p.MinRange != nil && p.MaxRange != nil && *p.MinRange > *p.MaxRange {
		return fmt.Errorf("min_range must not exceed max_range")
	}
	return nil
}

func (s *Service) CreateParameter(ctx context.Context, p *TestParameter) error {
	if p.TestID == uuid.Nil {
		return fmt.Errorf("test_id is required")
	}
	if err := validateParameter(p); err != nil {
		return err
	}
	return s.repo.CreateParameter(ctx, p)
}

func (s *Service) UpdateParameter(ctx context.Context, p *TestParameter) error {
	if err := validateParameter(p); err != nil {
		return err
	}
	return s.repo.UpdateParameter(ctx, p)
}

func (s *Service) DeleteParameter(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteParameter(ctx, id)
}

func (s *Service) ListParameters(ctx context.Context, testID uuid.UUID) ([]TestParameter, error) {
	return s.repo.ListParameters(ctx, testID)
}
