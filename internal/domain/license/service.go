package license

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrInvalidKey is returned when an activation key is not on the allow-list.
var ErrInvalidKey = errors.New("invalid license key")

// UsageCounter reports the number of FINAL reports in the current monthly
// window. The report service satisfies it.
type UsageCounter interface {
	MonthlyFinalCount(ctx context.Context) (int, error)
}

type Service struct {
	repo      Repository
	usage     UsageCounter
	validKeys map[string]bool
	freeLimit int
}

func NewService(repo Repository, usage UsageCounter, validKeys []string, freeLimit int) *Service {
	keys := make(map[string]bool, len(validKeys))
	for _, k := range validKeys {
		keys[k] = true
	}
	return &Service{repo: repo, usage: usage, validKeys: keys, freeLimit: freeLimit}
}

// CurrentTier reads the stored tier, defaulting to FREE when none is set.
func (s *Service) CurrentTier(ctx context.Context) (string, error) {
	tier, err := s.repo.GetValue(ctx, KeyTier)
	if errors.Is(err, pgx.ErrNoRows) {
		return TierFree, nil
	}
	if err != nil {
		return "", err
	}
	return tier, nil
}

// Activate checks the key against the allow-list and flips the tier to PRO.
func (s *Service) Activate(ctx context.Context, key string) error {
	if !s.validKeys[key] {
		return ErrInvalidKey
	}
	if err := s.repo.SetValue(ctx, KeyTier, TierPro); err != nil {
		return err
	}
	return s.repo.SetValue(ctx, KeyLicenseKey, key)
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	tier, err := s.CurrentTier(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.usage.MonthlyFinalCount(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		Tier:         tier,
		MonthlyUsage: count,
		Limit:        s.freeLimit,
		IsPro:        tier == TierPro,
	}, nil
}
