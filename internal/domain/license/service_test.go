package license

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	store map[string]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[string]string)}
}

func (m *mockRepo) GetValue(_ context.Context, key string) (string, error) {
	v, ok := m.store[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return v, nil
}

func (m *mockRepo) SetValue(_ context.Context, key, value string) error {
	m.store[key] = value
	return nil
}

type mockUsage struct{ count int }

func (m *mockUsage) MonthlyFinalCount(_ context.Context) (int, error) { return m.count, nil }

var testKeys = []string{"KLAB-PRO-2026", "KLAB-ADMIN-999"}

func TestCurrentTier_DefaultsToFree(t *testing.T) {
	svc := NewService(newMockRepo(), &mockUsage{}, testKeys, 30)
	tier, err := svc.CurrentTier(context.Background())
	if err != nil {
		t.Fatalf("tier: %v", err)
	}
	if tier != TierFree {
		t.Errorf("expected FREE when unset, got %s", tier)
	}
}

func TestActivate_ValidKey(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockUsage{}, testKeys, 30)
	ctx := context.Background()

	if err := svc.Activate(ctx, "KLAB-PRO-2026"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if repo.store[KeyTier] != TierPro {
		t.Errorf("expected tier PRO, got %s", repo.store[KeyTier])
	}
	if repo.store[KeyLicenseKey] != "KLAB-PRO-2026" {
		t.Errorf("expected key stored, got %s", repo.store[KeyLicenseKey])
	}
}

func TestActivate_InvalidKey(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockUsage{}, testKeys, 30)

	err := svc.Activate(context.Background(), "KLAB-FAKE-000")
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if len(repo.store) != 0 {
		t.Error("rejected activation must not write config")
	}
}

func TestStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockUsage{count: 12}, testKeys, 30)
	ctx := context.Background()

	st, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Tier != TierFree || st.IsPro || st.MonthlyUsage != 12 || st.Limit != 30 {
		t.Errorf("unexpected status: %+v", st)
	}

	if err := svc.Activate(ctx, "KLAB-ADMIN-999"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	st, err = svc.Status(ctx)
	if err != nil {
		t.Fatalf("status after activate: %v", err)
	}
	if st.Tier != TierPro || !st.IsPro {
		t.Errorf("expected PRO after activation: %+v", st)
	}
}
