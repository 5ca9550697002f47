package catalog

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
)

// =========== Mock Repository ===========

type mockRepo struct {
	tests  map[uuid.UUID]*Test
	params map[uuid.UUID]*TestParameter
	seq    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		tests:  make(map[uuid.UUID]*Test),
		params: make(map[uuid.UUID]*TestParameter),
	}
}

func (m *mockRepo) CreateTest(_ context.Context, t *Test) error {
	t.ID = uuid.New()
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockRepo) GetTest(_ context.Context, id uuid.UUID) (*Test, error) {
	t, ok := m.tests[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return t, nil
}

func (m *mockRepo) UpdateTest(_ context.Context, t *Test) error {
	if _, ok := m.tests[t.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteTest(_ context.Context, id uuid.UUID) error {
	delete(m.tests, id)
	for pid, p := range m.params {
		if p.TestID == id {
			delete(m.params, pid)
		}
	}
	return nil
}

func (m *mockRepo) ListTests(_ context.Context) ([]Test, error) {
	var out []Test
	for _, t := range m.tests {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepo) CreateParameter(_ context.Context, p *TestParameter) error {
	p.ID = uuid.New()
	m.seq++
	cp := *p
	m.params[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetParameter(_ context.Context, id uuid.UUID) (*TestParameter, error) {
	p, ok := m.params[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) UpdateParameter(_ context.Context, p *TestParameter) error {
	if _, ok := m.params[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *p
	m.params[p.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteParameter(_ context.Context, id uuid.UUID) error {
	delete(m.params, id)
	return nil
}

func (m *mockRepo) ListParameters(_ context.Context, testID uuid.UUID) ([]TestParameter, error) {
	var out []TestParameter
	for _, p := range m.params {
		if p.TestID == testID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepo) GetParameters(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]TestParameter, error) {
	out := make(map[uuid.UUID]TestParameter)
	for _, id := range ids {
		if p, ok := m.params[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

// =========== Tests ===========

func TestCreateTest_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.CreateTest(ctx, &Test{Price: 100}); err == nil {
		t.Error("expected error for missing test_name")
	}
	if err := svc.CreateTest(ctx, &Test{Name: "CBC", Price: -5}); err == nil {
		t.Error("expected error for negative price")
	}
	if err := svc.CreateTest(ctx, &Test{Name: "CBC", Price: 250, Department: "Hematology"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteTest_RemovesParameters(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	test := &Test{Name: "CBC", Price: 250}
	if err := svc.CreateTest(ctx, test); err != nil {
		t.Fatalf("create test: %v", err)
	}
	p := &TestParameter{TestID: test.ID, Name: "Haemoglobin", Unit: "g/dL"}
	if err := svc.CreateParameter(ctx, p); err != nil {
		t.Fatalf("create parameter: %v", err)
	}

	if err := svc.DeleteTest(ctx, test.ID); err != nil {
		t.Fatalf("delete test: %v", err)
	}
	left, err := svc.ListParameters(ctx, test.ID)
	if err != nil {
		t.Fatalf("list parameters: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected 0 parameters after test delete, got %d", len(left))
	}
}

func TestCreateParameter_Validation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	test := &Test{Name: "CBC", Price: 250}
	if err := svc.CreateTest(ctx, test); err != nil {
		t.Fatalf("create test: %v", err)
	}

	if err := svc.CreateParameter(ctx, &TestParameter{Name: "Haemoglobin"}); err == nil {
		t.Error("expected error for missing test_id")
	}
	if err := svc.CreateParameter(ctx, &TestParameter{TestID: test.ID}); err == nil {
		t.Error("expected error for missing param_name")
	}
	if err := svc.CreateParameter(ctx, &TestParameter{TestID: test.ID, Name: "WBC", GenderSpecific: 7}); err == nil {
		t.Error("expected error for invalid gender_specific")
	}

	lo, hi := 15.0, 12.0
	if err := svc.CreateParameter(ctx, &TestParameter{TestID: test.ID, Name: "WBC", MinRange: &lo, MaxRange: &hi}); err == nil {
		t.Error("expected error for inverted range")
	}

	min, max := 13.0, 17.0
	p := &TestParameter{TestID: test.ID, Name: "Haemoglobin", Unit: "g/dL", MinRange: &min, MaxRange: &max, GenderSpecific: GenderMale}
	if err := svc.CreateParameter(ctx, p); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected parameter id to be assigned")
	}
}

func TestCreateParameter_OpenEndedRange(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	test := &Test{Name: "Lipid Profile", Price: 600}
	if err := svc.CreateTest(ctx, test); err != nil {
		t.Fatalf("create test: %v", err)
	}

	max := 200.0
	p := &TestParameter{TestID: test.ID, Name: "Total Cholesterol", Unit: "mg/dL", MaxRange: &max}
	if err := svc.CreateParameter(ctx, p); err != nil {
		t.Errorf("unexpected error for open lower bound: %v", err)
	}
}

func TestListTests_SortedByName(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, name := range []string{"Thyroid Profile", "Blood Sugar (Fasting)", "Liver Function Test"} {
		if err := svc.CreateTest(ctx, &Test{Name: name, Price: 100}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	items, err := svc.ListTests(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 tests, got %d", len(items))
	}
	if items[0].Name != "Blood Sugar (Fasting)" || items[2].Name != "Thyroid Profile" {
		t.Errorf("tests not sorted by name: %v, %v, %v", items[0].Name, items[1].Name, items[2].Name)
	}
}
