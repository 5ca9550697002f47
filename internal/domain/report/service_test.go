package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/klab/reports/internal/domain/catalog"
	"github.com/klab/reports/internal/domain/directory"
)

// =========== Mocks ===========

type mockRepo struct {
	reports map[uuid.UUID]*Report
	results map[uuid.UUID][]Result
	bills   []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		reports: make(map[uuid.UUID]*Report),
		results: make(map[uuid.UUID][]Result),
	}
}

func (m *mockRepo) CreateWithResults(_ context.Context, r *Report, results []Result) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	cp := *r
	m.reports[r.ID] = &cp
	m.results[r.ID] = results
	if r.BillNumber != nil {
		m.bills = append(m.bills, *r.BillNumber)
	}
	return nil
}

func (m *mockRepo) UpdateWithResults(_ context.Context, r *Report, results []Result) error {
	old, ok := m.reports[r.ID]
	if !ok {
		return ErrNotFound
	}
	r.CreatedAt = old.CreatedAt
	cp := *r
	m.reports[r.ID] = &cp
	m.results[r.ID] = results
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.reports[id]; !ok {
		return ErrNotFound
	}
	delete(m.reports, id)
	delete(m.results, id)
	return nil
}

func (m *mockRepo) GetHeader(_ context.Context, id uuid.UUID) (*Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRepo) GetDetail(_ context.Context, id uuid.UUID) (*Detail, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Detail{Report: *r}, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]Summary, int, error) {
	var out []Summary
	for _, r := range m.reports {
		out = append(out, Summary{Report: *r})
	}
	return out, len(out), nil
}

func (m *mockRepo) CountFinalSince(_ context.Context, cutoff time.Time) (int, error) {
	count := 0
	for _, r := range m.reports {
		if r.Status == StatusFinal && !r.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) LatestBillNumber(_ context.Context) (string, error) {
	if len(m.bills) == 0 {
		return "", nil
	}
	return m.bills[len(m.bills)-1], nil
}

type mockParams struct {
	byID   map[uuid.UUID]catalog.TestParameter
	byTest map[uuid.UUID][]catalog.TestParameter
}

func newMockParams(params ...catalog.TestParameter) *mockParams {
	m := &mockParams{
		byID:   make(map[uuid.UUID]catalog.TestParameter),
		byTest: make(map[uuid.UUID][]catalog.TestParameter),
	}
	for _, p := range params {
		m.byID[p.ID] = p
		m.byTest[p.TestID] = append(m.byTest[p.TestID], p)
	}
	return m
}

func (m *mockParams) GetParameters(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.TestParameter, error) {
	out := make(map[uuid.UUID]catalog.TestParameter)
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockParams) ListParameters(_ context.Context, testID uuid.UUID) ([]catalog.TestParameter, error) {
	return m.byTest[testID], nil
}

type mockPatients struct {
	store map[uuid.UUID]*directory.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*directory.Patient, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockTier struct{ tier string }

func (m *mockTier) CurrentTier(_ context.Context) (string, error) { return m.tier, nil }

// =========== Fixtures ===========

type fixture struct {
	repo    *mockRepo
	tier    *mockTier
	svc     *Service
	patient *directory.Patient
	hb      catalog.TestParameter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testID := uuid.New()
	hb := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Haemoglobin", Unit: "g/dL",
		MinRange: fptr(12), MaxRange: fptr(15),
	}
	patient := &directory.Patient{ID: uuid.New(), Name: "Jane Roe", Age: 34, Gender: "FEMALE"}
	repo := newMockRepo()
	tier := &mockTier{tier: "FREE"}
	svc := NewService(repo, newMockParams(hb),
		&mockPatients{store: map[uuid.UUID]*directory.Patient{patient.ID: patient}},
		tier, 30)
	return &fixture{repo: repo, tier: tier, svc: svc, patient: patient, hb: hb}
}

func (f *fixture) input(status, value string) *SaveInput {
	return &SaveInput{
		PatientID:   f.patient.ID,
		TotalAmount: 250,
		Status:      status,
		Results:     []ResultInput{{ParameterID: f.hb.ID, ResultValue: value}},
	}
}

// =========== Tests ===========

func TestCreate_DerivesStatusServerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(StatusDraft, "11.0")
	in.Results[0].Status = ResultNormal // client grading is ignored
	rep, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := f.repo.results[rep.ID]
	if len(stored) != 1 {
		t.Fatalf("expected 1 result, got %d", len(stored))
	}
	if stored[0].Status != ResultLow {
		t.Errorf("expected derived status LOW, got %s", stored[0].Status)
	}
}

func TestCreate_DefaultsToDraft(t *testing.T) {
	f := newFixture(t)
	rep, err := f.svc.Create(context.Background(), f.input("", "13.5"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.Status != StatusDraft {
		t.Errorf("expected DRAFT, got %s", rep.Status)
	}
}

func TestCreate_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Create(context.Background(), f.input("PENDING", "13.5")); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCreate_RejectsUnknownParameter(t *testing.T) {
	f := newFixture(t)
	in := f.input(StatusDraft, "13.5")
	in.Results[0].ParameterID = uuid.New()
	if _, err := f.svc.Create(context.Background(), in); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestCreate_QuotaBlocksThirtyFirstFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if _, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5")); err != nil {
			t.Fatalf("final %d: %v", i+1, err)
		}
	}

	before := len(f.repo.reports)
	_, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(f.repo.reports) != before {
		t.Error("rejected create must leave no partial state")
	}

	// Drafts are never gated.
	if _, err := f.svc.Create(ctx, f.input(StatusDraft, "13.5")); err != nil {
		t.Errorf("draft should bypass quota: %v", err)
	}
}

func TestCreate_ProTierUnlimited(t *testing.T) {
	f := newFixture(t)
	f.tier.tier = "PRO"
	ctx := context.Background()

	for i := 0; i < 35; i++ {
		if _, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5")); err != nil {
			t.Fatalf("final %d on PRO: %v", i+1, err)
		}
	}
}

func TestUpdate_FinalToFinalExemptFromQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var lastID uuid.UUID
	for i := 0; i < 30; i++ {
		rep, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5"))
		if err != nil {
			t.Fatalf("final %d: %v", i+1, err)
		}
		lastID = rep.ID
	}

	// Re-editing an already-FINAL report does not consume quota.
	if _, err := f.svc.Update(ctx, lastID, f.input(StatusFinal, "14.0")); err != nil {
		t.Errorf("FINAL re-edit should be exempt: %v", err)
	}
}

func TestUpdate_DraftToFinalConsumesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, f.input(StatusDraft, "13.5"))
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	for i := 0; i < 30; i++ {
		if _, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5")); err != nil {
			t.Fatalf("final %d: %v", i+1, err)
		}
	}

	_, err = f.svc.Update(ctx, draft.ID, f.input(StatusFinal, "13.5"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded on DRAFT to FINAL at limit, got %v", err)
	}
}

func TestUpdate_ReplacesResultSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.Create(ctx, f.input(StatusDraft, "13.5"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := f.input(StatusDraft, "16.0")
	in.Results = append(in.Results, ResultInput{ParameterID: f.hb.ID, ResultValue: "11.0"})
	if _, err := f.svc.Update(ctx, rep.ID, in); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored := f.repo.results[rep.ID]
	if len(stored) != 2 {
		t.Fatalf("expected full replacement with 2 results, got %d", len(stored))
	}
	if stored[0].Status != ResultHigh || stored[1].Status != ResultLow {
		t.Errorf("expected HIGH and LOW, got %s and %s", stored[0].Status, stored[1].Status)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), uuid.New(), f.input(StatusDraft, "13.5"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_GradesAgainstPatientSexVariant(t *testing.T) {
	testID := uuid.New()
	male := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Haemoglobin", Unit: "g/dL",
		MinRange: fptr(13), MaxRange: fptr(17), GenderSpecific: catalog.GenderMale,
	}
	female := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Haemoglobin", Unit: "g/dL",
		MinRange: fptr(12), MaxRange: fptr(15), GenderSpecific: catalog.GenderFemale,
	}
	patient := &directory.Patient{ID: uuid.New(), Name: "Jane Roe", Gender: "FEMALE"}
	repo := newMockRepo()
	svc := NewService(repo, newMockParams(male, female),
		&mockPatients{store: map[uuid.UUID]*directory.Patient{patient.ID: patient}},
		&mockTier{tier: "FREE"}, 30)

	// 16.1 is inside the male range but above the female one; the client
	// referenced the male row for a female patient.
	rep, err := svc.Create(context.Background(), &SaveInput{
		PatientID: patient.ID,
		Results:   []ResultInput{{ParameterID: male.ID, ResultValue: "16.1"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := repo.results[rep.ID][0].Status; got != ResultHigh {
		t.Errorf("expected HIGH against female range, got %s", got)
	}
}

func TestNextBillNumber(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", ""},
		{"ABC", ""},
		{"BILL-0099", "BILL-0100"},
		{"INV7", "INV8"},
		{"2026/08/009", "2026/08/010"},
		{"42", "43"},
	}
	for _, tc := range cases {
		f := newFixture(t)
		if tc.last != "" {
			f.repo.bills = []string{tc.last}
		}
		got, err := f.svc.NextBillNumber(context.Background())
		if err != nil {
			t.Fatalf("next bill after %q: %v", tc.last, err)
		}
		if got != tc.want {
			t.Errorf("next bill after %q = %q, want %q", tc.last, got, tc.want)
		}
	}
}

func TestMonthlyFinalCount_WindowExcludesPriorMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.Create(ctx, f.input(StatusFinal, "13.5"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Push the report into the previous month.
	f.repo.reports[rep.ID].CreatedAt = time.Now().AddDate(0, -1, 0)

	count, err := f.svc.MonthlyFinalCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected prior-month FINAL excluded, got %d", count)
	}
}
