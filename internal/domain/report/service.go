package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/klab/reports/internal/domain/catalog"
	"github.com/klab/reports/internal/domain/directory"
)

// ErrQuotaExceeded is returned when finalizing a report would exceed the
// free tier's monthly allowance. It must surface before any writes happen.
var ErrQuotaExceeded = errors.New("monthly report limit reached")

// ParameterSource supplies reference-range definitions for grading.
// catalog.Repository satisfies it.
type ParameterSource interface {
	GetParameters(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.TestParameter, error)
	ListParameters(ctx context.Context, testID uuid.UUID) ([]catalog.TestParameter, error)
}

// PatientSource supplies the patient row referenced by a report.
// directory.Repository satisfies it.
type PatientSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*directory.Patient, error)
}

// TierSource reports the active subscription tier, FREE or PRO.
type TierSource interface {
	CurrentTier(ctx context.Context) (string, error)
}

type Service struct {
	repo      Repository
	params    ParameterSource
	patients  PatientSource
	tier      TierSource
	freeLimit int
	now       func() time.Time
}

func NewService(repo Repository, params ParameterSource, patients PatientSource, tier TierSource, freeLimit int) *Service {
	return &Service{
		repo:      repo,
		params:    params,
		patients:  patients,
		tier:      tier,
		freeLimit: freeLimit,
		now:       time.Now,
	}
}

// monthStart is the quota window cutoff: midnight on the first of the
// current month, local time.
func (s *Service) monthStart() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
}

// checkQuota rejects a finalization on the FREE tier once the month's FINAL
// count has reached the limit. PRO is unlimited.
func (s *Service) checkQuota(ctx context.Context) error {
	tier, err := s.tier.CurrentTier(ctx)
	if err != nil {
		return err
	}
	if tier == "PRO" {
		return nil
	}
	count, err := s.repo.CountFinalSince(ctx, s.monthStart())
	if err != nil {
		return err
	}
	if count >= s.freeLimit {
		return ErrQuotaExceeded
	}
	return nil
}

func normalizeStatus(status string) (string, error) {
	switch status {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusFinal:
		return status, nil
	}
	return "", fmt.Errorf("invalid status: %s", status)
}

// gradeResults turns submitted line items into storable rows, re-deriving
// each status server-side from the parameter's reference range and the
// patient's sex rather than trusting the client's grading.
func (s *Service) gradeResults(ctx context.Context, patientID uuid.UUID, inputs []ResultInput) ([]Result, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if in.ParameterID == uuid.Nil {
			return nil, fmt.Errorf("parameter_id is required on every result")
		}
		ids = append(ids, in.ParameterID)
	}
	params, err := s.params.GetParameters(ctx, ids)
	if err != nil {
		return nil, err
	}

	siblings := make(map[uuid.UUID][]catalog.TestParameter)
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		p, ok := params[in.ParameterID]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", in.ParameterID)
		}
		sib, ok := siblings[p.TestID]
		if !ok {
			sib, err = s.params.ListParameters(ctx, p.TestID)
			if err != nil {
				return nil, err
			}
			siblings[p.TestID] = sib
		}
		rng := rangeFor(p, sib, patient.Gender)
		results = append(results, Result{
			ParameterID: in.ParameterID,
			ResultValue: in.ResultValue,
			Status:      Classify(in.ResultValue, rng.MinRange, rng.MaxRange),
			Remarks:     in.Remarks,
		})
	}
	return results, nil
}

func saveReport(in *SaveInput, status string) *Report {
	return &Report{
		PatientID:            in.PatientID,
		TotalAmount:          in.TotalAmount,
		Status:               status,
		ReferringDoctor:      in.ReferringDoctor,
		SampleCollectionDate: in.SampleCollectionDate,
		BillNumber:           in.BillNumber,
	}
}

func (s *Service) Create(ctx context.Context, in *SaveInput) (*Report, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if status == StatusFinal {
		if err := s.checkQuota(ctx); err != nil {
			return nil, err
		}
	}
	results, err := s.gradeResults(ctx, in.PatientID, in.Results)
	if err != nil {
		return nil, err
	}
	rep := saveReport(in, status)
	if err := s.repo.CreateWithResults(ctx, rep, results); err != nil {
		return nil, err
	}
	return rep, nil
}

// Update rewrites the report header and replaces the full result set. A
// report that is already FINAL can be re-finalized without touching the
// quota; only the DRAFT to FINAL transition consumes it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *SaveInput) (*Report, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetHeader(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if status == StatusFinal && existing.Status != StatusFinal {
		if err := s.checkQuota(ctx); err != nil {
			return nil, err
		}
	}
	results, err := s.gradeResults(ctx, in.PatientID, in.Results)
	if err != nil {
		return nil, err
	}
	rep := saveReport(in, status)
	rep.ID = id
	rep.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateWithResults(ctx, rep, results); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Summary, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// MonthlyFinalCount reports quota usage for the current window.
func (s *Service) MonthlyFinalCount(ctx context.Context) (int, error) {
	return s.repo.CountFinalSince(ctx, s.monthStart())
}

var billSuffix = regexp.MustCompile(`(.*?)(\d+)$`)

// NextBillNumber suggests the next bill number by incrementing the numeric
// suffix of the most recent one, preserving zero padding. No prior bill
// number, or one without a numeric suffix, yields "".
func (s *Service) NextBillNumber(ctx context.Context) (string, error) {
	last, err := s.repo.LatestBillNumber(ctx)
	if err != nil {
		return "", err
	}
	m := billSuffix.FindStringSubmatch(last)
	if m == nil {
		return "", nil
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return "", nil
	}
	return fmt.Sprintf("%s%0*d", m[1], len(m[2]), num+1), nil
}
