package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an operation targets a report id that does
// not exist.
var ErrNotFound = errors.New("report not found")

// Repository is the storage contract for the report aggregate. The
// multi-row writes are atomic: a failure anywhere leaves no partial state.
type Repository interface {
	// CreateWithResults inserts the header and all result rows in one
	// transaction and assigns the report id.
	CreateWithResults(ctx context.Context, r *Report, results []Result) error
	// UpdateWithResults rewrites the header, deletes all prior result rows
	// and inserts the submitted set in one transaction. Returns ErrNotFound
	// when no report has the given id.
	UpdateWithResults(ctx context.Context, r *Report, results []Result) error
	// Delete removes the report; results cascade. Returns ErrNotFound when
	// nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	GetHeader(ctx context.Context, id uuid.UUID) (*Report, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, limit, offset int) ([]Summary, int, error)

	// CountFinalSince counts FINAL reports created at or after the cutoff.
	CountFinalSince(ctx context.Context, cutoff time.Time) (int, error)
	// LatestBillNumber returns the most recently assigned bill number, or
	// "" when no report carries one.
	LatestBillNumber(ctx context.Context) (string, error)
}
