package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Gender applicability of a parameter's reference range. A parameter name
// may appear twice under one test, once per sex, when the range differs;
// callers pick the row matching the patient.
const (
	GenderAny    = 0
	GenderMale   = 1
	GenderFemale = 2
)

// Test maps to the tests table. One orderable lab test with a price and the
// department that performs it.
type Test struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"test_name" json:"test_name"`
	Price      float64   `db:"price" json:"price"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TestParameter maps to the test_parameters table. A single measured value
// belonging to a test, with its unit and optional reference bounds. A nil
// bound means the range is open on that side.
type TestParameter struct {
	ID             uuid.UUID `db:"id" json:"id"`
	TestID         uuid.UUID `db:"test_id" json:"test_id"`
	Name           string    `db:"param_name" json:"param_name"`
	Unit           string    `db:"unit" json:"unit"`
	MinRange       *float64  `db:"min_range" json:"min_range"`
	MaxRange       *float64  `db:"max_range" json:"max_range"`
	GenderSpecific int       `db:"gender_specific" json:"gender_specific"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
