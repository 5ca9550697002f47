package report

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. A report starts as DRAFT or goes straight to FINAL;
// FINAL never moves back to DRAFT.
const (
	StatusDraft = "DRAFT"
	StatusFinal = "FINAL"
)

// Result statuses, assigned against the parameter's reference range at save
// time and stored as-is. They are not recomputed on read, so a later change
// to a range definition leaves historical reports untouched.
const (
	ResultLow    = "LOW"
	ResultNormal = "NORMAL"
	ResultHigh   = "HIGH"
)

// Report maps to the reports table. total_amount is taken from the submitted
// payload, not recomputed from test prices.
type Report struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	PatientID            uuid.UUID `db:"patient_id" json:"patient_id"`
	TotalAmount          float64   `db:"total_amount" json:"total_amount"`
	Status               string    `db:"status" json:"status"`
	ReferringDoctor      *string   `db:"referring_doctor" json:"referring_doctor"`
	SampleCollectionDate *string   `db:"sample_collection_date" json:"sample_collection_date"`
	BillNumber           *string   `db:"bill_number" json:"bill_number"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Result maps to the report_results table. One measured value on a report.
type Result struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ReportID    uuid.UUID `db:"report_id" json:"report_id"`
	ParameterID uuid.UUID `db:"parameter_id" json:"parameter_id"`
	ResultValue string    `db:"result_value" json:"result_value"`
	Status      string    `db:"status" json:"status"`
	Remarks     string    `db:"remarks" json:"remarks"`
}

// Summary is a list-view row: the report header with the patient joined and
// the distinct test names of its results collapsed into one string.
type Summary struct {
	Report
	PatientName   string `json:"patient_name"`
	PatientAge    int    `json:"patient_age"`
	PatientGender string `json:"patient_gender"`
	TestNames     string `json:"test_names"`
}

// DetailResult is a result row joined with its parameter and test, as served
// on the report detail endpoint.
type DetailResult struct {
	Result
	ParamName string    `json:"param_name"`
	Unit      string    `json:"unit"`
	MinRange  *float64  `json:"min_range"`
	MaxRange  *float64  `json:"max_range"`
	TestID    uuid.UUID `json:"test_id"`
	TestName  string    `json:"test_name"`
}

// Detail is the full report: header, joined patient fields and all results.
type Detail struct {
	Report
	PatientName   string         `json:"patient_name"`
	PatientAge    int            `json:"patient_age"`
	PatientGender string         `json:"patient_gender"`
	PatientPhone  string         `json:"patient_phone"`
	Results       []DetailResult `json:"results"`
}

// ResultInput is one submitted line item. Status may be supplied by the
// client but is re-derived from the parameter's range before storage.
type ResultInput struct {
	ParameterID uuid.UUID `json:"parameter_id"`
	ResultValue string    `json:"result_value"`
	Status      string    `json:"status"`
	Remarks     string    `json:"remarks"`
}

// SaveInput is the create/update payload for a report.
type SaveInput struct {
	PatientID            uuid.UUID     `json:"patient_id"`
	TotalAmount          float64       `json:"total_amount"`
	Status               string        `json:"status"`
	ReferringDoctor      *string       `json:"referring_doctor"`
	SampleCollectionDate *string       `json:"sample_collection_date"`
	BillNumber           *string       `json:"bill_number"`
	Results              []ResultInput `json:"results"`
}
