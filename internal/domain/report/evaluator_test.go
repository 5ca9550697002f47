package report

import (
	"testing"

	"github.com/google/uuid"

	"github.com/klab/reports/internal/domain/catalog"
)

func fptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	min, max := fptr(12.0), fptr(15.0)

	cases := []struct {
		name  string
		value string
		min   *float64
		max   *float64
		want  string
	}{
		{"below range", "11.0", min, max, ResultLow},
		{"inside range", "13.5", min, max, ResultNormal},
		{"above range", "16.0", min, max, ResultHigh},
		{"lower boundary", "12.0", min, max, ResultNormal},
		{"upper boundary", "15.0", min, max, ResultNormal},
		{"non-numeric", "Trace", min, max, ResultNormal},
		{"empty value", "", min, max, ResultNormal},
		{"whitespace padded", " 16.2 ", min, max, ResultHigh},
		{"open lower bound", "5.0", nil, max, ResultNormal},
		{"open upper bound", "500", min, nil, ResultNormal},
		{"no bounds", "42", nil, nil, ResultNormal},
		{"negative below", "-1", fptr(0), max, ResultLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.value, tc.min, tc.max); got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestRangeFor_GenderVariants(t *testing.T) {
	testID := uuid.New()
	male := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Haemoglobin",
		MinRange: fptr(13), MaxRange: fptr(17), GenderSpecific: catalog.GenderMale,
	}
	female := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Haemoglobin",
		MinRange: fptr(12), MaxRange: fptr(15), GenderSpecific: catalog.GenderFemale,
	}
	siblings := []catalog.TestParameter{male, female}

	if got := rangeFor(male, siblings, "FEMALE"); got.ID != female.ID {
		t.Error("female patient graded against male range")
	}
	if got := rangeFor(female, siblings, "MALE"); got.ID != male.ID {
		t.Error("male patient graded against female range")
	}
	if got := rangeFor(male, siblings, "MALE"); got.ID != male.ID {
		t.Error("matching variant should be kept")
	}
	// Unknown sex keeps the referenced row.
	if got := rangeFor(male, siblings, ""); got.ID != male.ID {
		t.Error("unknown sex should keep referenced row")
	}
}

func TestRangeFor_FallsBackToNeutralSibling(t *testing.T) {
	testID := uuid.New()
	male := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Creatinine",
		MinRange: fptr(0.7), MaxRange: fptr(1.3), GenderSpecific: catalog.GenderMale,
	}
	neutral := catalog.TestParameter{
		ID: uuid.New(), TestID: testID, Name: "Creatinine",
		MinRange: fptr(0.6), MaxRange: fptr(1.2), GenderSpecific: catalog.GenderAny,
	}
	siblings := []catalog.TestParameter{male, neutral}

	if got := rangeFor(male, siblings, "FEMALE"); got.ID != neutral.ID {
		t.Error("expected fallback to sex-neutral sibling")
	}
}

func TestRangeFor_NoSiblingKeepsReferenced(t *testing.T) {
	p := catalog.TestParameter{
		ID: uuid.New(), TestID: uuid.New(), Name: "PSA",
		MaxRange: fptr(4), GenderSpecific: catalog.GenderMale,
	}
	if got := rangeFor(p, []catalog.TestParameter{p}, "FEMALE"); got.ID != p.ID {
		t.Error("expected referenced row when no variant matches")
	}
}
