package report

import (
	"strconv"
	"strings"

	"github.com/klab/reports/internal/domain/catalog"
)

// Classify grades a submitted value against a reference range. Values that
// do not parse as numbers (qualitative entries like "Trace" or "Positive")
// are NORMAL; a nil bound leaves the range open on that side; values on a
// boundary are NORMAL.
func Classify(value string, min, max *float64) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return ResultNormal
	}
	if min != nil && v < *min {
		return ResultLow
	}
	if max != nil && v > *max {
		return ResultHigh
	}
	return ResultNormal
}

// rangeFor picks the reference range to grade against. When the referenced
// parameter is sex-specific and does not match the patient, the sibling row
// with the same name for the patient's sex is used instead, falling back to
// a sex-neutral sibling, then to the referenced row itself.
func rangeFor(p catalog.TestParameter, siblings []catalog.TestParameter, gender string) catalog.TestParameter {
	want := genderCode(gender)
	if p.GenderSpecific == catalog.GenderAny || want == catalog.GenderAny || p.GenderSpecific == want {
		return p
	}
	var neutral *catalog.TestParameter
	for i := range siblings {
		s := siblings[i]
		if s.Name != p.Name || s.TestID != p.TestID {
			continue
		}
		if s.GenderSpecific == want {
			return s
		}
		if s.GenderSpecific == catalog.GenderAny && neutral == nil {
			neutral = &siblings[i]
		}
	}
	if neutral != nil {
		return *neutral
	}
	return p
}

func genderCode(gender string) int {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "MALE", "M":
		return catalog.GenderMale
	case "FEMALE", "F":
		return catalog.GenderFemale
	}
	return catalog.GenderAny
}
