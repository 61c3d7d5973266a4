// Package recommend maps questionnaire answers to candidate statistical tests
// and resolves alternatives for violated assumptions.
package recommend

import (
	"slices"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// Selection is the questionnaire state. Zero fields are unset.
type Selection struct {
	Outcome    catalog.VariableType    `json:"outcome,omitempty"`
	Design     catalog.StudyDesignType `json:"design,omitempty"`
	Comparison catalog.ComparisonType  `json:"comparison,omitempty"`
}

// Complete reports whether the required answers are present.
func (s Selection) Complete() bool {
	return s.Outcome != "" && s.Design != ""
}

// Recommend returns the tests applicable to sel, in table order. An unset
// outcome or design yields no tests; an unset comparison matches every test.
// The result is never nil.
func Recommend(tests []catalog.StatisticalTest, sel Selection) []catalog.StatisticalTest {
	out := []catalog.StatisticalTest{}
	if !sel.Complete() {
		return out
	}
	for _, t := range tests {
		if matches(t.ApplicableTo, sel) {
			out = append(out, t)
		}
	}
	return out
}

func matches(a catalog.Applicability, sel Selection) bool {
	if !slices.Contains(a.OutcomeTypes, sel.Outcome) {
		return false
	}
	if !slices.Contains(a.StudyDesigns, sel.Design) {
		return false
	}
	return sel.Comparison == "" || slices.Contains(a.ComparisonTypes, sel.Comparison)
}
