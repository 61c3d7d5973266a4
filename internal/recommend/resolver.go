package recommend

import (
	"slices"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// ViolationSet holds the assumptions a user has marked as violated.
type ViolationSet map[catalog.AssumptionType]struct{}

// NewViolationSet builds a set from ids.
func NewViolationSet(ids ...catalog.AssumptionType) ViolationSet {
	s := make(ViolationSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ViolationSet) Has(id catalog.AssumptionType) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members ordered as in order.
func (s ViolationSet) IDs(order []catalog.AssumptionType) []catalog.AssumptionType {
	out := []catalog.AssumptionType{}
	for _, id := range order {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// RelevantAssumptions returns the entries of all listed by test, in the
// order of all. Ids that are not in all are ignored.
func RelevantAssumptions(all []catalog.Assumption, test catalog.StatisticalTest) []catalog.Assumption {
	out := []catalog.Assumption{}
	for _, a := range all {
		if slices.Contains(test.Assumptions, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// Alternatives returns the tests listed as alternatives of testID, in table
// order. Nothing is suggested while violated is empty or testID is unknown.
// Alternative ids missing from tests are dropped.
func Alternatives(tests []catalog.StatisticalTest, testID string, violated ViolationSet) []catalog.StatisticalTest {
	out := []catalog.StatisticalTest{}
	if len(violated) == 0 {
		return out
	}

	i := slices.IndexFunc(tests, func(t catalog.StatisticalTest) bool { return t.ID == testID })
	if i < 0 {
		return out
	}
	alts := tests[i].Alternatives

	for _, t := range tests {
		if slices.Contains(alts, t.ID) {
			out = append(out, t)
		}
	}
	return out
}
