package recommend

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

// ErrUnknownTest is returned when a test id is not in the catalog.
var ErrUnknownTest = errors.New("unknown test")

// Checker tracks one assumption-checking session: the selected test, the
// assumptions marked violated and the assumption whose guidance is expanded.
// It is not safe for concurrent use.
type Checker struct {
	cat      *catalog.Catalog
	test     catalog.StatisticalTest
	selected bool
	violated ViolationSet
	expanded catalog.AssumptionType
}

// Summary counts met and violated relevant assumptions.
type Summary struct {
	Met      int  `json:"met"`
	Violated int  `json:"violated"`
	AllMet   bool `json:"all_met"`
}

// CheckerSnapshot is a serializable view of a Checker.
type CheckerSnapshot struct {
	TestID       string                    `json:"test_id,omitempty"`
	Relevant     []catalog.Assumption      `json:"relevant"`
	Violated     []catalog.AssumptionType  `json:"violated"`
	Expanded     catalog.AssumptionType    `json:"expanded,omitempty"`
	Summary      Summary                   `json:"summary"`
	Alternatives []catalog.StatisticalTest `json:"alternatives"`
}

func NewChecker(cat *catalog.Catalog) *Checker {
	return &Checker{cat: cat, violated: NewViolationSet()}
}

// Select switches to testID and clears the violated set and expansion.
func (c *Checker) Select(testID string) error {
	t, ok := c.cat.Test(testID)
	if !ok {
		return fmt.Errorf("selecting %q: %w", testID, ErrUnknownTest)
	}
	c.test = t
	c.selected = true
	c.violated = NewViolationSet()
	c.expanded = ""
	return nil
}

// Test returns the selected test.
func (c *Checker) Test() (catalog.StatisticalTest, bool) {
	return c.test, c.selected
}

// Relevant returns the assumptions of the selected test.
func (c *Checker) Relevant() []catalog.Assumption {
	if !c.selected {
		return []catalog.Assumption{}
	}
	return RelevantAssumptions(c.cat.Assumptions(), c.test)
}

// Toggle flips the violated flag of id. It reports false, changing nothing,
// when id is not relevant to the selected test.
func (c *Checker) Toggle(id catalog.AssumptionType) bool {
	if !c.isRelevant(id) {
		return false
	}
	if c.violated.Has(id) {
		delete(c.violated, id)
	} else {
		c.violated[id] = struct{}{}
	}
	return true
}

// Expand toggles which assumption is expanded; at most one is.
func (c *Checker) Expand(id catalog.AssumptionType) {
	if c.expanded == id {
		c.expanded = ""
		return
	}
	c.expanded = id
}

func (c *Checker) Expanded() catalog.AssumptionType { return c.expanded }

func (c *Checker) Violated() ViolationSet { return c.violated }

func (c *Checker) Summary() Summary {
	relevant := c.Relevant()
	violated := 0
	for _, a := range relevant {
		if c.violated.Has(a.ID) {
			violated++
		}
	}
	return Summary{
		Met:      len(relevant) - violated,
		Violated: violated,
		AllMet:   violated == 0,
	}
}

// Alternatives returns the alternatives of the selected test given the
// current violations.
func (c *Checker) Alternatives() []catalog.StatisticalTest {
	if !c.selected {
		return []catalog.StatisticalTest{}
	}
	return Alternatives(c.cat.Tests(), c.test.ID, c.violated)
}

func (c *Checker) Snapshot() CheckerSnapshot {
	return CheckerSnapshot{
		TestID:       c.test.ID,
		Relevant:     c.Relevant(),
		Violated:     c.violated.IDs(catalog.AssumptionTypes),
		Expanded:     c.expanded,
		Summary:      c.Summary(),
		Alternatives: c.Alternatives(),
	}
}

func (c *Checker) isRelevant(id catalog.AssumptionType) bool {
	for _, a := range c.Relevant() {
		if a.ID == id {
			return true
		}
	}
	return false
}
