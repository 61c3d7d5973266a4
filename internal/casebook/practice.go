// Package casebook runs test-selection practice over the case vignettes.
package casebook

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

var (
	ErrUnknownCase = errors.New("unknown case")
	ErrNoCase      = errors.New("no case selected")
	ErrNotAnOption = errors.New("test is not an option for this case")
)

// Result is the feedback shown after an answer.
type Result struct {
	TestID         string `json:"test_id"`
	Correct        bool   `json:"correct"`
	CorrectTest    string `json:"correct_test"`
	CorrectName    string `json:"correct_name,omitempty"`
	WhyIncorrect   string `json:"why_incorrect,omitempty"`
	Interpretation string `json:"interpretation"`
}

// Practice holds the selected case and the learner's answer. It is not safe
// for concurrent use.
type Practice struct {
	cat      *catalog.Catalog
	current  int
	selected bool
	answer   string
}

func New(cat *catalog.Catalog) *Practice {
	return &Practice{cat: cat}
}

// Cases lists every vignette in table order.
func (p *Practice) Cases() []catalog.CaseVignette { return p.cat.Cases() }

// Select switches to case id and clears the answer.
func (p *Practice) Select(id string) error {
	i := slices.IndexFunc(p.cat.Cases(), func(c catalog.CaseVignette) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("case %q: %w", id, ErrUnknownCase)
	}
	p.current = i
	p.selected = true
	p.answer = ""
	return nil
}

// Current returns the selected case.
func (p *Practice) Current() (catalog.CaseVignette, bool) {
	if !p.selected {
		return catalog.CaseVignette{}, false
	}
	return p.cat.Cases()[p.current], true
}

// Options returns the correct and incorrect tests of the current case that
// exist in the catalog, sorted by display name.
func (p *Practice) Options() []catalog.StatisticalTest {
	c, ok := p.Current()
	if !ok {
		return []catalog.StatisticalTest{}
	}
	return Options(p.cat, c)
}

// Options returns the candidate tests for c sorted by display name.
func Options(cat *catalog.Catalog, c catalog.CaseVignette) []catalog.StatisticalTest {
	ids := []string{c.CorrectTest}
	for _, it := range c.IncorrectTests {
		ids = append(ids, it.TestID)
	}

	out := []catalog.StatisticalTest{}
	for _, t := range cat.Tests() {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}

	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b catalog.StatisticalTest) int {
		return col.CompareString(a.DisplayName, b.DisplayName)
	})
	return out
}

// Answer grades testID against the current case.
func (p *Practice) Answer(testID string) (Result, error) {
	c, ok := p.Current()
	if !ok {
		return Result{}, ErrNoCase
	}
	if !slices.ContainsFunc(p.Options(), func(t catalog.StatisticalTest) bool { return t.ID == testID }) {
		return Result{}, fmt.Errorf("answering %q: %w", testID, ErrNotAnOption)
	}
	p.answer = testID
	return p.result(c), nil
}

// Result returns the feedback for the recorded answer.
func (p *Practice) Result() (Result, bool) {
	c, ok := p.Current()
	if !ok || p.answer == "" {
		return Result{}, false
	}
	return p.result(c), true
}

func (p *Practice) result(c catalog.CaseVignette) Result {
	r := Result{
		TestID:         p.answer,
		Correct:        p.answer == c.CorrectTest,
		CorrectTest:    c.CorrectTest,
		Interpretation: c.Interpretation,
	}
	if t, ok := p.cat.Test(c.CorrectTest); ok {
		r.CorrectName = t.DisplayName
	}
	for _, it := range c.IncorrectTests {
		if it.TestID == p.answer {
			r.WhyIncorrect = it.WhyIncorrect
			break
		}
	}
	return r
}

// Reset clears the answer so the case can be tried again.
func (p *Practice) Reset() { p.answer = "" }

// Next moves to the following case, wrapping after the last one. With no
// case selected it selects the first.
func (p *Practice) Next() (catalog.CaseVignette, error) {
	n := len(p.cat.Cases())
	if n == 0 {
		return catalog.CaseVignette{}, ErrUnknownCase
	}
	i := 0
	if p.selected {
		i = (p.current + 1) % n
	}
	p.current = i
	p.selected = true
	p.answer = ""
	return p.cat.Cases()[i], nil
}

// Snapshot is a serializable view of a Practice.
type Snapshot struct {
	Case    *catalog.CaseVignette     `json:"case,omitempty"`
	Options []catalog.StatisticalTest `json:"options"`
	Result  *Result                   `json:"result,omitempty"`
}

func (p *Practice) Snapshot() Snapshot {
	s := Snapshot{Options: p.Options()}
	if c, ok := p.Current(); ok {
		s.Case = &c
	}
	if r, ok := p.Result(); ok {
		s.Result = &r
	}
	return s
}
