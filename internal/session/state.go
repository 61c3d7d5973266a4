// Package session holds the single interactive session: questionnaire
// selections, navigation, theme and persisted learning progress.
package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/recommend"
)

var (
	ErrUnknownView       = errors.New("unknown view")
	ErrInvalidSampleSize = errors.New("sample size must not be negative")
)

// View names a navigational screen.
type View string

const (
	ViewHome                 View = "home"
	ViewTestSelector         View = "test-selector"
	ViewAssumptionChecker    View = "assumption-checker"
	ViewRegressionPlayground View = "regression-playground"
	ViewCases                View = "cases"
	ViewAssessment           View = "assessment"
	ViewGlossary             View = "glossary"
	ViewLearning             View = "learning"
)

var Views = []View{
	ViewHome, ViewTestSelector, ViewAssumptionChecker, ViewRegressionPlayground,
	ViewCases, ViewAssessment, ViewGlossary, ViewLearning,
}

func (v View) Valid() bool { return slices.Contains(Views, v) }

// ParseView converts s to a View.
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.Valid() {
		return "", fmt.Errorf("view %q: %w", s, ErrUnknownView)
	}
	return v, nil
}

// State is the full session state. Only DarkMode and Progress survive a
// restart.
type State struct {
	Outcome    catalog.VariableType    `json:"outcome,omitempty"`
	Design     catalog.StudyDesignType `json:"design,omitempty"`
	Comparison catalog.ComparisonType  `json:"comparison,omitempty"`
	Predictors []catalog.Variable      `json:"predictors"`
	SampleSize int                     `json:"sample_size,omitempty"`
	Paired     bool                    `json:"paired"`
	View       View                    `json:"view"`
	DarkMode   bool                    `json:"dark_mode"`
	Progress   UserProgress            `json:"progress"`
}

// DefaultState is the state of a fresh session.
func DefaultState() State {
	return State{
		Predictors: []catalog.Variable{},
		View:       ViewHome,
		DarkMode:   true,
		Progress:   NewUserProgress(),
	}
}

// Selection returns the questionnaire answers as filter input.
func (s State) Selection() recommend.Selection {
	return recommend.Selection{Outcome: s.Outcome, Design: s.Design, Comparison: s.Comparison}
}

// Persisted returns the part of the state written to storage.
func (s State) Persisted() Persisted {
	return Persisted{DarkMode: s.DarkMode, Progress: s.Progress.clone()}
}

func (s State) clone() State {
	c := s
	c.Predictors = slices.Clone(s.Predictors)
	if c.Predictors == nil {
		c.Predictors = []catalog.Variable{}
	}
	c.Progress = s.Progress.clone()
	return c
}

func (p UserProgress) clone() UserProgress {
	c := p
	c.CompletedModules = nonNil(slices.Clone(p.CompletedModules))
	c.Bookmarks = nonNil(slices.Clone(p.Bookmarks))
	c.AssessmentScores = maps.Clone(p.AssessmentScores)
	if c.AssessmentScores == nil {
		c.AssessmentScores = map[string]int{}
	}
	return c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
