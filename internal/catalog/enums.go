package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownValue is returned when an enum value is not part of its closed set.
var ErrUnknownValue = errors.New("unknown value")

// VariableType classifies a variable (and in particular the outcome).
type VariableType string

const (
	Continuous  VariableType = "continuous"
	Categorical VariableType = "categorical"
	Ordinal     VariableType = "ordinal"
	Binary      VariableType = "binary"
	TimeToEvent VariableType = "time-to-event"
	Count       VariableType = "count"
)

// VariableTypes lists every variable type in questionnaire order.
var VariableTypes = []VariableType{Continuous, Binary, Categorical, Ordinal, Count, TimeToEvent}

// StudyDesignType identifies a research methodology.
type StudyDesignType string

const (
	RCT                StudyDesignType = "rct"
	Cohort             StudyDesignType = "cohort"
	CaseControl        StudyDesignType = "case-control"
	CrossSectional     StudyDesignType = "cross-sectional"
	DiagnosticAccuracy StudyDesignType = "diagnostic-accuracy"
	BeforeAfter        StudyDesignType = "before-after"
	TimeSeries         StudyDesignType = "time-series"
)

var StudyDesignTypes = []StudyDesignType{RCT, Cohort, CaseControl, CrossSectional, DiagnosticAccuracy, BeforeAfter, TimeSeries}

// ComparisonType is the structural relationship being tested.
type ComparisonType string

const (
	TwoGroups      ComparisonType = "two-groups"
	MultipleGroups ComparisonType = "multiple-groups"
	Paired         ComparisonType = "paired"
	Regression     ComparisonType = "regression"
	Correlation    ComparisonType = "correlation"
	Proportion     ComparisonType = "proportion"
)

var ComparisonTypes = []ComparisonType{TwoGroups, MultipleGroups, Paired, Regression, Correlation, Proportion}

// AssumptionType identifies a precondition a test requires of the data.
type AssumptionType string

const (
	Normality           AssumptionType = "normality"
	Homoscedasticity    AssumptionType = "homoscedasticity"
	Independence        AssumptionType = "independence"
	Linearity           AssumptionType = "linearity"
	ProportionalHazards AssumptionType = "proportional-hazards"
	NoMulticollinearity AssumptionType = "no-multicollinearity"
)

var AssumptionTypes = []AssumptionType{Normality, Homoscedasticity, Independence, Linearity, ProportionalHazards, NoMulticollinearity}

type TestCategory string

const (
	Parametric    TestCategory = "parametric"
	NonParametric TestCategory = "non-parametric"
	RegressionCat TestCategory = "regression"
	Survival      TestCategory = "survival"
)

var TestCategories = []TestCategory{Parametric, NonParametric, RegressionCat, Survival}

type Temporality string

const (
	Prospective          Temporality = "prospective"
	Retrospective        Temporality = "retrospective"
	CrossSectionalTiming Temporality = "cross-sectional"
)

var Temporalities = []Temporality{Prospective, Retrospective, CrossSectionalTiming}

type EvidenceStrength string

const (
	EvidenceHigh     EvidenceStrength = "high"
	EvidenceModerate EvidenceStrength = "moderate"
	EvidenceLow      EvidenceStrength = "low"
)

var EvidenceStrengths = []EvidenceStrength{EvidenceHigh, EvidenceModerate, EvidenceLow}

type GlossaryCategory string

const (
	GlossaryTest       GlossaryCategory = "test"
	GlossaryConcept    GlossaryCategory = "concept"
	GlossaryAssumption GlossaryCategory = "assumption"
	GlossaryMeasure    GlossaryCategory = "measure"
	GlossaryDesign     GlossaryCategory = "design"
)

var GlossaryCategories = []GlossaryCategory{GlossaryTest, GlossaryConcept, GlossaryAssumption, GlossaryMeasure, GlossaryDesign}

type VariableRole string

const (
	RoleOutcome        VariableRole = "outcome"
	RolePredictor      VariableRole = "predictor"
	RoleConfounder     VariableRole = "confounder"
	RoleStratification VariableRole = "stratification"
)

var VariableRoles = []VariableRole{RoleOutcome, RolePredictor, RoleConfounder, RoleStratification}

type QuestionType string

const (
	MultipleChoice  QuestionType = "multiple-choice"
	Scenario        QuestionType = "scenario"
	AssumptionCheck QuestionType = "assumption-check"
	Interpretation  QuestionType = "interpretation"
)

var QuestionTypes = []QuestionType{MultipleChoice, Scenario, AssumptionCheck, Interpretation}

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

func (v VariableType) Valid() bool     { return slices.Contains(VariableTypes, v) }
func (v StudyDesignType) Valid() bool  { return slices.Contains(StudyDesignTypes, v) }
func (v ComparisonType) Valid() bool   { return slices.Contains(ComparisonTypes, v) }
func (v AssumptionType) Valid() bool   { return slices.Contains(AssumptionTypes, v) }
func (v TestCategory) Valid() bool     { return slices.Contains(TestCategories, v) }
func (v Temporality) Valid() bool      { return slices.Contains(Temporalities, v) }
func (v EvidenceStrength) Valid() bool { return slices.Contains(EvidenceStrengths, v) }
func (v GlossaryCategory) Valid() bool { return slices.Contains(GlossaryCategories, v) }
func (v VariableRole) Valid() bool     { return slices.Contains(VariableRoles, v) }
func (v QuestionType) Valid() bool     { return slices.Contains(QuestionTypes, v) }
func (v Difficulty) Valid() bool       { return slices.Contains(Difficulties, v) }

// ParseVariableType converts s to a VariableType. The empty string parses to
// the unset value.
func ParseVariableType(s string) (VariableType, error) {
	return parseEnum("variable type", s, VariableTypes)
}

func ParseStudyDesignType(s string) (StudyDesignType, error) {
	return parseEnum("study design", s, StudyDesignTypes)
}

func ParseComparisonType(s string) (ComparisonType, error) {
	return parseEnum("comparison type", s, ComparisonTypes)
}

func ParseAssumptionType(s string) (AssumptionType, error) {
	return parseEnum("assumption", s, AssumptionTypes)
}

func ParseDifficulty(s string) (Difficulty, error) {
	return parseEnum("difficulty", s, Difficulties)
}

func ParseGlossaryCategory(s string) (GlossaryCategory, error) {
	return parseEnum("glossary category", s, GlossaryCategories)
}

func parseEnum[T ~string](what, s string, set []T) (T, error) {
	v := T(s)
	if s == "" || slices.Contains(set, v) {
		return v, nil
	}
	return "", fmt.Errorf("%s %q: %w", what, s, ErrUnknownValue)
}

// checkEnum reports an error naming field when v lies outside set.
func checkEnum[T ~string](field string, v T, set []T) error {
	if !slices.Contains(set, v) {
		return fmt.Errorf("%s %q: %w", field, string(v), ErrUnknownValue)
	}
	return nil
}

func checkEnums[T ~string](field string, vs []T, set []T) error {
	for _, v := range vs {
		if err := checkEnum(field, v, set); err != nil {
			return err
		}
	}
	return nil
}
