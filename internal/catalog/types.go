package catalog

// StatisticalTest is one entry of the test catalog.
type StatisticalTest struct {
	ID             string             `yaml:"id" json:"id"`
	Name           string             `yaml:"name" json:"name"`
	DisplayName    string             `yaml:"display_name" json:"display_name"`
	Category       TestCategory       `yaml:"category" json:"category"`
	ApplicableTo   Applicability      `yaml:"applicable_to" json:"applicable_to"`
	Assumptions    []AssumptionType   `yaml:"assumptions" json:"assumptions"`
	Alternatives   []string           `yaml:"alternatives" json:"alternatives"`
	Interpretation TestInterpretation `yaml:"interpretation" json:"interpretation"`
	Examples       []string           `yaml:"examples" json:"examples"`
}

// Applicability describes the situations a test applies to.
type Applicability struct {
	OutcomeTypes    []VariableType    `yaml:"outcome_types" json:"outcome_types"`
	PredictorTypes  []VariableType    `yaml:"predictor_types" json:"predictor_types"`
	ComparisonTypes []ComparisonType  `yaml:"comparison_types" json:"comparison_types"`
	StudyDesigns    []StudyDesignType `yaml:"study_designs" json:"study_designs"`
}

type TestInterpretation struct {
	OutputMetrics     []string `yaml:"output_metrics" json:"output_metrics"`
	ClinicalRelevance string   `yaml:"clinical_relevance" json:"clinical_relevance"`
}

// Assumption is a precondition with guidance on checking and remedying it.
type Assumption struct {
	ID             AssumptionType `yaml:"id" json:"id"`
	Name           string         `yaml:"name" json:"name"`
	Description    string         `yaml:"description" json:"description"`
	HowToCheck     []string       `yaml:"how_to_check" json:"how_to_check"`
	WhatIfViolated string         `yaml:"what_if_violated" json:"what_if_violated"`
	Remedies       []string       `yaml:"remedies" json:"remedies"`
}

// StudyDesign describes a research methodology.
type StudyDesign struct {
	ID                 StudyDesignType  `yaml:"id" json:"id"`
	Name               string           `yaml:"name" json:"name"`
	Description        string           `yaml:"description" json:"description"`
	Characteristics    Characteristics  `yaml:"characteristics" json:"characteristics"`
	StrengthOfEvidence EvidenceStrength `yaml:"strength_of_evidence" json:"strength_of_evidence"`
	CommonUses         []string         `yaml:"common_uses" json:"common_uses"`
	Limitations        []string         `yaml:"limitations" json:"limitations"`
}

type Characteristics struct {
	Temporality   Temporality `yaml:"temporality" json:"temporality"`
	Intervention  bool        `yaml:"intervention" json:"intervention"`
	Randomization bool        `yaml:"randomization" json:"randomization"`
}

// GlossaryTerm is a glossary entry. RelatedTerms refer to other entries by ID.
type GlossaryTerm struct {
	ID           string           `yaml:"id" json:"id"`
	Term         string           `yaml:"term" json:"term"`
	Definition   string           `yaml:"definition" json:"definition"`
	Category     GlossaryCategory `yaml:"category" json:"category"`
	RelatedTerms []string         `yaml:"related_terms" json:"related_terms"`
	Examples     []string         `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Variable is embedded in vignettes; it is not a top-level table.
type Variable struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Type        VariableType `yaml:"type" json:"type"`
	Description string       `yaml:"description" json:"description"`
	Role        VariableRole `yaml:"role" json:"role"`
}

// CaseVignette is a practice scenario with one correct test.
type CaseVignette struct {
	ID              string          `yaml:"id" json:"id"`
	Title           string          `yaml:"title" json:"title"`
	Scenario        string          `yaml:"scenario" json:"scenario"`
	DataDescription DataDescription `yaml:"data_description" json:"data_description"`
	CorrectTest     string          `yaml:"correct_test" json:"correct_test"`
	IncorrectTests  []IncorrectTest `yaml:"incorrect_tests" json:"incorrect_tests"`
	Interpretation  string          `yaml:"interpretation" json:"interpretation"`
}

type DataDescription struct {
	Outcome     Variable        `yaml:"outcome" json:"outcome"`
	Predictors  []Variable      `yaml:"predictors" json:"predictors"`
	SampleSize  int             `yaml:"sample_size" json:"sample_size"`
	StudyDesign StudyDesignType `yaml:"study_design" json:"study_design"`
}

type IncorrectTest struct {
	TestID       string `yaml:"test_id" json:"test_id"`
	WhyIncorrect string `yaml:"why_incorrect" json:"why_incorrect"`
}

// AssessmentQuestion is a quiz question with exactly one correct option.
type AssessmentQuestion struct {
	ID          string       `yaml:"id" json:"id"`
	Type        QuestionType `yaml:"type" json:"type"`
	Question    string       `yaml:"question" json:"question"`
	Scenario    string       `yaml:"scenario,omitempty" json:"scenario,omitempty"`
	Options     []Option     `yaml:"options" json:"options"`
	Explanation string       `yaml:"explanation" json:"explanation"`
	Difficulty  Difficulty   `yaml:"difficulty" json:"difficulty"`
	Tags        []string     `yaml:"tags" json:"tags"`
}

type Option struct {
	ID        string `yaml:"id" json:"id"`
	Text      string `yaml:"text" json:"text"`
	IsCorrect bool   `yaml:"is_correct" json:"is_correct"`
}

// RegressionModel is an entry of the regression playground guide.
type RegressionModel struct {
	ID                   string       `yaml:"id" json:"id"`
	Name                 string       `yaml:"name" json:"name"`
	OutcomeType          VariableType `yaml:"outcome_type" json:"outcome_type"`
	Description          string       `yaml:"description" json:"description"`
	Equation             string       `yaml:"equation" json:"equation"`
	WhenToUse            string       `yaml:"when_to_use" json:"when_to_use"`
	Assumptions          []string     `yaml:"assumptions" json:"assumptions"`
	OutputInterpretation string       `yaml:"output_interpretation" json:"output_interpretation"`
	Example              string       `yaml:"example" json:"example"`
	Pros                 []string     `yaml:"pros" json:"pros"`
	Cons                 []string     `yaml:"cons" json:"cons"`
}
