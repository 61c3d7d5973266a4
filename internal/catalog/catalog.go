// Package catalog holds the static reference tables: statistical tests,
// assumptions, study designs, glossary terms, case vignettes, assessment
// questions and regression models.
package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Tables is the raw content of a catalog, each table in source order.
type Tables struct {
	Tests            []StatisticalTest    `json:"tests"`
	Assumptions      []Assumption         `json:"assumptions"`
	StudyDesigns     []StudyDesign        `json:"study_designs"`
	Glossary         []GlossaryTerm       `json:"glossary"`
	Cases            []CaseVignette       `json:"cases"`
	Questions        []AssessmentQuestion `json:"questions"`
	RegressionModels []RegressionModel    `json:"regression_models"`
}

// Catalog is an immutable, indexed view over Tables. It is safe for
// concurrent reads.
type Catalog struct {
	tables Tables

	tests       map[string]int
	assumptions map[AssumptionType]int
	designs     map[StudyDesignType]int
	glossary    map[string]int
	cases       map[string]int
	questions   map[string]int
	models      map[string]int

	fingerprint string
}

// DanglingRef is a cross-reference whose target does not exist.
type DanglingRef struct {
	Table  string `json:"table"`
	ItemID string `json:"item_id"`
	Field  string `json:"field"`
	Ref    string `json:"ref"`
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("%s[%s].%s -> %s", d.Table, d.ItemID, d.Field, d.Ref)
}

// New indexes t. It rejects enum values outside their sets and duplicate IDs
// within a table; cross-references are left unchecked.
func New(t Tables) (*Catalog, error) {
	if err := checkTables(t); err != nil {
		return nil, err
	}

	c := &Catalog{
		tables:      t,
		tests:       make(map[string]int, len(t.Tests)),
		assumptions: make(map[AssumptionType]int, len(t.Assumptions)),
		designs:     make(map[StudyDesignType]int, len(t.StudyDesigns)),
		glossary:    make(map[string]int, len(t.Glossary)),
		cases:       make(map[string]int, len(t.Cases)),
		questions:   make(map[string]int, len(t.Questions)),
		models:      make(map[string]int, len(t.RegressionModels)),
	}

	for i, x := range t.Tests {
		if err := index(c.tests, "tests", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.Assumptions {
		if err := index(c.assumptions, "assumptions", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.StudyDesigns {
		if err := index(c.designs, "study-designs", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.Glossary {
		if err := index(c.glossary, "glossary", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.Cases {
		if err := index(c.cases, "cases", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.Questions {
		if err := index(c.questions, "questions", x.ID, i); err != nil {
			return nil, err
		}
	}
	for i, x := range t.RegressionModels {
		if err := index(c.models, "regression-models", x.ID, i); err != nil {
			return nil, err
		}
	}

	fp, err := fingerprint(t)
	if err != nil {
		return nil, err
	}
	c.fingerprint = fp

	return c, nil
}

func index[K comparable](m map[K]int, table string, id K, i int) error {
	if _, dup := m[id]; dup {
		return fmt.Errorf("%s: duplicate id %v", table, id)
	}
	m[id] = i
	return nil
}

func fingerprint(t Tables) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding tables: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprint is a hex BLAKE2b-256 digest of the table content.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Tables returns the underlying tables. Callers must not modify them.
func (c *Catalog) Tables() Tables { return c.tables }

func (c *Catalog) Tests() []StatisticalTest            { return c.tables.Tests }
func (c *Catalog) Assumptions() []Assumption           { return c.tables.Assumptions }
func (c *Catalog) StudyDesigns() []StudyDesign         { return c.tables.StudyDesigns }
func (c *Catalog) Glossary() []GlossaryTerm            { return c.tables.Glossary }
func (c *Catalog) Cases() []CaseVignette               { return c.tables.Cases }
func (c *Catalog) Questions() []AssessmentQuestion     { return c.tables.Questions }
func (c *Catalog) RegressionModels() []RegressionModel { return c.tables.RegressionModels }

// Test returns a test by ID.
func (c *Catalog) Test(id string) (StatisticalTest, bool) {
	return lookup(c.tables.Tests, c.tests, id)
}

// Assumption returns an assumption by ID.
func (c *Catalog) Assumption(id AssumptionType) (Assumption, bool) {
	return lookup(c.tables.Assumptions, c.assumptions, id)
}

// StudyDesign returns a study design by ID.
func (c *Catalog) StudyDesign(id StudyDesignType) (StudyDesign, bool) {
	return lookup(c.tables.StudyDesigns, c.designs, id)
}

// Term returns a glossary term by ID.
func (c *Catalog) Term(id string) (GlossaryTerm, bool) {
	return lookup(c.tables.Glossary, c.glossary, id)
}

// Case returns a case vignette by ID.
func (c *Catalog) Case(id string) (CaseVignette, bool) {
	return lookup(c.tables.Cases, c.cases, id)
}

// Question returns an assessment question by ID.
func (c *Catalog) Question(id string) (AssessmentQuestion, bool) {
	return lookup(c.tables.Questions, c.questions, id)
}

// RegressionModel returns a regression model by ID.
func (c *Catalog) RegressionModel(id string) (RegressionModel, bool) {
	return lookup(c.tables.RegressionModels, c.models, id)
}

func lookup[K comparable, T any](rows []T, idx map[K]int, id K) (T, bool) {
	i, ok := idx[id]
	if !ok {
		var zero T
		return zero, false
	}
	return rows[i], true
}

// Integrity lists cross-references that point at missing rows. It does not
// fail; dangling references are dropped by every query.
func (c *Catalog) Integrity() []DanglingRef {
	var out []DanglingRef
	for _, t := range c.tables.Tests {
		for _, a := range t.Assumptions {
			if _, ok := c.assumptions[a]; !ok {
				out = append(out, DanglingRef{"tests", t.ID, "assumptions", string(a)})
			}
		}
		for _, alt := range t.Alternatives {
			if _, ok := c.tests[alt]; !ok {
				out = append(out, DanglingRef{"tests", t.ID, "alternatives", alt})
			}
		}
	}
	for _, g := range c.tables.Glossary {
		for _, r := range g.RelatedTerms {
			if _, ok := c.glossary[r]; !ok {
				out = append(out, DanglingRef{"glossary", g.ID, "related_terms", r})
			}
		}
	}
	for _, v := range c.tables.Cases {
		if _, ok := c.tests[v.CorrectTest]; !ok {
			out = append(out, DanglingRef{"cases", v.ID, "correct_test", v.CorrectTest})
		}
		for _, it := range v.IncorrectTests {
			if _, ok := c.tests[it.TestID]; !ok {
				out = append(out, DanglingRef{"cases", v.ID, "incorrect_tests", it.TestID})
			}
		}
		if _, ok := c.designs[v.DataDescription.StudyDesign]; !ok {
			out = append(out, DanglingRef{"cases", v.ID, "study_design", string(v.DataDescription.StudyDesign)})
		}
	}
	return out
}

func checkTables(t Tables) error {
	for _, x := range t.Tests {
		if err := checkTest(x); err != nil {
			return fmt.Errorf("tests[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.Assumptions {
		if err := checkEnum("id", x.ID, AssumptionTypes); err != nil {
			return fmt.Errorf("assumptions[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.StudyDesigns {
		if err := checkDesign(x); err != nil {
			return fmt.Errorf("study-designs[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.Glossary {
		if err := checkEnum("category", x.Category, GlossaryCategories); err != nil {
			return fmt.Errorf("glossary[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.Cases {
		if err := checkCase(x); err != nil {
			return fmt.Errorf("cases[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.Questions {
		if err := checkQuestion(x); err != nil {
			return fmt.Errorf("questions[%s]: %w", x.ID, err)
		}
	}
	for _, x := range t.RegressionModels {
		if err := checkEnum("outcome_type", x.OutcomeType, VariableTypes); err != nil {
			return fmt.Errorf("regression-models[%s]: %w", x.ID, err)
		}
	}
	return nil
}

func checkTest(x StatisticalTest) error {
	if err := checkEnum("category", x.Category, TestCategories); err != nil {
		return err
	}
	a := x.ApplicableTo
	if err := checkEnums("outcome_types", a.OutcomeTypes, VariableTypes); err != nil {
		return err
	}
	if err := checkEnums("predictor_types", a.PredictorTypes, VariableTypes); err != nil {
		return err
	}
	if err := checkEnums("comparison_types", a.ComparisonTypes, ComparisonTypes); err != nil {
		return err
	}
	if err := checkEnums("study_designs", a.StudyDesigns, StudyDesignTypes); err != nil {
		return err
	}
	return checkEnums("assumptions", x.Assumptions, AssumptionTypes)
}

func checkDesign(x StudyDesign) error {
	if err := checkEnum("id", x.ID, StudyDesignTypes); err != nil {
		return err
	}
	if err := checkEnum("temporality", x.Characteristics.Temporality, Temporalities); err != nil {
		return err
	}
	return checkEnum("strength_of_evidence", x.StrengthOfEvidence, EvidenceStrengths)
}

func checkCase(x CaseVignette) error {
	vars := append([]Variable{x.DataDescription.Outcome}, x.DataDescription.Predictors...)
	for _, v := range vars {
		if err := checkEnum("variable type", v.Type, VariableTypes); err != nil {
			return err
		}
		if err := checkEnum("variable role", v.Role, VariableRoles); err != nil {
			return err
		}
	}
	return checkEnum("study_design", x.DataDescription.StudyDesign, StudyDesignTypes)
}

func checkQuestion(x AssessmentQuestion) error {
	if err := checkEnum("type", x.Type, QuestionTypes); err != nil {
		return err
	}
	return checkEnum("difficulty", x.Difficulty, Difficulties)
}
