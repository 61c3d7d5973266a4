package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document kinds accepted by the loader.
const (
	KindTests            = "tests"
	KindAssumptions      = "assumptions"
	KindStudyDesigns     = "study-designs"
	KindGlossary         = "glossary"
	KindCases            = "cases"
	KindQuestions        = "questions"
	KindRegressionModels = "regression-models"
)

type decodeFunc func(data []byte, t *Tables) error

var decoders = map[string]decodeFunc{
	KindTests:            appendItems(func(t *Tables) *[]StatisticalTest { return &t.Tests }),
	KindAssumptions:      appendItems(func(t *Tables) *[]Assumption { return &t.Assumptions }),
	KindStudyDesigns:     appendItems(func(t *Tables) *[]StudyDesign { return &t.StudyDesigns }),
	KindGlossary:         appendItems(func(t *Tables) *[]GlossaryTerm { return &t.Glossary }),
	KindCases:            appendItems(func(t *Tables) *[]CaseVignette { return &t.Cases }),
	KindQuestions:        appendItems(func(t *Tables) *[]AssessmentQuestion { return &t.Questions }),
	KindRegressionModels: appendItems(func(t *Tables) *[]RegressionModel { return &t.RegressionModels }),
}

func appendItems[T any](table func(*Tables) *[]T) decodeFunc {
	return func(data []byte, t *Tables) error {
		var doc struct {
			Items []T `yaml:"items"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		dst := table(t)
		*dst = append(*dst, doc.Items...)
		return nil
	}
}

// Default builds the catalog from the embedded reference documents.
func Default() (*Catalog, error) {
	return LoadFS(embedded, "data")
}

// Load builds a catalog from the YAML documents under dir.
func Load(dir string) (*Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS builds a catalog from the YAML documents under root in fsys. Files
// are read in lexical path order; documents of the same kind are appended in
// that order.
func LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	paths, err := documentPaths(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var t Tables
	for _, p := range paths {
		if err := loadDocument(fsys, p, &t); err != nil {
			return nil, fmt.Errorf("loading catalog: %s: %w", p, err)
		}
	}

	c, err := New(t)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if dangling := c.Integrity(); len(dangling) > 0 {
		slog.Warn("catalog has dangling references", "count", len(dangling))
	}

	slog.Info("catalog loaded",
		"tests", len(t.Tests),
		"assumptions", len(t.Assumptions),
		"study_designs", len(t.StudyDesigns),
		"glossary", len(t.Glossary),
		"cases", len(t.Cases),
		"questions", len(t.Questions),
		"regression_models", len(t.RegressionModels),
	)
	return c, nil
}

func documentPaths(fsys fs.FS, root string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

func loadDocument(fsys fs.FS, p string, t *Tables) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return err
	}

	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	kind := strings.TrimSpace(head.Kind)
	decode, ok := decoders[kind]
	if !ok {
		slog.Warn("skipping catalog document", "path", p, "kind", kind)
		return nil
	}

	if err := validateDocument(kind, data); err != nil {
		return err
	}
	if err := decode(data, t); err != nil {
		return fmt.Errorf("decoding %s: %w", kind, err)
	}
	return nil
}
