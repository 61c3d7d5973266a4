package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a document does not match its kind's schema.
var ErrInvalidDocument = errors.New("invalid catalog document")

type jsonObject = map[string]any

func str() jsonObject { return jsonObject{"type": "string"} }

func nonEmpty() jsonObject { return jsonObject{"type": "string", "minLength": 1} }

func boolean() jsonObject { return jsonObject{"type": "boolean"} }

func list(items jsonObject) jsonObject { return jsonObject{"type": "array", "items": items} }

func enumOf[T ~string](set []T) jsonObject {
	values := make([]any, len(set))
	for i, v := range set {
		values[i] = string(v)
	}
	return jsonObject{"type": "string", "enum": values}
}

func object(required []string, props jsonObject) jsonObject {
	o := jsonObject{"type": "object", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func document(item jsonObject) jsonObject {
	return object([]string{"kind", "items"}, jsonObject{
		"kind":  nonEmpty(),
		"items": list(item),
	})
}

func variableSchema() jsonObject {
	return object([]string{"id", "name", "type", "role"}, jsonObject{
		"id":          nonEmpty(),
		"name":        nonEmpty(),
		"type":        enumOf(VariableTypes),
		"description": str(),
		"role":        enumOf(VariableRoles),
	})
}

func itemSchemas() map[string]jsonObject {
	return map[string]jsonObject{
		KindTests: object([]string{"id", "name", "display_name", "category", "applicable_to"}, jsonObject{
			"id":           nonEmpty(),
			"name":         nonEmpty(),
			"display_name": nonEmpty(),
			"category":     enumOf(TestCategories),
			"applicable_to": object([]string{"outcome_types", "study_designs"}, jsonObject{
				"outcome_types":    list(enumOf(VariableTypes)),
				"predictor_types":  list(enumOf(VariableTypes)),
				"comparison_types": list(enumOf(ComparisonTypes)),
				"study_designs":    list(enumOf(StudyDesignTypes)),
			}),
			"assumptions":  list(enumOf(AssumptionTypes)),
			"alternatives": list(nonEmpty()),
			"interpretation": object(nil, jsonObject{
				"output_metrics":     list(str()),
				"clinical_relevance": str(),
			}),
			"examples": list(str()),
		}),
		KindAssumptions: object([]string{"id", "name", "description"}, jsonObject{
			"id":               enumOf(AssumptionTypes),
			"name":             nonEmpty(),
			"description":      str(),
			"how_to_check":     list(str()),
			"what_if_violated": str(),
			"remedies":         list(str()),
		}),
		KindStudyDesigns: object([]string{"id", "name", "characteristics", "strength_of_evidence"}, jsonObject{
			"id":          enumOf(StudyDesignTypes),
			"name":        nonEmpty(),
			"description": str(),
			"characteristics": object([]string{"temporality"}, jsonObject{
				"temporality":   enumOf(Temporalities),
				"intervention":  boolean(),
				"randomization": boolean(),
			}),
			"strength_of_evidence": enumOf(EvidenceStrengths),
			"common_uses":          list(str()),
			"limitations":          list(str()),
		}),
		KindGlossary: object([]string{"id", "term", "definition", "category"}, jsonObject{
			"id":            nonEmpty(),
			"term":          nonEmpty(),
			"definition":    nonEmpty(),
			"category":      enumOf(GlossaryCategories),
			"related_terms": list(nonEmpty()),
			"examples":      list(str()),
		}),
		KindCases: object([]string{"id", "title", "scenario", "data_description", "correct_test"}, jsonObject{
			"id":       nonEmpty(),
			"title":    nonEmpty(),
			"scenario": nonEmpty(),
			"data_description": object([]string{"outcome", "study_design"}, jsonObject{
				"outcome":      variableSchema(),
				"predictors":   list(variableSchema()),
				"sample_size":  jsonObject{"type": "integer", "minimum": 0},
				"study_design": enumOf(StudyDesignTypes),
			}),
			"correct_test": nonEmpty(),
			"incorrect_tests": list(object([]string{"test_id", "why_incorrect"}, jsonObject{
				"test_id":       nonEmpty(),
				"why_incorrect": str(),
			})),
			"interpretation": str(),
		}),
		KindQuestions: object([]string{"id", "type", "question", "options", "difficulty"}, jsonObject{
			"id":       nonEmpty(),
			"type":     enumOf(QuestionTypes),
			"question": nonEmpty(),
			"scenario": str(),
			"options": jsonObject{
				"type":     "array",
				"minItems": 2,
				"items": object([]string{"id", "text", "is_correct"}, jsonObject{
					"id":         nonEmpty(),
					"text":       nonEmpty(),
					"is_correct": boolean(),
				}),
			},
			"explanation": str(),
			"difficulty":  enumOf(Difficulties),
			"tags":        list(str()),
		}),
		KindRegressionModels: object([]string{"id", "name", "outcome_type", "equation"}, jsonObject{
			"id":                    nonEmpty(),
			"name":                  nonEmpty(),
			"outcome_type":          enumOf(VariableTypes),
			"description":           str(),
			"equation":              nonEmpty(),
			"when_to_use":           str(),
			"assumptions":           list(str()),
			"output_interpretation": str(),
			"example":               str(),
			"pros":                  list(str()),
			"cons":                  list(str()),
		}),
	}
}

var compiledSchemas = sync.OnceValues(func() (map[string]*gojsonschema.Schema, error) {
	out := make(map[string]*gojsonschema.Schema)
	for kind, item := range itemSchemas() {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(document(item)))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", kind, err)
		}
		out[kind] = s
	}
	return out, nil
})

// validateDocument checks the raw YAML document against the schema for kind.
func validateDocument(kind string, data []byte) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	s, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("no schema for kind %q", kind)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	res, err := s.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validating %s: %w", kind, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
