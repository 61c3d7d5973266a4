package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/session"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("variable_type", enumValidator(catalog.VariableType.Valid))
	v.RegisterValidation("study_design", enumValidator(catalog.StudyDesignType.Valid))
	v.RegisterValidation("comparison_type", enumValidator(catalog.ComparisonType.Valid))
	v.RegisterValidation("assumption", enumValidator(catalog.AssumptionType.Valid))
	v.RegisterValidation("difficulty", enumValidator(catalog.Difficulty.Valid))
	v.RegisterValidation("variable_role", enumValidator(catalog.VariableRole.Valid))
	v.RegisterValidation("view", enumValidator(session.View.Valid))

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func enumValidator[T ~string](valid func(T) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(T(fl.Field().String()))
	}
}

type predictorRequest struct {
	ID          string               `json:"id" validate:"required"`
	Name        string               `json:"name" validate:"required"`
	Type        catalog.VariableType `json:"type" validate:"required,variable_type"`
	Description string               `json:"description"`
	Role        catalog.VariableRole `json:"role" validate:"omitempty,variable_role"`
}

type selectionRequest struct {
	Outcome    catalog.VariableType    `json:"outcome" validate:"omitempty,variable_type"`
	Design     catalog.StudyDesignType `json:"design" validate:"omitempty,study_design"`
	Comparison catalog.ComparisonType  `json:"comparison" validate:"omitempty,comparison_type"`
	Predictors []predictorRequest      `json:"predictors" validate:"dive"`
	SampleSize int                     `json:"sample_size" validate:"min=0"`
	Paired     bool                    `json:"paired"`
}

type viewRequest struct {
	View session.View `json:"view" validate:"required,view"`
}

type testRequest struct {
	TestID string `json:"test_id" validate:"required"`
}

type assumptionRequest struct {
	Assumption catalog.AssumptionType `json:"assumption" validate:"required,assumption"`
}

type difficultyRequest struct {
	Difficulty catalog.Difficulty `json:"difficulty" validate:"omitempty,difficulty"`
}

type optionRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}
