package service

import (
	"errors"
	"fmt"
	"strings"

	"trendhive/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the `validate` tags of v and reports the first
// failure as a model.ValidationError
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	return fieldError(errs[0])
}

func fieldError(fe validator.FieldError) error {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return model.NewValidationError(field, field+" is required")
	case "email":
		return model.NewValidationError(field, "invalid email address")
	case "min":
		return model.NewValidationError(field, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	case "max":
		return model.NewValidationError(field, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
	default:
		return model.NewValidationError(field, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Validator adapts the request struct validation to echo.Validator
type Validator struct{}

// Validate reports the first failing `validate` tag as a model.ValidationError
func (Validator) Validate(i interface{}) error {
	return validateStruct(i)
}
