package screen

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/optica/admin/internal/domain/shared"
)

// Validator checks form inputs against their `validate` tags
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator reporting fields by their JSON names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns a *shared.ValidationError listing every failing field,
// or nil
func (val *Validator) Validate(input any) error {
	err := val.v.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &shared.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = fe.Field() + ": " + validationMessage(fe)
	}
	return out
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Map || e.Kind() == reflect.Slice {
			return "Select at least " + e.Param()
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "eqfield":
		return "Must match " + e.Param()
	case "datetime":
		return "Must be a date formatted " + e.Param()
	case "number", "numeric":
		return "Must be numeric"
	case "url":
		return "Invalid URL format"
	default:
		return "Invalid value"
	}
}
