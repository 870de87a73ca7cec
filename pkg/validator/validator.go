package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	apperrors "github.com/cofinco/backoffice/internal/domain/errors"
)

// Validator provides validation functions for request data
type Validator interface {
	// Validate validates a struct based on its validate tags
	Validate(i interface{}) error
}

// New creates a new validator reporting field names by their json tag
func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &playgroundValidator{validate: v}
}

type playgroundValidator struct {
	validate *playground.Validate
}

// Validate returns MissingField for the first absent required field and
// ValidationError for any other rule
func (v *playgroundValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError(err.Error())
	}

	first := fieldErrs[0]
	if first.Tag() == "required" {
		return apperrors.NewMissingFieldError(first.Field())
	}
	return apperrors.NewValidationError(fmt.Sprintf("%s failed %s validation", first.Field(), first.Tag())).
		WithDetail("field", first.Field())
}
