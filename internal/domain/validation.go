package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// candidate mirrors the constrained fields of Fields after trimming.
// The max tag must stay in sync with MaxNameLength.
type candidate struct {
	Name string `validate:"required,max=80"`
}

// TrimName normalizes a strategy name the way it is validated and stored.
func TrimName(name string) string {
	return strings.TrimSpace(name)
}

// Validate checks candidate fields before they enter the collection.
// Rules are applied in order and the first failure wins.
func Validate(f Fields) error {
	err := validate.Struct(candidate{Name: TrimName(f.Name)})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Tag() {
		case "required":
			return &ValidationError{Field: "name", Reason: "name required"}
		case "max":
			return &ValidationError{Field: "name", Reason: "name too long"}
		}
	}
	return &ValidationError{Field: "name", Reason: err.Error()}
}
