// Package validation holds the shared request validator.
package validation

import (
	"reflect"
	"strings"

	"fleet-backend/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so field errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s and returns an apperrors.ValidationError on failure.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return apperrors.FromValidator(err)
	}
	return nil
}
