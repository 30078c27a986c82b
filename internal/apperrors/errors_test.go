package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"business rule", BusinessRule("amount %d exceeds", 5), http.StatusBadRequest},
		{"not found", NotFound("payment", 3), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", NotFound("load", "RNT-2026-001")), http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMissingFields(t *testing.T) {
	err := MissingFields("from_location", "to_location")
	assert.Equal(t, "missing required fields: from_location, to_location", err.Error())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
}

func TestFieldValidationMessageIsSorted(t *testing.T) {
	err := FieldValidation(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "a: one; b: two", err.Error())
}

func TestFromValidator(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
		Kind string `validate:"oneof=income expense"`
	}
	err := FromValidator(validator.New().Struct(req{Kind: "other"}))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["Name"])
	assert.Equal(t, "must be one of: income expense", verr.Fields["Kind"])

	plain := errors.New("not a validator error")
	assert.Equal(t, plain, FromValidator(plain))
}
