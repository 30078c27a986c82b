package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleet-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantFields bool
	}{
		{"validation", apperrors.MissingFields("vehicle_type", "rental_amount"), http.StatusBadRequest, "missing required fields: vehicle_type, rental_amount", true},
		{"not found", apperrors.NotFound("bill", 7), http.StatusNotFound, "bill 7 not found", false},
		{"business rule", apperrors.BusinessRule("already fully paid"), http.StatusBadRequest, "already fully paid", false},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantFields, len(body.Errors) > 0)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(req, &dst)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
