package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fleet-backend/internal/apperrors"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

// Error writes a plain message with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Message: message})
}

// WriteError maps err onto a status and body. Unexpected errors are logged
// and answered with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] unexpected error: %v", err)
		Error(w, status, "internal server error")
		return
	}

	body := ErrorResponse{Message: err.Error()}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}
	JSON(w, status, body)
}

// DecodeJSON reads a JSON body into dst, rejecting malformed input as a validation error.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid request body: " + err.Error())
	}
	return nil
}
