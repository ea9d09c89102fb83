package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service error kinds onto HTTP statuses. Storage failures
// come back 503 so callers know a retry is reasonable.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch appErrors.KindOf(err) {
	case appErrors.KindUnauthorized:
		status = http.StatusUnauthorized
	case appErrors.KindNotFound:
		status = http.StatusNotFound
	case appErrors.KindConflict, appErrors.KindInvalidTransition:
		status = http.StatusConflict
	case appErrors.KindValidation:
		status = http.StatusBadRequest
	case appErrors.KindStorage:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody parses and validates a JSON request payload. Payload shape
// checks stay here at the boundary; the services enforce their own
// invariants independently.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return appErrors.NewValidation(err.Error())
	}
	return nil
}
