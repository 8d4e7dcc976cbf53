// Package httputil provides small JSON helpers shared by HTTP handlers.
// Domain-specific error envelopes (the TPP message format) live with their
// handlers; this package only knows the generic error shape.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "xs2gate/pkg/domain-errors"
)

// WriteJSON serialises v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode parses a JSON request body into T. A malformed body is a coded
// bad-request error.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&v); err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request body")
	}
	return v, nil
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError renders a coded error in the generic shape. Internal errors
// never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)

	body := errorBody{Error: wireName(code)}
	if status < http.StatusInternalServerError {
		var derr *dErrors.Error
		if errors.As(err, &derr) {
			body.Description = derr.Message
		}
	}
	WriteJSON(w, status, body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func wireName(code dErrors.Code) string {
	switch code {
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeInvalidInput:
		return "invalid_input"
	case dErrors.CodeBadRequest:
		return "bad_request"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}
