// Package httputil translates coded domain errors into the JSON error
// envelope and keeps handler request decoding uniform.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "memscope/pkg/domain-errors"
)

// errorBody is the wire envelope: {"error": code, "error_description": msg}.
// The description is omitted for internal and infrastructure failures so
// backend detail never leaks.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodePolicyDenied, dErrors.CodeAccessDenied:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as the JSON error envelope with the status
// mapped from its code.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeInfrastructure {
		body.Description = dErrors.MessageOf(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(code))
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Validatable is a request body that checks itself after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndValidate decodes the body into dst and runs its validation.
// Malformed JSON maps to bad_request; validation failures surface the
// coded error from Validate.
func DecodeAndValidate(r *http.Request, dst Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return dst.Validate()
}
