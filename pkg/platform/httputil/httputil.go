package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "idflow/pkg/domain-errors"
)

// ErrorResponse is the envelope returned to callers on failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// Anything that is not a domain error is reported as a 500 carrying its message,
// which keeps provider transport failures visible to the caller.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status = DomainCodeToHTTPStatus(domainErr.Code)
	}
	WriteJSON(w, status, ErrorResponse{Success: false, Error: err.Error()})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// A session that cannot be resumed is reported as a bad request whether it is
// missing or unreadable: the caller must start a fresh session either way.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeCorrupt:
		return http.StatusBadRequest
	case dErrors.CodeMalformedUpstream, dErrors.CodeUpstream, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
