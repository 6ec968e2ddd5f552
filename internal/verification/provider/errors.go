package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory classifies transport failures for metrics and logs.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorProviderOutage ErrorCategory = "provider_outage"
	ErrorNotFound       ErrorCategory = "not_found"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorRejected       ErrorCategory = "rejected"
	ErrorInternal       ErrorCategory = "internal"
)

// TransportError is any failure to obtain a decoded 2xx response from the
// provider: request construction, network, non-2xx status or an undecodable body.
type TransportError struct {
	Category ErrorCategory
	Method   string
	Path     string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Body is the provider's error body, if any.
	Body string
	Err  error
}

// Error renders "HTTP Get Error: Request failed with code 404" for status
// failures and "HTTP Post Error: <cause>" otherwise.
func (e *TransportError) Error() string {
	verb := "Get"
	if e.Method == http.MethodPost {
		verb = "Post"
	}
	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return fmt.Sprintf("HTTP %s Error: Request failed with code %d", verb, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("HTTP %s Error: %v", verb, e.Err)
	}
	return fmt.Sprintf("HTTP %s Error", verb)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// categoryForStatus maps a non-2xx status to an error category.
func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuthentication
	case status == http.StatusNotFound:
		return ErrorNotFound
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status >= 500:
		return ErrorProviderOutage
	default:
		return ErrorRejected
	}
}

// IsTransportError reports whether err carries a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Category extracts the category of a transport failure, or ErrorInternal.
func Category(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrorInternal
}

const maxErrorBody = 4 << 10

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
