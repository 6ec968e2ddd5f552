package request

import (
	"net/http"
)

// DefaultMaxBodyBytes bounds webhook and API request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit caps request bodies with http.MaxBytesReader. Reads past the limit
// fail, which the JSON decoders surface as an invalid request body.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
