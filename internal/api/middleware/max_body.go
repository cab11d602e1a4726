package middleware

import (
	"net/http"
)

// MaxBody returns a middleware that caps request body size at maxBytes.
// Reads past the cap fail with *http.MaxBytesError, which body-decoding
// handlers translate into 413 Content Too Large. Use 0 or negative to
// disable the cap.
func MaxBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
