package middleware

import "net/http"

// MaxBodySize caps the request body, returning 413 on overrun via the
// http.MaxBytesReader error path in the JSON decoder.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
