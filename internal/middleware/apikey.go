package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey returns an HTTP middleware that requires the configured key in the
// given header on every request. An empty key disables the check, which is
// the development default; production config refuses to start that way.
func APIKey(header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"code":    http.StatusUnauthorized,
					"message": "unauthorized: provide a valid API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
