// Package appMiddleware holds HTTP middleware shared across the routers.
package appMiddleware

import (
	"crypto/subtle"
	"net/http"
)

// RequireOpsKey guards operational endpoints behind a static API key in the
// X-API-Key header. An empty configured key disables the check, which is
// the local development default.
func RequireOpsKey(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" {
				got := r.Header.Get("X-API-Key")
				if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
					http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
