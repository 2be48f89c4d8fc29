package security

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyMiddleware guards mutating endpoints with a shared API key. An
// empty key disables the guard entirely, which is the default for farm
// deployments on a private network. Read endpoints, health checks,
// metrics, and documentation stay open either way.
func APIKeyMiddleware(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requiresKey(r) {
			next.ServeHTTP(w, r)
			return
		}
		if !validateAPIKey(r, key) {
			http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requiresKey reports whether the request mutates state. Only POSTs to
// the data and detection endpoints need the key.
func requiresKey(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/swagger") {
		return false
	}
	return true
}

// validateAPIKey accepts the key from either the X-API-Key header or a
// Bearer token, compared in constant time.
func validateAPIKey(r *http.Request, key string) bool {
	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			apiKey = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1
}
