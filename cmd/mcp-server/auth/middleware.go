package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyHeader is the custom credential header. It takes precedence over a
// bearer Authorization header when both are present.
const APIKeyHeader = "x-api-key"

// Middleware gates every request behind an exact-match shared secret check.
// The check runs once at the transport boundary, before any tool dispatch.
type Middleware struct {
	secret string
}

// RequireKey creates middleware enforcing the given shared secret.
func RequireKey(secret string) *Middleware {
	return &Middleware{secret: secret}
}

// Handler wraps an HTTP handler with the credential check.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight passes through regardless of credentials
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		candidate := ExtractKey(r)
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(m.secret)) != 1 {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandlerFunc wraps an HTTP handler function with the credential check.
func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.Handler(next).ServeHTTP(w, r)
	}
}

// ExtractKey pulls the candidate credential from the request: the custom
// header first, then a bearer-style Authorization header.
func ExtractKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}

// unauthorized writes the terminal 401 response with permissive CORS headers
// so browser-based clients can read the rejection.
func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+APIKeyHeader)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
