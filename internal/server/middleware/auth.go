// Package middleware provides HTTP middleware for visitor identification and
// access control.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// PasswordVerifier checks a password against a stored hash.
type PasswordVerifier interface {
	VerifyPassword(password, storedHash string) bool
}

// BasicAuthOptions configures BasicAuth.
type BasicAuthOptions struct {
	Realm        string
	Username     string
	PasswordHash string
	Verifier     PasswordVerifier
	// Exempt paths are served without credentials.
	Exempt []string
}

// BasicAuth creates middleware that requires HTTP basic auth credentials
// matching the configured username and password hash.
func BasicAuth(opts BasicAuthOptions) func(http.Handler) http.Handler {
	exempt := make(map[string]bool, len(opts.Exempt))
	for _, p := range opts.Exempt {
		exempt[p] = true
	}
	realm := opts.Realm
	if realm == "" {
		realm = "restricted"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(opts.Username)) != 1 ||
				!opts.Verifier.VerifyPassword(password, opts.PasswordHash) {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
