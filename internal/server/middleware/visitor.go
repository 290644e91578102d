package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// visitorIDKey is the context key for storing the visitor ID.
const visitorIDKey ContextKey = "visitorID"

// TokenService signs and checks visitor tokens.
type TokenService interface {
	GenerateToken(visitorID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (VisitorIDGetter, error)
}

// VisitorIDGetter is an interface for extracting the visitor ID from token claims.
type VisitorIDGetter interface {
	VisitorID() uuid.UUID
}

// CookieOptions configures the visitor cookie.
type CookieOptions struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Visitor creates middleware that identifies the visitor by a signed cookie.
// A missing or invalid cookie starts a new visitor and sets a fresh cookie.
func Visitor(tokens TokenService, cookie CookieOptions, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var visitorID uuid.UUID
			if c, err := r.Cookie(cookie.Name); err == nil {
				if claims, err := tokens.ValidateToken(c.Value); err == nil {
					visitorID = claims.VisitorID()
				}
			}

			if visitorID == uuid.Nil {
				visitorID = uuid.New()
				token, err := tokens.GenerateToken(visitorID)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookie.Name,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cookie.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), visitorIDKey, visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetVisitorID extracts the visitor ID from the request context.
func GetVisitorID(r *http.Request) (uuid.UUID, error) {
	visitorID, ok := r.Context().Value(visitorIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("visitor ID not found in request context")
	}
	return visitorID, nil
}

// VisitorIDKey returns the context key for the visitor ID (for testing purposes).
func VisitorIDKey() ContextKey {
	return visitorIDKey
}
