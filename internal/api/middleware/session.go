package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/services/session"
	"github.com/csrsef/chatbot/pkg/httpext"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "sessionClaims"
)

// SessionValidator is the part of the session service the gate needs.
type SessionValidator interface {
	ValidateSession(r *http.Request) (*session.SessionClaims, error)
}

// RequireSession rejects requests without a live session cookie. When
// enforce is false it only attaches claims that happen to be present.
func RequireSession(validator SessionValidator, enforce bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := validator.ValidateSession(r)
			if err != nil {
				log.Warn().
					Err(err).
					Str("path", r.URL.Path).
					Msg("Session cookie rejected")
			}

			if claims == nil {
				if enforce {
					httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionClaims retrieves the session claims from the request context
func GetSessionClaims(r *http.Request) *session.SessionClaims {
	if claims, ok := r.Context().Value(sessionClaimsKey).(*session.SessionClaims); ok {
		return claims
	}
	return nil
}
