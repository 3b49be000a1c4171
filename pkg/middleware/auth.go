// Package middleware provides the HTTP middleware chain: API token
// authentication and rate limiting, both in-memory and Redis-backed.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vizboard/vizboard/pkg/contextkeys"
	"github.com/vizboard/vizboard/pkg/teams"
)

// TokenResolver resolves an API token to its user. The team service
// implements this against the users table.
type TokenResolver interface {
	FindUserByToken(ctx context.Context, token string) (*teams.User, error)
}

// AuthMiddleware authenticates requests with a Bearer API token
type AuthMiddleware struct {
	resolver TokenResolver
	optional bool // If true, allow requests without auth
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(resolver TokenResolver, optional bool) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		optional: optional,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Format: "Bearer <token>"
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			m.unauthorizedResponse(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.unauthorizedResponse(w, "invalid authorization header format")
			return
		}

		user, err := m.resolver.FindUserByToken(r.Context(), parts[1])
		if err != nil {
			m.unauthorizedResponse(w, "invalid token")
			return
		}

		ctx := contextkeys.WithUserID(r.Context(), user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
