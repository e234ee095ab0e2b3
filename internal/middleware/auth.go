package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pennitter/pennitter-backend/internal/services"
)

type contextKey string

// UserIDKey holds the verified user id in the request context.
const UserIDKey contextKey = "userID"

// BearerToken returns the token from the Authorization header. The client
// sends the raw token; a "Bearer " prefix is tolerated.
func BearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	return strings.TrimPrefix(token, "Bearer ")
}

// RequireAuth verifies the bearer token against both its signature and the
// persisted session. Every failure yields the same uniform response.
func RequireAuth(auth *services.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.Verify(r.Context(), BearerToken(r))
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Failed Authentication"}`))
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
