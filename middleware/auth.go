package middleware

import (
	"context"
	"net/http"

	"kotochan-birthday/session"

	"github.com/go-chi/render"
)

type contextKey string

// SessionContextKey carries the validated session token through the request
// context for handlers that want it.
const SessionContextKey = contextKey("session")

// RequireSession guards admin routes behind a valid session cookie.
func RequireSession(gate *session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]any{"success": false, "message": "認証が必要です"})
				return
			}

			if !gate.Validate(r.Context(), token) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]any{"success": false, "message": "認証が必要です"})
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
