package middleware

import (
	"context"
	"net/http"

	"github.com/daycast/backend/internal/auth"
)

// RequireAuth validates the session token (cookie or Authorization
// Bearer header) and injects the user_id into the request context.
func RequireAuth(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
				token = cookie.Value
			}
			if token == "" {
				token = auth.BearerToken(r)
			}
			if token == "" {
				http.Error(w, `{"message":"No authentication token provided"}`, http.StatusUnauthorized)
				return
			}

			userID, err := sessions.Get(r.Context(), token)
			if err != nil || userID == "" {
				http.Error(w, `{"message":"session expired"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
