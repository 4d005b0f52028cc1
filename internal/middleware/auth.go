package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/paperbark/kindwords/internal/auth"
	"github.com/paperbark/kindwords/internal/session"
	"github.com/paperbark/kindwords/internal/store"
)

// RequireAuth validates the session cookie, resolves it to a live user
// record, and populates auth.Context. Handlers behind it never see a
// raw token. A valid token whose user row no longer exists (deleted
// account) fails authentication like any other bad token.
func RequireAuth(sessions *session.Manager, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				jsonMessage(w, http.StatusUnauthorized, "Not authorized, no token.")
				return
			}

			userID, err := sessions.Validate(cookie.Value)
			if err != nil {
				jsonMessage(w, http.StatusUnauthorized, "Not authorized, token failed.")
				return
			}

			user, err := users.GetByID(userID)
			if err != nil || user == nil {
				jsonMessage(w, http.StatusUnauthorized, "Not authorized, token failed.")
				return
			}

			ctx := auth.WithUser(r.Context(), auth.Context{
				UserID: user.ID,
				Email:  user.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func jsonMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
