package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/logging"
)

// Authenticator resolves a session token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// SessionAuth returns middleware that requires a valid session. The token
// is read from the named cookie or an "Authorization: Bearer" header. The
// user id is stored in the request context for handlers and logs.
func SessionAuth(auth Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)

			userID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: session rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"token_present", token != "",
					"error", err,
				)
				writeAuthError(w, err)
				return
			}

			ctx := core.ContextWithUserID(r.Context(), userID)
			ctx = logging.WithUser(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from the cookie or bearer header.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := "Unauthorized - Please log in"
	if core.KindOf(err) != core.KindUnauthorized {
		status = http.StatusInternalServerError
		message = "Failed to verify session"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  core.MapError(err).Code,
	})
}
