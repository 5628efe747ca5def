package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

const (
	SessionHeader = "X-Session-ID"
	UserHeader    = "X-User-ID"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
)

// RequireSession rejects requests without a cart session header.
func RequireSession(next http.Handler) http.Handler {
	return requireHeader(SessionHeader, sessionKey, "missing_session", next)
}

// RequireUser rejects requests without a user header. Authentication
// happens upstream; the header is trusted.
func RequireUser(next http.Handler) http.Handler {
	return requireHeader(UserHeader, userKey, "missing_user", next)
}

func requireHeader(header string, key ctxKey, code string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := strings.TrimSpace(r.Header.Get(header))
		if v == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":  code,
				"error": header + " header is required",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, v)))
	})
}

func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey).(string)
	return v
}

func UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}
