package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/auth"
)

type ctxKey string

const (
	ctxUserIDKey   ctxKey = "uid"
	ctxUsernameKey ctxKey = "username"
)

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(string)
	return v, ok && v != ""
}

func Username(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUsernameKey).(string)
	return v, ok && v != ""
}

// WithUser stores the authenticated identity. Used by Auth and by tests.
func WithUser(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, ctxUserIDKey, userID)
	return context.WithValue(ctx, ctxUsernameKey, username)
}

// Auth requires "Authorization: Bearer <jwt>" signed by tm.
func Auth(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "missing bearer token", nil)
				return
			}
			token := strings.TrimSpace(ah[len("Bearer "):])
			claims, err := tm.Parse(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Username)))
		})
	}
}
