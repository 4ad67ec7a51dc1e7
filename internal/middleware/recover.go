package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/logger"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic recovered", "err", rec, "stack", string(debug.Stack()))
				httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
