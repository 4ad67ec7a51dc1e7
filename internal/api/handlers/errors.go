package handlers

import (
	"errors"
	"net/http"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/api/validate"
	"github.com/baharkarakas/trading-wallet/internal/logger"
	"github.com/baharkarakas/trading-wallet/internal/services"
)

// writeError maps a service error onto the API error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validate.Errs
	if errors.As(err, &verrs) {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidArgument, "validation failed", verrs)
		return
	}

	status, code := http.StatusInternalServerError, httpx.CodeInternal
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		status, code = http.StatusBadRequest, httpx.CodeInvalidArgument
	case errors.Is(err, services.ErrConflict):
		status, code = http.StatusConflict, httpx.CodeConflict
	case errors.Is(err, services.ErrUnauthorized):
		status, code = http.StatusUnauthorized, httpx.CodeUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, httpx.CodeNotFound
	case errors.Is(err, services.ErrFailedPrecondition):
		status, code = http.StatusBadRequest, httpx.CodeFailedPrecondition
	}

	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
		httpx.WriteError(w, status, code, "Server error", err.Error())
		return
	}

	msg := err.Error()
	var se *services.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	httpx.WriteError(w, status, code, msg, nil)
}

func badRequest(w http.ResponseWriter, msg string) {
	httpx.WriteError(w, http.StatusBadRequest, httpx.CodeInvalidArgument, msg, nil)
}
