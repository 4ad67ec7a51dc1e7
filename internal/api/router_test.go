package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/trading-wallet/internal/api/handlers/mocks"
	"github.com/baharkarakas/trading-wallet/internal/auth"
	"github.com/baharkarakas/trading-wallet/internal/models"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockUserService, *auth.TokenManager) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserService(ctrl)
	tm := auth.NewTokenManager("secret", "trading-wallet", time.Hour)
	h := NewRouter(RouterDeps{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:   tm,
		Users:    users,
		Wallet:   mocks.NewMockWalletService(ctrl),
		Payments: mocks.NewMockPaymentService(ctrl),
	})
	return h, users, tm
}

func TestRouter_RootAndHealth(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Backend server is running!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_MeRequiresToken(t *testing.T) {
	h, users, tm := newTestRouter(t)
	users.EXPECT().Me(gomock.Any(), "u-1").Return(models.User{ID: "u-1", Username: "alice"}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := tm.Generate("u-1", "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRouter_UnknownMarketProvider(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/binance/ticker/BTCUSDT", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
