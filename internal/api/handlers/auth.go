package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/api/validate"
	"github.com/baharkarakas/trading-wallet/internal/middleware"
	"github.com/baharkarakas/trading-wallet/internal/models"
)

type AuthHandler struct {
	users UserService
}

func NewAuthHandler(users UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req credentialsReq) validate() error {
	errs := validate.Errs{}.Add(
		validate.Required("username", req.Username),
		validate.Required("password", req.Password),
	)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type userResp struct {
	User models.User `json:"user"`
}

type loginResp struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResp{User: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResp{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User})
}

// Me requires middleware.Auth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "missing bearer token", nil)
		return
	}
	u, err := h.users.Me(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResp{User: u})
}
