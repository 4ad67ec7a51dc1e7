package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/api/validate"
)

type PaymentHandler struct {
	payments PaymentService
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type initializeReq struct {
	Email    string              `json:"email"`
	Amount   decimal.NullDecimal `json:"amount"`
	Username string              `json:"username"`
}

type verifyResp struct {
	Success  bool `json:"success"`
	Credited bool `json:"credited"`
}

// Initialize returns the provider's response body unchanged.
func (h *PaymentHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	amountErr, amount := validate.Amount("amount", req.Amount)
	errs := validate.Errs{}.Add(
		validate.Required("email", req.Email),
		amountErr,
		validate.Required("username", req.Username),
	)
	if len(errs) > 0 {
		writeError(w, r, errs)
		return
	}
	raw, err := h.payments.InitializeDeposit(r.Context(), req.Email, amount, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteRaw(w, http.StatusOK, raw)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")
	credited, err := h.payments.VerifyDeposit(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, verifyResp{Success: true, Credited: credited})
}
