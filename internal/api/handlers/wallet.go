package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/api/validate"
	"github.com/baharkarakas/trading-wallet/internal/models"
)

type WalletHandler struct {
	wallet WalletService
}

func NewWalletHandler(wallet WalletService) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

type amountReq struct {
	Username string              `json:"username"`
	Amount   decimal.NullDecimal `json:"amount"`
}

type usernameReq struct {
	Username string `json:"username"`
}

type walletResp struct {
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

type transactionsResp struct {
	Transactions []models.Transaction `json:"transactions"`
}

type auditLogsResp struct {
	Logs []models.AuditLog `json:"logs"`
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	username, amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	u, err := h.wallet.Deposit(r.Context(), username, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, walletResp{User: u, Message: "Deposit successful."})
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	username, amount, ok := h.decodeAmount(w, r)
	if !ok {
		return
	}
	u, err := h.wallet.Withdraw(r.Context(), username, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, walletResp{User: u, Message: "Withdrawal successful."})
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}
	u, err := h.wallet.Balance(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResp{User: u})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}
	txns, err := h.wallet.Transactions(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	httpx.WriteJSON(w, http.StatusOK, transactionsResp{Transactions: txns})
}

func (h *WalletHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decodeUsername(w, r)
	if !ok {
		return
	}
	logs, err := h.wallet.AuditLogs(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	httpx.WriteJSON(w, http.StatusOK, auditLogsResp{Logs: logs})
}

func (h *WalletHandler) decodeAmount(w http.ResponseWriter, r *http.Request) (string, decimal.Decimal, bool) {
	var req amountReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return "", decimal.Zero, false
	}
	amountErr, amount := validate.Amount("amount", req.Amount)
	if errs := (validate.Errs{}).Add(validate.Required("username", req.Username), amountErr); len(errs) > 0 {
		writeError(w, r, errs)
		return "", decimal.Zero, false
	}
	return req.Username, amount, true
}

func (h *WalletHandler) decodeUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req usernameReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return "", false
	}
	if ef := validate.Required("username", req.Username); ef != nil {
		writeError(w, r, validate.Errs{*ef})
		return "", false
	}
	return req.Username, true
}
