package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/connectors"
	"github.com/baharkarakas/trading-wallet/internal/logger"
)

type MarketHandler struct {
	providers map[string]connectors.Ticker
}

func NewMarketHandler(tickers ...connectors.Ticker) *MarketHandler {
	m := make(map[string]connectors.Ticker, len(tickers))
	for _, t := range tickers {
		m[t.Name()] = t
	}
	return &MarketHandler{providers: m}
}

func (h *MarketHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "provider"))
	t, ok := h.providers[name]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "unknown provider", name)
		return
	}
	symbol := chi.URLParam(r, "symbol")
	if strings.TrimSpace(symbol) == "" {
		badRequest(w, "symbol is required")
		return
	}
	raw, err := t.GetTicker(r.Context(), symbol)
	if err != nil {
		logger.FromContext(r.Context()).Warn("ticker fetch failed", "provider", name, "symbol", symbol, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, httpx.CodeBadGateway, "upstream provider error", err.Error())
		return
	}
	httpx.WriteRaw(w, http.StatusOK, raw)
}
