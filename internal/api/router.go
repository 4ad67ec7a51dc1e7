package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/trading-wallet/internal/api/handlers"
	"github.com/baharkarakas/trading-wallet/internal/auth"
	"github.com/baharkarakas/trading-wallet/internal/connectors"
	"github.com/baharkarakas/trading-wallet/internal/metrics"
	"github.com/baharkarakas/trading-wallet/internal/middleware"
)

type RouterDeps struct {
	Log      *slog.Logger
	Tokens   *auth.TokenManager
	Limiter  middleware.Limiter
	Users    handlers.UserService
	Wallet   handlers.WalletService
	Payments handlers.PaymentService
	Tickers  []connectors.Ticker
}

func NewRouter(d RouterDeps) http.Handler {
	authH := handlers.NewAuthHandler(d.Users)
	walletH := handlers.NewWalletHandler(d.Wallet)
	payH := handlers.NewPaymentHandler(d.Payments)
	marketH := handlers.NewMarketHandler(d.Tickers...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(d.Log), middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("Backend server is running!")) })

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
		r.With(middleware.Auth(d.Tokens)).Get("/me", authH.Me)

		r.Post("/deposit", walletH.Deposit)
		r.Post("/withdraw", walletH.Withdraw)
		r.Post("/balance", walletH.Balance)
		r.Post("/transactions", walletH.Transactions)
		r.Post("/audit-logs", walletH.AuditLogs)
	})

	r.Route("/payment", func(r chi.Router) {
		r.Post("/initialize", payH.Initialize)
		r.Get("/verify/{reference}", payH.Verify)
	})

	r.Get("/market/{provider}/ticker/{symbol}", marketH.Ticker)

	return r
}
