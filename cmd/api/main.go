package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/trading-wallet/internal/api"
	"github.com/baharkarakas/trading-wallet/internal/auth"
	"github.com/baharkarakas/trading-wallet/internal/config"
	"github.com/baharkarakas/trading-wallet/internal/connectors"
	"github.com/baharkarakas/trading-wallet/internal/db"
	"github.com/baharkarakas/trading-wallet/internal/logger"
	"github.com/baharkarakas/trading-wallet/internal/metrics"
	"github.com/baharkarakas/trading-wallet/internal/middleware"
	"github.com/baharkarakas/trading-wallet/internal/payment/paystack"
	"github.com/baharkarakas/trading-wallet/internal/repository/postgres"
	"github.com/baharkarakas/trading-wallet/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	userSvc := services.NewUserService(repos.Users, tm, log)
	walletSvc := services.NewWalletService(repos.Wallet, repos.Users, repos.Transactions, repos.AuditLogs, log)
	paySvc := services.NewPaymentService(paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecret), walletSvc, log)

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Log:      log,
		Tokens:   tm,
		Limiter:  limiter,
		Users:    userSvc,
		Wallet:   walletSvc,
		Payments: paySvc,
		Tickers: []connectors.Ticker{
			connectors.NewBinance(cfg.BinanceBaseURL),
			connectors.NewOanda(cfg.OandaBaseURL, cfg.OandaToken),
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// newLimiter picks the Redis limiter when REDIS_ADDR is set and reachable,
// the in-process token bucket otherwise.
func newLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (middleware.Limiter, func()) {
	if cfg.RateRPS <= 0 {
		return nil, func() {}
	}
	if cfg.RedisAddr == "" {
		return middleware.NewTokenBucket(cfg.RateRPS), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return middleware.NewTokenBucket(cfg.RateRPS), func() {}
	}
	log.Info("rate limiting via redis", "addr", cfg.RedisAddr)
	return middleware.NewRedisLimiter(client, cfg.RateRPS, time.Second), func() { _ = client.Close() }
}
