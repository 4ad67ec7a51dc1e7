package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Wallet
	WalletOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_operations_total",
			Help: "Wallet operations by outcome",
		},
		[]string{"op", "result"}, // deposit|withdraw|external_credit
	)

	// Payments
	PaymentVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment verifications by outcome",
		},
		[]string{"result"},
	)

	// Market data
	TickerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticker_requests_total",
			Help: "Upstream ticker requests by provider and outcome",
		},
		[]string{"provider", "result"},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPLatency, WalletOpsTotal, PaymentVerificationsTotal, TickerRequestsTotal)
	})
}
