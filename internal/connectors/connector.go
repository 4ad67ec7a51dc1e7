// Package connectors proxies market-data reads to external brokers.
package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/baharkarakas/trading-wallet/internal/metrics"
)

var ErrUpstream = errors.New("upstream error")

// Ticker returns the provider's current quote payload for a symbol.
type Ticker interface {
	Name() string
	GetTicker(ctx context.Context, symbol string) (json.RawMessage, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// getJSON performs a GET and returns the body when it is a 2xx response.
func getJSON(ctx context.Context, c *http.Client, provider, url string, header http.Header) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		metrics.TickerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%s: %w: %w", provider, ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.TickerRequestsTotal.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("%s: read body: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TickerRequestsTotal.WithLabelValues(provider, "error").Inc()
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, fmt.Errorf("%s: %w: status %d: %s", provider, ErrUpstream, resp.StatusCode, string(body))
	}
	metrics.TickerRequestsTotal.WithLabelValues(provider, "ok").Inc()
	return body, nil
}
