// Package paystack talks to the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/logger"
	"github.com/baharkarakas/trading-wallet/internal/models"
)

const DefaultBaseURL = "https://api.paystack.co"

// minorUnits is the number of kobo/cents per major currency unit.
var minorUnits = decimal.NewFromInt(100)

type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewClient(baseURL, secret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type initializeRequest struct {
	Email    string            `json:"email"`
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

// Initialize creates a payment session and returns Paystack's response body unchanged.
func (c *Client) Initialize(ctx context.Context, email string, amount decimal.Decimal, username string) (json.RawMessage, error) {
	body, err := json.Marshal(initializeRequest{
		Email:    email,
		Amount:   amount.Mul(minorUnits).Round(0).IntPart(),
		Metadata: map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: marshal: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	return raw, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Metadata  json.RawMessage `json:"metadata"`
	} `json:"data"`
}

// metadataUsername reads metadata.username. Paystack sends metadata as an
// empty string or null for payments created without it.
func metadataUsername(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	var m struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	return m.Username
}

func (c *Client) Verify(ctx context.Context, reference string) (models.PaymentVerification, error) {
	raw, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return models.PaymentVerification{}, fmt.Errorf("paystack verify: %w", err)
	}
	var resp verifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.PaymentVerification{}, fmt.Errorf("paystack verify: decode: %w", err)
	}
	ref := resp.Data.Reference
	if ref == "" {
		ref = reference
	}
	return models.PaymentVerification{
		Reference: ref,
		Status:    resp.Data.Status,
		Amount:    decimal.NewFromInt(resp.Data.Amount).Div(minorUnits),
		Username:  metadataUsername(resp.Data.Metadata),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("paystack response received",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > 512 {
			raw = raw[:512]
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
