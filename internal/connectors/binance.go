package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const BinanceBaseURL = "https://api.binance.com"

// Binance reads spot prices, e.g. symbol "BTCUSDT".
type Binance struct {
	baseURL string
	client  *http.Client
}

func NewBinance(baseURL string) *Binance {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	return &Binance{baseURL: baseURL, client: newHTTPClient()}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) GetTicker(ctx context.Context, symbol string) (json.RawMessage, error) {
	q := url.Values{"symbol": {symbol}}
	return getJSON(ctx, b.client, b.Name(), b.baseURL+"/api/v3/ticker/price?"+q.Encode(), nil)
}
