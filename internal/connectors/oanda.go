package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

const OandaBaseURL = "https://api-fxtrade.oanda.com"

// Oanda reads forex candles, e.g. instrument "EUR_USD".
type Oanda struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewOanda(baseURL, token string) *Oanda {
	if baseURL == "" {
		baseURL = OandaBaseURL
	}
	return &Oanda{baseURL: baseURL, token: token, client: newHTTPClient()}
}

func (o *Oanda) Name() string { return "oanda" }

func (o *Oanda) GetTicker(ctx context.Context, instrument string) (json.RawMessage, error) {
	h := http.Header{}
	if o.token != "" {
		h.Set("Authorization", "Bearer "+o.token)
	}
	return getJSON(ctx, o.client, o.Name(), o.baseURL+"/v3/instruments/"+url.PathEscape(instrument)+"/candles", h)
}
