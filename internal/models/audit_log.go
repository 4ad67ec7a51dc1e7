package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetaPaymentRef is the meta key holding a provider reference; it is unique across audit rows.
const MetaPaymentRef = "payment_ref"

type AuditLog struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Action    string          `json:"action"`
	Amount    decimal.Decimal `json:"amount"`
	Meta      map[string]any  `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}
