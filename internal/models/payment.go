package models

import "github.com/shopspring/decimal"

const PaymentStatusSuccess = "success"

// PaymentVerification is the provider's view of a payment reference.
type PaymentVerification struct {
	Reference string
	Status    string
	Amount    decimal.Decimal
	Username  string
}
