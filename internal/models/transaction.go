package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit  TransactionType = "deposit"
	TxnWithdraw TransactionType = "withdraw"
)

type Transaction struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Type     TransactionType `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
}
