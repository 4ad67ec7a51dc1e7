package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartingBalance is credited to every newly registered demo account.
var StartingBalance = decimal.NewFromInt(10000)

type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"-"`
}
