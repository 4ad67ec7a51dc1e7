package handlers

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/models"
	"github.com/baharkarakas/trading-wallet/internal/services"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

type UserService interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (services.Session, error)
	Me(ctx context.Context, userID string) (models.User, error)
}

type WalletService interface {
	Deposit(ctx context.Context, username string, amount decimal.Decimal) (models.User, error)
	Withdraw(ctx context.Context, username string, amount decimal.Decimal) (models.User, error)
	Balance(ctx context.Context, username string) (models.User, error)
	Transactions(ctx context.Context, username string) ([]models.Transaction, error)
	AuditLogs(ctx context.Context, username string) ([]models.AuditLog, error)
}

type PaymentService interface {
	InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal, username string) (json.RawMessage, error)
	VerifyDeposit(ctx context.Context, reference string) (bool, error)
}
