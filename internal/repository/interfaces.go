package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("duplicate")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string, balance decimal.Decimal) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type Transactions interface {
	ListByUser(ctx context.Context, username string, limit int) ([]models.Transaction, error)
}

type AuditLogs interface {
	ListByUser(ctx context.Context, username string, limit int) ([]models.AuditLog, error)
}

// Wallet runs balance, ledger and audit writes as one database transaction.
type Wallet interface {
	WithTx(ctx context.Context, fn func(tx WalletTx) error) error
}

// WalletTx is the set of writes available inside Wallet.WithTx.
type WalletTx interface {
	// LockUser reads the user row and holds it until commit.
	LockUser(ctx context.Context, username string) (models.User, error)
	// AddBalance applies delta; it fails with ErrInsufficientBalance instead of going negative.
	AddBalance(ctx context.Context, userID string, delta decimal.Decimal) (models.User, error)
	AppendTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	// AppendAudit reports false when the row's payment reference was already recorded.
	AppendAudit(ctx context.Context, l models.AuditLog) (bool, error)
}
