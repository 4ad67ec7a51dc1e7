package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/baharkarakas/trading-wallet/internal/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Users        repo.Users
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
	Wallet       repo.Wallet
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        &usersRepo{pool},
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
		Wallet:       &walletRepo{pool},
	}
}
