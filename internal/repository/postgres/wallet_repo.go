package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/models"
	repo "github.com/baharkarakas/trading-wallet/internal/repository"
)

type walletRepo struct{ pool *pgxpool.Pool }

// WithTx runs fn inside a single read-committed transaction; any error rolls
// back every write fn made. Writers serialize on the user row lock taken by
// LockUser, so a waiter sees the committed balance instead of failing.
func (r *walletRepo) WithTx(ctx context.Context, fn func(repo.WalletTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback wallet tx", "err", err)
		}
	}()

	if err := fn(&walletTx{
		users:  &usersRepo{tx},
		ledger: &transactionsRepo{tx},
		audit:  &auditLogsRepo{tx},
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type walletTx struct {
	users  *usersRepo
	ledger *transactionsRepo
	audit  *auditLogsRepo
}

func (t *walletTx) LockUser(ctx context.Context, username string) (models.User, error) {
	return t.users.lock(ctx, username)
}

func (t *walletTx) AddBalance(ctx context.Context, userID string, delta decimal.Decimal) (models.User, error) {
	return t.users.addBalance(ctx, userID, delta)
}

func (t *walletTx) AppendTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	return t.ledger.append(ctx, txn)
}

func (t *walletTx) AppendAudit(ctx context.Context, l models.AuditLog) (bool, error) {
	return t.audit.append(ctx, l)
}
