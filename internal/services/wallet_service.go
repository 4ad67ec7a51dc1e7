package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/metrics"
	"github.com/baharkarakas/trading-wallet/internal/models"
	repo "github.com/baharkarakas/trading-wallet/internal/repository"
)

const (
	TransactionsLimit = 20
	AuditLogsLimit    = 30

	actionDeposit  = "deposit"
	actionWithdraw = "withdraw"
)

type WalletService struct {
	wallet     repo.Wallet
	users      repo.Users
	txns       repo.Transactions
	audit      repo.AuditLogs
	log        *slog.Logger
	maxRetries int
}

func NewWalletService(w repo.Wallet, u repo.Users, t repo.Transactions, a repo.AuditLogs, log *slog.Logger) *WalletService {
	return &WalletService{
		wallet:     w,
		users:      u,
		txns:       t,
		audit:      a,
		log:        log,
		maxRetries: 3,
	}
}

func (s *WalletService) Deposit(ctx context.Context, username string, amount decimal.Decimal) (models.User, error) {
	username = strings.TrimSpace(username)
	if err := checkInput(username, amount); err != nil {
		return models.User{}, err
	}
	var out models.User
	err := s.inTx(ctx, "deposit", username, func(tx repo.WalletTx) error {
		u, err := tx.LockUser(ctx, username)
		if err != nil {
			return err
		}
		out, err = s.credit(ctx, tx, u, amount, map[string]any{"source": "manual"})
		return err
	})
	return out, err
}

func (s *WalletService) Withdraw(ctx context.Context, username string, amount decimal.Decimal) (models.User, error) {
	username = strings.TrimSpace(username)
	if err := checkInput(username, amount); err != nil {
		return models.User{}, err
	}
	var out models.User
	err := s.inTx(ctx, "withdraw", username, func(tx repo.WalletTx) error {
		u, err := tx.LockUser(ctx, username)
		if err != nil {
			return err
		}
		if u.Balance.LessThan(amount) {
			return repo.ErrInsufficientBalance
		}
		if out, err = tx.AddBalance(ctx, u.ID, amount.Neg()); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: username, Type: models.TxnWithdraw, Amount: amount}); err != nil {
			return err
		}
		_, err = tx.AppendAudit(ctx, models.AuditLog{Username: username, Action: actionWithdraw, Amount: amount, Meta: map[string]any{}})
		return err
	})
	return out, err
}

// CreditExternal credits a confirmed provider payment exactly once per
// reference. The audit row carrying the reference is written first; when the
// reference is already recorded nothing else is written and credited is false.
func (s *WalletService) CreditExternal(ctx context.Context, username string, amount decimal.Decimal, paymentRef string) (models.User, bool, error) {
	username = strings.TrimSpace(username)
	if err := checkInput(username, amount); err != nil {
		return models.User{}, false, err
	}
	if strings.TrimSpace(paymentRef) == "" {
		return models.User{}, false, invalid("payment reference is required")
	}
	var (
		out      models.User
		credited bool
	)
	err := s.inTx(ctx, "external_credit", username, func(tx repo.WalletTx) error {
		credited = false
		u, err := tx.LockUser(ctx, username)
		if err != nil {
			return err
		}
		claimed, err := tx.AppendAudit(ctx, models.AuditLog{
			Username: username,
			Action:   actionDeposit,
			Amount:   amount,
			Meta:     map[string]any{models.MetaPaymentRef: paymentRef, "source": "paystack"},
		})
		if err != nil {
			return err
		}
		if !claimed {
			out = u
			return nil
		}
		if out, err = tx.AddBalance(ctx, u.ID, amount); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: username, Type: models.TxnDeposit, Amount: amount}); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return models.User{}, false, err
	}
	if !credited {
		s.log.Info("payment already credited", slog.String("username", username), slog.String("payment_ref", paymentRef))
	}
	return out, credited, nil
}

func (s *WalletService) Balance(ctx context.Context, username string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, invalid("Username is required.")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *WalletService) Transactions(ctx context.Context, username string) ([]models.Transaction, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("Username is required.")
	}
	return s.txns.ListByUser(ctx, username, TransactionsLimit)
}

func (s *WalletService) AuditLogs(ctx context.Context, username string) ([]models.AuditLog, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("Username is required.")
	}
	return s.audit.ListByUser(ctx, username, AuditLogsLimit)
}

// credit adds amount to a locked user and records the ledger and audit rows.
func (s *WalletService) credit(ctx context.Context, tx repo.WalletTx, u models.User, amount decimal.Decimal, meta map[string]any) (models.User, error) {
	out, err := tx.AddBalance(ctx, u.ID, amount)
	if err != nil {
		return models.User{}, err
	}
	if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: u.Username, Type: models.TxnDeposit, Amount: amount}); err != nil {
		return models.User{}, err
	}
	if _, err := tx.AppendAudit(ctx, models.AuditLog{Username: u.Username, Action: actionDeposit, Amount: amount, Meta: meta}); err != nil {
		return models.User{}, err
	}
	return out, nil
}

// inTx runs fn in a wallet transaction, retrying serialization failures and
// deadlocks, and maps repository errors to service errors.
func (s *WalletService) inTx(ctx context.Context, op, username string, fn func(repo.WalletTx) error) error {
	var err error
	for i := 0; i < s.maxRetries; i++ {
		err = s.wallet.WithTx(ctx, fn)
		if err == nil {
			metrics.WalletOpsTotal.WithLabelValues(op, "ok").Inc()
			return nil
		}
		if !isRetryableError(err) || i == s.maxRetries-1 {
			break
		}
		s.log.Warn("retrying wallet operation",
			slog.String("op", op),
			slog.String("username", username),
			slog.Int("attempt", i+1),
			slog.Any("err", err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(1<<i) * 10 * time.Millisecond):
		}
	}

	switch {
	case errors.Is(err, repo.ErrNotFound):
		metrics.WalletOpsTotal.WithLabelValues(op, "not_found").Inc()
		return ErrUserNotFound
	case errors.Is(err, repo.ErrInsufficientBalance):
		metrics.WalletOpsTotal.WithLabelValues(op, "insufficient_balance").Inc()
		s.log.Warn("insufficient balance", slog.String("op", op), slog.String("username", username))
		return ErrInsufficientBalance
	}
	metrics.WalletOpsTotal.WithLabelValues(op, "error").Inc()
	s.log.Error("wallet operation failed",
		slog.String("op", op),
		slog.String("username", username),
		slog.Any("err", err),
	)
	return fmt.Errorf("%s: %w", op, err)
}

func checkInput(username string, amount decimal.Decimal) error {
	if username == "" {
		return invalid("Username and amount are required.")
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
