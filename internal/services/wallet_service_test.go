package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/trading-wallet/internal/models"
	repo "github.com/baharkarakas/trading-wallet/internal/repository"
	"github.com/baharkarakas/trading-wallet/internal/repository/mocks"
)

type walletMocks struct {
	wallet *mocks.MockWallet
	tx     *mocks.MockWalletTx
	users  *mocks.MockUsers
	txns   *mocks.MockTransactions
	audit  *mocks.MockAuditLogs
}

func newWalletService(t *testing.T) (*WalletService, walletMocks) {
	ctrl := gomock.NewController(t)
	m := walletMocks{
		wallet: mocks.NewMockWallet(ctrl),
		tx:     mocks.NewMockWalletTx(ctrl),
		users:  mocks.NewMockUsers(ctrl),
		txns:   mocks.NewMockTransactions(ctrl),
		audit:  mocks.NewMockAuditLogs(ctrl),
	}
	return NewWalletService(m.wallet, m.users, m.txns, m.audit, testLogger), m
}

// runTx makes WithTx invoke the callback with the mocked transaction.
func (m walletMocks) runTx() *gomock.Call {
	return m.wallet.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repo.WalletTx) error) error {
			return fn(m.tx)
		})
}

func alice(balance string) models.User {
	return models.User{ID: "u-1", Username: "alice", Balance: decimal.RequireFromString(balance)}
}

func TestDeposit_CreditsLedgerAndAudit(t *testing.T) {
	svc, m := newWalletService(t)
	ctx := context.Background()

	m.runTx()
	m.tx.EXPECT().LockUser(ctx, "alice").Return(alice("10000"), nil)
	m.tx.EXPECT().AddBalance(ctx, "u-1", decEq("500")).Return(alice("10500"), nil)
	m.tx.EXPECT().AppendTransaction(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn models.Transaction) (models.Transaction, error) {
			assert.Equal(t, models.TxnDeposit, txn.Type)
			assert.Equal(t, "alice", txn.Username)
			assert.True(t, txn.Amount.Equal(decimal.NewFromInt(500)))
			return txn, nil
		})
	m.tx.EXPECT().AppendAudit(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, l models.AuditLog) (bool, error) {
			assert.Equal(t, "deposit", l.Action)
			assert.Equal(t, "manual", l.Meta["source"])
			return true, nil
		})

	u, err := svc.Deposit(ctx, "alice", decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10500)))
}

func TestDeposit_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newWalletService(t)

	for _, amt := range []string{"0", "-1", "-0.01"} {
		_, err := svc.Deposit(context.Background(), "alice", decimal.RequireFromString(amt))
		assert.ErrorIs(t, err, ErrInvalidArgument, amt)
	}
	_, err := svc.Deposit(context.Background(), " ", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeposit_UnknownUser(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "ghost").Return(models.User{}, repo.ErrNotFound)

	_, err := svc.Deposit(context.Background(), "ghost", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("10500"), nil)

	_, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(10600))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.ErrorIs(t, err, ErrFailedPrecondition)
}

func TestWithdraw_GuardedUpdateRejects(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("100"), nil)
	m.tx.EXPECT().AddBalance(gomock.Any(), "u-1", decEq("-100")).Return(models.User{}, repo.ErrInsufficientBalance)

	_, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestWithdraw_Success(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("10500"), nil)
	m.tx.EXPECT().AddBalance(gomock.Any(), "u-1", decEq("-500")).Return(alice("10000"), nil)
	m.tx.EXPECT().AppendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn models.Transaction) (models.Transaction, error) {
			assert.Equal(t, models.TxnWithdraw, txn.Type)
			assert.True(t, txn.Amount.IsPositive())
			return txn, nil
		})
	m.tx.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(true, nil)

	u, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10000)))
}

func TestWithdraw_RetriesSerializationFailure(t *testing.T) {
	svc, m := newWalletService(t)

	gomock.InOrder(
		m.wallet.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{Code: "40001"}),
		m.runTx(),
	)
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("1000"), nil)
	m.tx.EXPECT().AddBalance(gomock.Any(), "u-1", decEq("-1")).Return(alice("999"), nil)
	m.tx.EXPECT().AppendTransaction(gomock.Any(), gomock.Any()).Return(models.Transaction{}, nil)
	m.tx.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(true, nil)

	u, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(999)))
}

func TestWithdraw_GivesUpAfterMaxRetries(t *testing.T) {
	svc, m := newWalletService(t)

	m.wallet.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(&pgconn.PgError{Code: "40P01"}).Times(3)

	_, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(1))
	require.Error(t, err)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestWithdraw_DoesNotRetryOtherErrors(t *testing.T) {
	svc, m := newWalletService(t)

	boom := errors.New("connection reset")
	m.wallet.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(boom).Times(1)

	_, err := svc.Withdraw(context.Background(), "alice", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCreditExternal_FirstVerificationCredits(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("10000"), nil)
	m.tx.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l models.AuditLog) (bool, error) {
			assert.Equal(t, "abc123", l.Meta[models.MetaPaymentRef])
			return true, nil
		})
	m.tx.EXPECT().AddBalance(gomock.Any(), "u-1", decEq("250")).Return(alice("10250"), nil)
	m.tx.EXPECT().AppendTransaction(gomock.Any(), gomock.Any()).Return(models.Transaction{}, nil)

	u, credited, err := svc.CreditExternal(context.Background(), "alice", decimal.NewFromInt(250), "abc123")
	require.NoError(t, err)
	assert.True(t, credited)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10250)))
}

func TestCreditExternal_AlreadyCredited(t *testing.T) {
	svc, m := newWalletService(t)

	m.runTx()
	m.tx.EXPECT().LockUser(gomock.Any(), "alice").Return(alice("10250"), nil)
	m.tx.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(false, nil)

	u, credited, err := svc.CreditExternal(context.Background(), "alice", decimal.NewFromInt(250), "abc123")
	require.NoError(t, err)
	assert.False(t, credited)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10250)))
}

func TestCreditExternal_RequiresReference(t *testing.T) {
	svc, _ := newWalletService(t)

	_, _, err := svc.CreditExternal(context.Background(), "alice", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHistory_UsesLimits(t *testing.T) {
	svc, m := newWalletService(t)
	ctx := context.Background()

	m.txns.EXPECT().ListByUser(ctx, "alice", 20).Return([]models.Transaction{{ID: "t1"}}, nil)
	m.audit.EXPECT().ListByUser(ctx, "alice", 30).Return([]models.AuditLog{}, nil)

	txns, err := svc.Transactions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	logs, err := svc.AuditLogs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = svc.Transactions(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.AuditLogs(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBalance(t *testing.T) {
	svc, m := newWalletService(t)

	m.users.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice("10000"), nil)
	m.users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(models.User{}, repo.ErrNotFound)

	u, err := svc.Balance(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10000)))

	_, err = svc.Balance(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWalletOps_TrimUsername(t *testing.T) {
	svc, m := newWalletService(t)
	ctx := context.Background()

	m.runTx()
	m.tx.EXPECT().LockUser(ctx, "alice").Return(alice("10000"), nil)
	m.tx.EXPECT().AddBalance(ctx, "u-1", decEq("5")).Return(alice("10005"), nil)
	m.tx.EXPECT().AppendTransaction(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, txn models.Transaction) (models.Transaction, error) {
			assert.Equal(t, "alice", txn.Username)
			return txn, nil
		})
	m.tx.EXPECT().AppendAudit(ctx, gomock.Any()).Return(true, nil)
	m.users.EXPECT().GetByUsername(ctx, "alice").Return(alice("10005"), nil)
	m.txns.EXPECT().ListByUser(ctx, "alice", TransactionsLimit).Return([]models.Transaction{}, nil)
	m.audit.EXPECT().ListByUser(ctx, "alice", AuditLogsLimit).Return([]models.AuditLog{}, nil)

	_, err := svc.Deposit(ctx, " alice ", decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = svc.Balance(ctx, "\talice")
	require.NoError(t, err)
	_, err = svc.Transactions(ctx, "alice ")
	require.NoError(t, err)
	_, err = svc.AuditLogs(ctx, " alice")
	require.NoError(t, err)
}
