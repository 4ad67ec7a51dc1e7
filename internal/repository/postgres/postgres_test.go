package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/trading-wallet/internal/models"
	"github.com/baharkarakas/trading-wallet/internal/repository"
	"github.com/baharkarakas/trading-wallet/internal/repository/postgres"
	"github.com/baharkarakas/trading-wallet/internal/testutil"
)

func setup(t *testing.T) postgres.Repositories {
	t.Helper()
	return postgres.NewRepositories(testutil.SetupTestDB(t))
}

func createUser(t *testing.T, repos postgres.Repositories, username string) models.User {
	t.Helper()
	u, err := repos.Users.Create(context.Background(), username, "hash", models.StartingBalance)
	require.NoError(t, err)
	return u
}

func TestUsers_CreateAndGet(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()

	u := createUser(t, repos, "alice")
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10000)))

	_, err := repos.Users.Create(ctx, "alice", "hash2", models.StartingBalance)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repos.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = repos.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Users.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWallet_WritesCommitTogether(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	createUser(t, repos, "alice")

	err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
		u, err := tx.LockUser(ctx, "alice")
		if err != nil {
			return err
		}
		if _, err := tx.AddBalance(ctx, u.ID, decimal.NewFromInt(500)); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: "alice", Type: models.TxnDeposit, Amount: decimal.NewFromInt(500)}); err != nil {
			return err
		}
		_, err = tx.AppendAudit(ctx, models.AuditLog{Username: "alice", Action: "deposit", Amount: decimal.NewFromInt(500)})
		return err
	})
	require.NoError(t, err)

	u, err := repos.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10500)))

	txns, err := repos.Transactions.ListByUser(ctx, "alice", 20)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TxnDeposit, txns[0].Type)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(500)))

	logs, err := repos.AuditLogs.ListByUser(ctx, "alice", 30)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "deposit", logs[0].Action)
}

func TestWallet_RollbackOnError(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	createUser(t, repos, "alice")
	boom := errors.New("boom")

	err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
		u, err := tx.LockUser(ctx, "alice")
		if err != nil {
			return err
		}
		if _, err := tx.AddBalance(ctx, u.ID, decimal.NewFromInt(500)); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: "alice", Type: models.TxnDeposit, Amount: decimal.NewFromInt(500)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := repos.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(decimal.NewFromInt(10000)))

	txns, err := repos.Transactions.ListByUser(ctx, "alice", 20)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestWallet_AddBalanceGuards(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	u := createUser(t, repos, "alice")

	err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
		_, err := tx.AddBalance(ctx, u.ID, decimal.NewFromInt(-10001))
		return err
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	err = repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
		_, err := tx.LockUser(ctx, "ghost")
		return err
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var after models.User
	err = repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
		var err error
		after, err = tx.AddBalance(ctx, u.ID, decimal.NewFromInt(-10000))
		return err
	})
	require.NoError(t, err)
	assert.True(t, after.Balance.IsZero())
}

func TestAudit_PaymentRefIsUnique(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	createUser(t, repos, "alice")

	appendRef := func() bool {
		var inserted bool
		err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
			var err error
			inserted, err = tx.AppendAudit(ctx, models.AuditLog{
				Username: "alice",
				Action:   "deposit",
				Amount:   decimal.NewFromInt(200),
				Meta:     map[string]any{models.MetaPaymentRef: "abc123"},
			})
			return err
		})
		require.NoError(t, err)
		return inserted
	}

	assert.True(t, appendRef())
	assert.False(t, appendRef())

	logs, err := repos.AuditLogs.ListByUser(ctx, "alice", 30)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "abc123", logs[0].Meta[models.MetaPaymentRef])
}

func TestLists_NewestFirstAndLimited(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	createUser(t, repos, "alice")

	for i := 1; i <= 25; i++ {
		amount := decimal.NewFromInt(int64(i))
		err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
			if _, err := tx.AppendTransaction(ctx, models.Transaction{Username: "alice", Type: models.TxnDeposit, Amount: amount}); err != nil {
				return err
			}
			_, err := tx.AppendAudit(ctx, models.AuditLog{Username: "alice", Action: "deposit", Amount: amount})
			return err
		})
		require.NoError(t, err)
	}

	txns, err := repos.Transactions.ListByUser(ctx, "alice", 20)
	require.NoError(t, err)
	require.Len(t, txns, 20)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(25)))
	assert.True(t, txns[19].Amount.Equal(decimal.NewFromInt(6)))

	logs, err := repos.AuditLogs.ListByUser(ctx, "alice", 30)
	require.NoError(t, err)
	assert.Len(t, logs, 25)

	empty, err := repos.Transactions.ListByUser(ctx, "nobody", 20)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWallet_ConcurrentAuditRefSingleWinner(t *testing.T) {
	repos := setup(t)
	ctx := context.Background()
	createUser(t, repos, "alice")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var ok bool
			err := repos.Wallet.WithTx(ctx, func(tx repository.WalletTx) error {
				var err error
				ok, err = tx.AppendAudit(ctx, models.AuditLog{
					Username: "alice",
					Action:   "deposit",
					Amount:   decimal.NewFromInt(1),
					Meta:     map[string]any{models.MetaPaymentRef: "race"},
				})
				return err
			})
			if err == nil && ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	logs, err := repos.AuditLogs.ListByUser(ctx, "alice", 30)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 1, inserted)
}
