package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/trading-wallet/internal/models"
	"github.com/baharkarakas/trading-wallet/internal/repository"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type usersRepo struct{ db querier }

const userColumns = `id, username, password_hash, balance, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Balance, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, repository.ErrNotFound
	}
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, username, hash string, balance decimal.Decimal) (models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users(id, username, password_hash, balance) VALUES($1,$2,$3,$4)
		 RETURNING `+userColumns,
		uuid.NewString(), username, hash, balance,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.User{}, repository.ErrDuplicate
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, repository.ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
}

func (r *usersRepo) lock(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1 FOR UPDATE`, username))
}

// addBalance never lets the stored balance go below zero, even without a prior lock.
func (r *usersRepo) addBalance(ctx context.Context, userID string, delta decimal.Decimal) (models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET balance = balance + $2
		  WHERE id = $1 AND balance + $2 >= 0
		  RETURNING `+userColumns,
		userID, delta,
	))
	if errors.Is(err, repository.ErrNotFound) {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
			return models.User{}, fmt.Errorf("add balance: %w", err)
		}
		if exists {
			return models.User{}, repository.ErrInsufficientBalance
		}
		return models.User{}, repository.ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return models.User{}, repository.ErrInsufficientBalance
		}
		return models.User{}, fmt.Errorf("add balance: %w", err)
	}
	return u, nil
}
