package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/baharkarakas/trading-wallet/internal/models"
)

type transactionsRepo struct{ db querier }

func (r *transactionsRepo) append(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO transactions (id, username, type, amount) VALUES ($1,$2,$3,$4)
		 RETURNING date`,
		t.ID, t.Username, t.Type, t.Amount,
	).Scan(&t.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return t, nil
}

func (r *transactionsRepo) ListByUser(ctx context.Context, username string, limit int) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, type, amount, date
		   FROM transactions
		  WHERE username=$1
		  ORDER BY date DESC
		  LIMIT $2`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Username, &t.Type, &t.Amount, &t.Date); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
