package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/trading-wallet/internal/models"
)

type auditLogsRepo struct{ db querier }

// append inserts the audit row. A row whose meta carries an already recorded
// payment_ref is skipped and reported as not inserted.
func (r *auditLogsRepo) append(ctx context.Context, l models.AuditLog) (bool, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Meta == nil {
		l.Meta = map[string]any{}
	}
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO wallet_audit_logs (id, username, action, amount, meta)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (payment_ref) DO NOTHING
		 RETURNING id`,
		l.ID, l.Username, l.Action, l.Amount, l.Meta,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("append audit log: %w", err)
	}
	return true, nil
}

func (r *auditLogsRepo) ListByUser(ctx context.Context, username string, limit int) ([]models.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, action, amount, meta, created_at
		   FROM wallet_audit_logs
		  WHERE username=$1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.Username, &l.Action, &l.Amount, &l.Meta, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
