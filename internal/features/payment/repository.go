package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const paymentColumns = `id, user_id, tier_id, amount, method, reference, external_ref, status, created_at, completed_at`

// Create inserts a pending payment.
func (r *Repository) Create(ctx context.Context, userID, tierID, amount int64, method, reference string) (*Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (user_id, tier_id, amount, method, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		userID, tierID, amount, method, reference, StatusPending,
	).Scan(
		&p.ID, &p.UserID, &p.TierID, &p.Amount, &p.Method,
		&p.Reference, &p.ExternalRef, &p.Status, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &p, nil
}

// GetByReferenceForUpdate locks the payment row. Settlement holds
// this lock for the whole callback transaction, which makes repeated
// callbacks for the same reference serialize and settle once.
func (r *Repository) GetByReferenceForUpdate(ctx context.Context, q postgres.Querier, reference string) (*Payment, error) {
	var p Payment
	err := q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1 FOR UPDATE`, reference,
	).Scan(
		&p.ID, &p.UserID, &p.TierID, &p.Amount, &p.Method,
		&p.Reference, &p.ExternalRef, &p.Status, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("read payment (ref=%s): %w", reference, err)
	}
	return &p, nil
}

// MarkCompleted settles the payment and records the processor receipt.
func (r *Repository) MarkCompleted(ctx context.Context, q postgres.Querier, paymentID int64, externalRef string, at time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE payments SET status = $2, external_ref = $3, completed_at = $4 WHERE id = $1`,
		paymentID, StatusCompleted, externalRef, at)
	if err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	return nil
}

// MarkFailed records a declined or cancelled payment.
func (r *Repository) MarkFailed(ctx context.Context, q postgres.Querier, paymentID int64, at time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE payments SET status = $2, completed_at = $3 WHERE id = $1`,
		paymentID, StatusFailed, at)
	if err != nil {
		return fmt.Errorf("fail payment: %w", err)
	}
	return nil
}

// GetByReference reads a payment without locking, for status polling.
func (r *Repository) GetByReference(ctx context.Context, reference string) (*Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1`, reference,
	).Scan(
		&p.ID, &p.UserID, &p.TierID, &p.Amount, &p.Method,
		&p.Reference, &p.ExternalRef, &p.Status, &p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("read payment (ref=%s): %w", reference, err)
	}
	return &p, nil
}

// ListByUser returns the user's payments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.TierID, &p.Amount, &p.Method,
			&p.Reference, &p.ExternalRef, &p.Status, &p.CreatedAt, &p.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read payments: %w", err)
	}
	return out, nil
}
