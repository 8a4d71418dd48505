package withdrawal

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

const withdrawalColumns = `id, user_id, amount, method, account_info, status, admin_note, created_at, resolved_at`

// Create inserts a pending request inside the caller's transaction,
// next to the wallet debit.
func (r *Repository) Create(ctx context.Context, q postgres.Querier, userID, amount int64, method, accountInfo string) (*Withdrawal, error) {
	var w Withdrawal
	err := q.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, method, account_info, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+withdrawalColumns,
		userID, amount, method, accountInfo, StatusPending,
	).Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountInfo,
		&w.Status, &w.AdminNote, &w.CreatedAt, &w.ResolvedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}
	return &w, nil
}

// GetForUpdate locks the request row so that concurrent resolutions
// of the same withdrawal serialize.
func (r *Repository) GetForUpdate(ctx context.Context, q postgres.Querier, withdrawalID int64) (*Withdrawal, error) {
	var w Withdrawal
	err := q.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID,
	).Scan(
		&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountInfo,
		&w.Status, &w.AdminNote, &w.CreatedAt, &w.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("read withdrawal (id=%d): %w", withdrawalID, err)
	}
	return &w, nil
}

// MarkResolved moves a request into its terminal status.
func (r *Repository) MarkResolved(ctx context.Context, q postgres.Querier, withdrawalID int64, status, adminNote string, at time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE withdrawals SET status = $2, admin_note = $3, resolved_at = $4 WHERE id = $1
	`, withdrawalID, status, adminNote, at)
	if err != nil {
		return fmt.Errorf("resolve withdrawal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrWithdrawalNotFound
	}
	return nil
}

// ListByUser returns the user's requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Withdrawal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query withdrawals: %w", err)
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

// ListPending returns pending requests, oldest first, for the admin queue.
func (r *Repository) ListPending(ctx context.Context) ([]*Withdrawal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY created_at ASC`,
		StatusPending)
	if err != nil {
		return nil, fmt.Errorf("query pending withdrawals: %w", err)
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

// CountStalePending counts requests pending longer than the cutoff.
// The scheduler uses this to nudge the admins.
func (r *Repository) CountStalePending(ctx context.Context, before time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawals WHERE status = $1 AND created_at < $2`,
		StatusPending, before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stale withdrawals: %w", err)
	}
	return n, nil
}

func scanWithdrawals(rows pgx.Rows) ([]*Withdrawal, error) {
	var out []*Withdrawal
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Amount, &w.Method, &w.AccountInfo,
			&w.Status, &w.AdminNote, &w.CreatedAt, &w.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		out = append(out, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read withdrawals: %w", err)
	}
	return out, nil
}
