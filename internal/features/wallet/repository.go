// Package wallet — repository.go performs all operations on the wallets
// and wallet_transactions tables. Every balance mutation and its ledger
// entry happen in the same SQL statement sequence on one Querier, so a
// caller-owned transaction makes them atomic.
package wallet

import (
	"context"
	"errors"
	"fmt"

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

// CreateForUser creates the zero-balance wallet for a new user.
// Runs on the registration transaction.
func (r *Repository) CreateForUser(ctx context.Context, q postgres.Querier, userID int64) error {
	query := `
		INSERT INTO wallets (user_id, balance, total_earned, total_withdrawn)
		VALUES ($1, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

// GetByUserID returns the user's wallet.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	return r.get(ctx, r.db, userID, "")
}

// GetForUpdate locks the wallet row for the rest of the transaction.
// Composite flows (mission completion, withdrawal request) take this
// lock first so that concurrent operations on the same wallet are
// serialized; distinct users never contend.
func (r *Repository) GetForUpdate(ctx context.Context, q postgres.Querier, userID int64) (*Wallet, error) {
	return r.get(ctx, q, userID, " FOR UPDATE")
}

func (r *Repository) get(ctx context.Context, q postgres.Querier, userID int64, suffix string) (*Wallet, error) {
	query := `
		SELECT id, user_id, balance, total_earned, total_withdrawn, updated_at
		FROM wallets
		WHERE user_id = $1
	` + suffix
	var w Wallet
	err := q.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.TotalEarned, &w.TotalWithdrawn, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrWalletNotFound
		}
		return nil, fmt.Errorf("read wallet (user_id=%d): %w", userID, err)
	}
	return &w, nil
}

// Credit increases balance and total_earned and appends a credit entry.
// Callers must pass a transaction-scoped Querier when the credit is part
// of a larger flow; standalone callers go through Service.Credit which
// wraps it in its own transaction.
func (r *Repository) Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error) {
	var walletID int64
	err := q.QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance + $2, total_earned = total_earned + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id
	`, userID, amount).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrWalletNotFound
		}
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	return r.appendEntry(ctx, q, walletID, amount, KindCredit, description, reference)
}

// Debit decreases balance and appends a debit entry. Returns
// ErrInsufficientFunds when the balance cannot cover the amount; the
// balance can never go negative. total_earned and total_withdrawn are
// untouched — completing a withdrawal updates total_withdrawn via
// AddWithdrawn, not here.
func (r *Repository) Debit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error) {
	// Lock the row and check the balance before mutating. The guard in
	// the UPDATE keeps the invariant even if a caller skipped the lock.
	w, err := r.GetForUpdate(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if w.Balance < amount {
		return nil, common.ErrInsufficientFunds
	}

	tag, err := q.Exec(ctx, `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrInsufficientFunds
	}

	return r.appendEntry(ctx, q, w.ID, amount, KindDebit, description, reference)
}

// AddWithdrawn bumps total_withdrawn. Called by the withdrawal feature
// only, when a withdrawal reaches the completed state.
func (r *Repository) AddWithdrawn(ctx context.Context, q postgres.Querier, userID, amount int64) error {
	_, err := q.Exec(ctx, `
		UPDATE wallets
		SET total_withdrawn = total_withdrawn + $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("update total_withdrawn: %w", err)
	}
	return nil
}

func (r *Repository) appendEntry(ctx context.Context, q postgres.Querier, walletID, amount int64, kind, description, reference string) (*Transaction, error) {
	var t Transaction
	err := q.QueryRow(ctx, `
		INSERT INTO wallet_transactions (wallet_id, amount, type, description, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, wallet_id, amount, type, description, reference, created_at
	`, walletID, amount, kind, description, reference).Scan(
		&t.ID, &t.WalletID, &t.Amount, &t.Kind, &t.Description, &t.Reference, &t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return &t, nil
}

// Transactions returns the user's ledger entries, newest first.
func (r *Repository) Transactions(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error) {
	query := `
		SELECT t.id, t.wallet_id, t.amount, t.type, t.description, t.reference, t.created_at
		FROM wallet_transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Kind, &t.Description, &t.Reference, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return out, nil
}

// Totals returns platform-wide balance aggregates for the admin dashboard.
func (r *Repository) Totals(ctx context.Context) (balance, earned, withdrawn int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(balance), 0), COALESCE(SUM(total_earned), 0), COALESCE(SUM(total_withdrawn), 0)
		FROM wallets
	`).Scan(&balance, &earned, &withdrawn)
	if err != nil {
		err = fmt.Errorf("wallet totals: %w", err)
	}
	return
}
