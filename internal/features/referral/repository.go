// Package referral — repository.go performs all operations on the
// referrals and referral_commissions tables.
package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEdge materializes one edge of the graph.
func (r *Repository) CreateEdge(ctx context.Context, referrerID, referredID int64, level int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO referrals (referrer_id, referred_id, level)
		VALUES ($1, $2, $3)
	`, referrerID, referredID, level)
	if err != nil {
		return fmt.Errorf("create referral edge: %w", err)
	}
	return nil
}

// ReferrerOf returns the user's direct (level-1) inbound edge, or nil
// when the user joined without a referral code. The walk uses this to
// climb the chain one ancestor at a time.
func (r *Repository) ReferrerOf(ctx context.Context, userID int64) (*Referral, error) {
	var ref Referral
	err := r.db.QueryRow(ctx, `
		SELECT id, referrer_id, referred_id, level, created_at
		FROM referrals
		WHERE referred_id = $1 AND level = 1
	`, userID).Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Level, &ref.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read referrer of user %d: %w", userID, err)
	}
	return &ref, nil
}

// EdgesTo returns every inbound edge of the referred user, ordered by
// level. The commission engine pays each of these on a membership
// purchase.
func (r *Repository) EdgesTo(ctx context.Context, q postgres.Querier, referredID int64) ([]*Referral, error) {
	rows, err := q.Query(ctx, `
		SELECT id, referrer_id, referred_id, level, created_at
		FROM referrals
		WHERE referred_id = $1
		ORDER BY level
	`, referredID)
	if err != nil {
		return nil, fmt.Errorf("query inbound edges: %w", err)
	}
	defer rows.Close()

	var out []*Referral
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Level, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return out, nil
}

// RecordCommission appends a payout row for an edge. Runs on the
// payment-completion transaction.
func (r *Repository) RecordCommission(ctx context.Context, q postgres.Querier, referralID, amount int64, description string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO referral_commissions (referral_id, amount, description)
		VALUES ($1, $2, $3)
	`, referralID, amount, description)
	if err != nil {
		return fmt.Errorf("record commission: %w", err)
	}
	return nil
}

// DirectReferrals lists the users this referrer brought in at level 1.
func (r *Repository) DirectReferrals(ctx context.Context, referrerID int64) ([]*Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, referrer_id, referred_id, level, created_at
		FROM referrals
		WHERE referrer_id = $1 AND level = 1
		ORDER BY created_at DESC
	`, referrerID)
	if err != nil {
		return nil, fmt.Errorf("query direct referrals: %w", err)
	}
	defer rows.Close()

	var out []*Referral
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Level, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		out = append(out, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read referrals: %w", err)
	}
	return out, nil
}

// StatsByLevel aggregates edge counts and commission sums per level
// for one referrer.
func (r *Repository) StatsByLevel(ctx context.Context, referrerID int64) ([]*LevelStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.level, COUNT(DISTINCT r.id), COALESCE(SUM(c.amount), 0)
		FROM referrals r
		LEFT JOIN referral_commissions c ON c.referral_id = r.id
		WHERE r.referrer_id = $1
		GROUP BY r.level
		ORDER BY r.level
	`, referrerID)
	if err != nil {
		return nil, fmt.Errorf("query referral stats: %w", err)
	}
	defer rows.Close()

	var out []*LevelStats
	for rows.Next() {
		var s LevelStats
		if err := rows.Scan(&s.Level, &s.Count, &s.Commissions); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	return out, nil
}
