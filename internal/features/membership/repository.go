// Package membership — repository.go performs all operations on the
// membership_tiers and memberships tables.
package membership

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

const tierColumns = `id, name, price, daily_missions, referral_levels, description, is_active, created_at, updated_at`

// GetTierByID returns one tier, active or not.
func (r *Repository) GetTierByID(ctx context.Context, q postgres.Querier, tierID int64) (*Tier, error) {
	var t Tier
	err := q.QueryRow(ctx, `SELECT `+tierColumns+` FROM membership_tiers WHERE id = $1`, tierID).Scan(
		&t.ID, &t.Name, &t.Price, &t.DailyMissions, &t.ReferralLevels,
		&t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrInvalidTier
		}
		return nil, fmt.Errorf("read tier (id=%d): %w", tierID, err)
	}
	return &t, nil
}

// ListTiers returns the tier catalog. When activeOnly is set, retired
// tiers are filtered out.
func (r *Repository) ListTiers(ctx context.Context, activeOnly bool) ([]*Tier, error) {
	query := `SELECT ` + tierColumns + ` FROM membership_tiers`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY price`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tiers: %w", err)
	}
	defer rows.Close()

	var out []*Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Price, &t.DailyMissions, &t.ReferralLevels,
			&t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tiers: %w", err)
	}
	return out, nil
}

// UpdateTier applies plain field updates (admin surface).
func (r *Repository) UpdateTier(ctx context.Context, t *Tier) error {
	_, err := r.db.Exec(ctx, `
		UPDATE membership_tiers
		SET name = $2, price = $3, daily_missions = $4, referral_levels = $5,
		    description = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
	`, t.ID, t.Name, t.Price, t.DailyMissions, t.ReferralLevels, t.Description, t.IsActive)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	return nil
}

// GetByUserID returns the user's membership with its tier joined, or
// nil when the user never purchased one.
func (r *Repository) GetByUserID(ctx context.Context, q postgres.Querier, userID int64) (*Membership, error) {
	var m Membership
	err := q.QueryRow(ctx, `
		SELECT m.id, m.user_id, m.tier_id, m.start_date, m.end_date, m.is_active, m.payment_id,
		       t.id, t.name, t.price, t.daily_missions, t.referral_levels,
		       t.description, t.is_active, t.created_at, t.updated_at
		FROM memberships m
		JOIN membership_tiers t ON t.id = m.tier_id
		WHERE m.user_id = $1
	`, userID).Scan(
		&m.ID, &m.UserID, &m.TierID, &m.StartDate, &m.EndDate, &m.IsActive, &m.PaymentID,
		&m.Tier.ID, &m.Tier.Name, &m.Tier.Price, &m.Tier.DailyMissions, &m.Tier.ReferralLevels,
		&m.Tier.Description, &m.Tier.IsActive, &m.Tier.CreatedAt, &m.Tier.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read membership (user_id=%d): %w", userID, err)
	}
	return &m, nil
}

// Activate upserts the user's membership: a repeat purchase overwrites
// the tier and resets the term instead of creating a second row.
func (r *Repository) Activate(ctx context.Context, q postgres.Querier, userID, tierID int64, paymentRef string, start, end time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO memberships (user_id, tier_id, start_date, end_date, is_active, payment_id)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET tier_id = EXCLUDED.tier_id,
		    start_date = EXCLUDED.start_date,
		    end_date = EXCLUDED.end_date,
		    is_active = TRUE,
		    payment_id = EXCLUDED.payment_id,
		    updated_at = NOW()
	`, userID, tierID, start, end, paymentRef)
	if err != nil {
		return fmt.Errorf("activate membership: %w", err)
	}
	return nil
}

// DeactivateExpired clears the active flag on memberships past their
// end date. Run by the daily cron sweep.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE memberships
		SET is_active = FALSE, updated_at = NOW()
		WHERE is_active = TRUE AND end_date < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired memberships: %w", err)
	}
	return tag.RowsAffected(), nil
}
