// Package membership owns the tier catalog and each user's membership
// lifecycle: purchase activation, the 365-day term and expiry.
package membership

import "time"

// Tier is a purchasable membership template. Tier names are unique.
// daily_missions caps how many missions a member may complete per day;
// referral_levels caps how deep the member earns referral commissions.
type Tier struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Price         int64     `db:"price"` // KES per year
	DailyMissions int       `db:"daily_missions"`
	ReferralLevels int      `db:"referral_levels"`
	Description   string    `db:"description"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Membership is a user's current membership. One row per user; a new
// purchase overwrites the row instead of stacking a second membership.
type Membership struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	TierID    int64     `db:"tier_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	IsActive  bool      `db:"is_active"`
	PaymentID string    `db:"payment_id"` // reference of the activating payment

	Tier Tier // joined tier row; quotas are always read from here, never cached
}

// IsExpired reports whether the membership term has lapsed.
func (m *Membership) IsExpired(now time.Time) bool {
	return now.After(m.EndDate)
}

// IsUsable reports whether the membership currently gates anything:
// it must be active and within its term.
func (m *Membership) IsUsable(now time.Time) bool {
	return m.IsActive && !m.IsExpired(now)
}
