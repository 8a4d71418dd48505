// Package referral owns the referral graph and the commission engine.
// models.go describes the referrals and referral_commissions tables.
package referral

import "time"

// MaxDepth is the hard cap on referral chain depth. Tier gating can
// only narrow it, never widen it.
const MaxDepth = 5

// Referral is one edge of the graph: referrer earns from referred at
// the given level. Edges are created exactly once, at the referred
// user's registration, and never recomputed — a later tier upgrade does
// not grant edges that were gated out at registration time.
type Referral struct {
	ID         int64     `db:"id"`
	ReferrerID int64     `db:"referrer_id"`
	ReferredID int64     `db:"referred_id"`
	Level      int       `db:"level"` // 1 = direct referrer, 2..5 = ancestors
	CreatedAt  time.Time `db:"created_at"`
}

// Commission is one payout recorded against an edge. Append-only.
type Commission struct {
	ID          int64     `db:"id"`
	ReferralID  int64     `db:"referral_id"`
	Amount      int64     `db:"amount"` // KES
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// LevelStats aggregates a referrer's edges and earnings at one level.
type LevelStats struct {
	Level       int   `db:"level"`
	Count       int   `db:"count"`
	Commissions int64 `db:"commissions"`
}
