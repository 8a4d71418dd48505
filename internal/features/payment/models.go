// Package payment handles membership purchases: an STK push is sent
// to the buyer's phone and the M-Pesa callback settles the payment,
// activates the membership and pays referral commissions, all in one
// transaction keyed on the payment reference.
package payment

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const MethodMpesa = "mpesa"

type Payment struct {
	ID          int64
	UserID      int64
	TierID      int64
	Amount      int64
	Method      string
	Reference   string
	ExternalRef string
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
