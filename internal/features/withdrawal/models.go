// Package withdrawal implements payout requests: a debit is taken
// from the wallet up front and the request waits for an admin to
// resolve it. Failed requests refund the debit.
package withdrawal

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	MethodMpesa  = "mpesa"
	MethodBank   = "bank"
	MethodPaypal = "paypal"
)

type Withdrawal struct {
	ID          int64
	UserID      int64
	Amount      int64
	Method      string
	AccountInfo string
	Status      string
	AdminNote   string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
