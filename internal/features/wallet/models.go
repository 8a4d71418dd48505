// Package wallet owns user balances and the append-only transaction
// ledger. models.go describes the wallets and wallet_transactions rows.
package wallet

import "time"

// Wallet is a user's balance record. Every user has exactly one,
// created together with the user at registration.
//
// balance >= 0 always. total_earned only ever grows (credits, including
// refunds); total_withdrawn is updated by the withdrawal feature alone,
// when a withdrawal completes.
type Wallet struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Balance        int64     `db:"balance"`         // current balance in KES
	TotalEarned    int64     `db:"total_earned"`    // lifetime credits in KES
	TotalWithdrawn int64     `db:"total_withdrawn"` // completed withdrawals in KES
	UpdatedAt      time.Time `db:"updated_at"`
}

// Transaction is one immutable ledger entry. Rows are never updated or
// deleted after insertion; this table is the audit trail.
type Transaction struct {
	ID          int64     `db:"id"`
	WalletID    int64     `db:"wallet_id"`
	Amount      int64     `db:"amount"` // always positive
	Kind        string    `db:"type"`   // KindCredit or KindDebit
	Description string    `db:"description"`
	Reference   string    `db:"reference"` // external reference, may be empty
	CreatedAt   time.Time `db:"created_at"`
}

// Ledger entry kinds.
const (
	KindCredit = "credit"
	KindDebit  = "debit"
)
