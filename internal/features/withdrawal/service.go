package withdrawal

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
)

// Store is the withdrawal persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, q postgres.Querier, userID, amount int64, method, accountInfo string) (*Withdrawal, error)
	GetForUpdate(ctx context.Context, q postgres.Querier, withdrawalID int64) (*Withdrawal, error)
	MarkResolved(ctx context.Context, q postgres.Querier, withdrawalID int64, status, adminNote string, at time.Time) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Withdrawal, error)
	ListPending(ctx context.Context) ([]*Withdrawal, error)
}

// Ledger is the slice of the wallet repository the service uses.
type Ledger interface {
	Debit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error)
	Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error)
	AddWithdrawn(ctx context.Context, q postgres.Querier, userID, amount int64) error
}

// Notifier delivers out-of-band alerts. Failures are logged, never
// propagated: money movement must not depend on messaging.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
}

type Service struct {
	store     Store
	ledger    Ledger
	notifier  Notifier
	runner    postgres.TxRunner
	minAmount int64
}

func NewService(store Store, ledger Ledger, notifier Notifier, runner postgres.TxRunner, minAmount int64) *Service {
	return &Service{store: store, ledger: ledger, notifier: notifier, runner: runner, minAmount: minAmount}
}

// Request debits the wallet and files a pending payout in one
// transaction. The debit fails the whole request when the balance is
// short, so no pending row exists without its reservation.
func (s *Service) Request(ctx context.Context, userID, amount int64, method, accountInfo string) (*Withdrawal, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	if amount < s.minAmount {
		return nil, common.ErrBelowMinWithdrawal
	}
	if !ValidMethod(method) {
		return nil, common.ErrInvalidWithdrawalMethod
	}
	account, err := ValidateAccount(method, accountInfo)
	if err != nil {
		return nil, err
	}

	var w *Withdrawal
	err = s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		if _, err := s.ledger.Debit(ctx, q, userID, amount, "Withdrawal request via "+method, ""); err != nil {
			return err
		}
		w, err = s.store.Create(ctx, q, userID, amount, method, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"withdrawal_id": w.ID,
		"amount":        amount,
		"method":        method,
	}).Info("withdrawal requested")

	if err := s.notifier.NotifyAdmin(ctx, fmt.Sprintf(
		"New withdrawal request #%d: %s via %s (user %d)",
		w.ID, common.FormatKES(amount), method, userID,
	)); err != nil {
		log.WithError(err).Warn("Failed to notify admins about withdrawal")
	}
	return w, nil
}

// Resolve moves a pending request to completed or failed. A failed
// request refunds the reserved amount; a completed one bumps the
// wallet's lifetime withdrawn counter. Requests already resolved are
// rejected, so a double approval cannot pay twice.
func (s *Service) Resolve(ctx context.Context, withdrawalID int64, status, adminNote string) (*Withdrawal, error) {
	if status != StatusCompleted && status != StatusFailed {
		return nil, fmt.Errorf("unknown withdrawal status %q", status)
	}

	now := time.Now()
	var w *Withdrawal
	err := s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		var err error
		w, err = s.store.GetForUpdate(ctx, q, withdrawalID)
		if err != nil {
			return err
		}
		if w.Status != StatusPending {
			return common.ErrWithdrawalProcessed
		}
		if err := s.store.MarkResolved(ctx, q, withdrawalID, status, adminNote, now); err != nil {
			return err
		}
		switch status {
		case StatusFailed:
			if _, err := s.ledger.Credit(ctx, q, w.UserID, w.Amount, "Refund for failed withdrawal", ""); err != nil {
				return err
			}
		case StatusCompleted:
			if err := s.ledger.AddWithdrawn(ctx, q, w.UserID, w.Amount); err != nil {
				return err
			}
		}
		w.Status = status
		w.AdminNote = adminNote
		w.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"withdrawal_id": withdrawalID,
		"user_id":       w.UserID,
		"status":        status,
	}).Info("withdrawal resolved")
	return w, nil
}

// History returns the user's requests, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]*Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByUser(ctx, userID, limit, offset)
}

// Pending returns the admin review queue, oldest first.
func (s *Service) Pending(ctx context.Context) ([]*Withdrawal, error) {
	return s.store.ListPending(ctx)
}
