// Package wallet — service.go contains the ledger business rules:
// amount validation and the transaction boundary for standalone
// credits and debits.
package wallet

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

// Store is the ledger surface the service (and other features' tests)
// program against. *Repository is the production implementation.
type Store interface {
	CreateForUser(ctx context.Context, q postgres.Querier, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*Wallet, error)
	GetForUpdate(ctx context.Context, q postgres.Querier, userID int64) (*Wallet, error)
	Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error)
	Debit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*Transaction, error)
	AddWithdrawn(ctx context.Context, q postgres.Querier, userID, amount int64) error
	Transactions(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error)
	Totals(ctx context.Context) (balance, earned, withdrawn int64, err error)
}

// Service exposes the wallet ledger to handlers and to features that
// credit rewards outside a larger transaction.
type Service struct {
	store  Store
	runner postgres.TxRunner
}

func NewService(store Store, runner postgres.TxRunner) *Service {
	return &Service{store: store, runner: runner}
}

// Get returns the user's wallet.
func (s *Service) Get(ctx context.Context, userID int64) (*Wallet, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Credit adds funds in its own transaction so the balance change and
// the ledger entry commit together.
func (s *Service) Credit(ctx context.Context, userID, amount int64, description, reference string) (*Transaction, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	var tx *Transaction
	err := s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		var err error
		tx, err = s.store.Credit(ctx, q, userID, amount, description, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Debug("Wallet credited")
	return tx, nil
}

// Debit removes funds in its own transaction. Fails with
// ErrInsufficientFunds when the balance cannot cover the amount.
func (s *Service) Debit(ctx context.Context, userID, amount int64, description, reference string) (*Transaction, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	var tx *Transaction
	err := s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		var err error
		tx, err = s.store.Debit(ctx, q, userID, amount, description, reference)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
	}).Debug("Wallet debited")
	return tx, nil
}

// Totals returns platform-wide balance aggregates.
func (s *Service) Totals(ctx context.Context) (balance, earned, withdrawn int64, err error) {
	return s.store.Totals(ctx)
}

// History returns ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Transactions(ctx, userID, limit, offset)
}
