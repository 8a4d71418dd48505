// Package referral — service.go contains the graph construction walk
// and the commission engine.
package referral

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
)

// Store is the edge/commission persistence surface. *Repository is the
// production implementation.
type Store interface {
	CreateEdge(ctx context.Context, referrerID, referredID int64, level int) error
	ReferrerOf(ctx context.Context, userID int64) (*Referral, error)
	EdgesTo(ctx context.Context, q postgres.Querier, referredID int64) ([]*Referral, error)
	RecordCommission(ctx context.Context, q postgres.Querier, referralID, amount int64, description string) error
	DirectReferrals(ctx context.Context, referrerID int64) ([]*Referral, error)
	StatsByLevel(ctx context.Context, referrerID int64) ([]*LevelStats, error)
}

// Directory resolves a referral code (the referrer's username) to a
// user id. The users repository implements it.
type Directory interface {
	IDByUsername(ctx context.Context, username string) (int64, error)
}

// TierGate reports how many referral levels a user's current membership
// covers, 0 without a usable membership. The membership service
// implements it.
type TierGate interface {
	ReferralDepth(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Ledger is the slice of the wallet ledger the commission engine needs.
type Ledger interface {
	Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error)
}

type Service struct {
	store     Store
	directory Directory
	gate      TierGate
	ledger    Ledger
	rates     Rates
}

func NewService(store Store, directory Directory, gate TierGate, ledger Ledger, rates Rates) *Service {
	return &Service{
		store:     store,
		directory: directory,
		gate:      gate,
		ledger:    ledger,
		rates:     rates,
	}
}

// RecordReferral builds the new user's inbound edges at registration.
//
// An unresolvable code is not an error: registration must never be
// blocked by a bad referral code, so we log and return nil.
//
// The walk:
//  1. Create the level-1 edge from the direct referrer.
//  2. Climb the chain: for levels 2..5, find the current referrer's own
//     referrer. Materialize the edge only when that ancestor's current
//     membership covers the level (tier referral_levels >= level).
//  3. The level counter advances on every hop, whether or not the edge
//     was created — a gated-out ancestor consumes a level, it does not
//     extend the search deeper.
//
// Edges are never recomputed later; this is the ancestor's one chance
// at each descendant.
func (s *Service) RecordReferral(ctx context.Context, newUserID int64, referralCode string, now time.Time) error {
	if referralCode == "" {
		return nil
	}

	referrerID, err := s.directory.IDByUsername(ctx, referralCode)
	if err != nil {
		return fmt.Errorf("resolve referral code: %w", err)
	}
	if referrerID == 0 || referrerID == newUserID {
		log.WithFields(log.Fields{
			"user_id": newUserID,
			"code":    referralCode,
		}).Debug("Referral code did not resolve, registering without referral")
		return nil
	}

	if err := s.store.CreateEdge(ctx, referrerID, newUserID, 1); err != nil {
		return fmt.Errorf("level-1 edge: %w", err)
	}

	current := referrerID
	for level := 2; level <= MaxDepth; level++ {
		rel, err := s.store.ReferrerOf(ctx, current)
		if err != nil {
			return fmt.Errorf("walk level %d: %w", level, err)
		}
		if rel == nil {
			break // reached the root of the chain
		}
		ancestor := rel.ReferrerID

		depth, err := s.gate.ReferralDepth(ctx, ancestor, now)
		if err != nil {
			return fmt.Errorf("tier depth of user %d: %w", ancestor, err)
		}
		if depth >= level {
			if err := s.store.CreateEdge(ctx, ancestor, newUserID, level); err != nil {
				return fmt.Errorf("level-%d edge: %w", level, err)
			}
		}

		current = ancestor
	}

	log.WithFields(log.Fields{
		"user_id":  newUserID,
		"referrer": referrerID,
	}).Info("Referral recorded")
	return nil
}

// PayCommissions credits every inbound edge of the buyer according to
// the rate table. Runs on the payment-completion transaction: the
// caller holds the payment row lock and has already verified the
// payment was pending, which makes the whole payout exactly-once per
// payment reference.
//
// Zero-amount levels (tiny price at a low rate) are skipped — the
// ledger only accepts positive amounts.
func (s *Service) PayCommissions(ctx context.Context, q postgres.Querier, buyerID, tierPrice int64, paymentRef string) error {
	edges, err := s.store.EdgesTo(ctx, q, buyerID)
	if err != nil {
		return err
	}

	var total int64
	for _, edge := range edges {
		amount := s.rates.CommissionFor(tierPrice, edge.Level)
		if amount <= 0 {
			continue
		}

		desc := fmt.Sprintf("Level %d referral commission", edge.Level)
		if _, err := s.ledger.Credit(ctx, q, edge.ReferrerID, amount, desc, paymentRef); err != nil {
			return fmt.Errorf("credit referrer %d: %w", edge.ReferrerID, err)
		}
		if err := s.store.RecordCommission(ctx, q, edge.ID, amount, desc); err != nil {
			return err
		}
		total += amount
	}

	if total > 0 {
		log.WithFields(log.Fields{
			"buyer":   buyerID,
			"payment": paymentRef,
			"total":   total,
			"edges":   len(edges),
		}).Info("Referral commissions paid")
	}
	return nil
}

// Stats returns the referrer's per-level edge counts and earnings.
func (s *Service) Stats(ctx context.Context, referrerID int64) ([]*LevelStats, error) {
	return s.store.StatsByLevel(ctx, referrerID)
}

// DirectReferrals lists the users this referrer brought in directly.
func (s *Service) DirectReferrals(ctx context.Context, referrerID int64) ([]*Referral, error) {
	return s.store.DirectReferrals(ctx, referrerID)
}
