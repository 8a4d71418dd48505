// Package membership — service.go contains the lifecycle rules:
// activation on payment completion, usability checks and the expiry
// sweep. Quotas are always read from the joined tier at decision time.
package membership

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

// Store is the persistence surface the service needs. *Repository is
// the production implementation.
type Store interface {
	GetTierByID(ctx context.Context, q postgres.Querier, tierID int64) (*Tier, error)
	ListTiers(ctx context.Context, activeOnly bool) ([]*Tier, error)
	UpdateTier(ctx context.Context, t *Tier) error
	GetByUserID(ctx context.Context, q postgres.Querier, userID int64) (*Membership, error)
	Activate(ctx context.Context, q postgres.Querier, userID, tierID int64, paymentRef string, start, end time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type Service struct {
	store Store
	pool  postgres.Querier // plain pool for single-statement reads
	term  time.Duration    // membership length, 365 days by default
}

func NewService(store Store, pool postgres.Querier, membershipDays int) *Service {
	return &Service{
		store: store,
		pool:  pool,
		term:  time.Duration(membershipDays) * 24 * time.Hour,
	}
}

// PurchasableTier returns the tier or ErrInvalidTier when it does not
// exist or has been retired.
func (s *Service) PurchasableTier(ctx context.Context, tierID int64) (*Tier, error) {
	t, err := s.store.GetTierByID(ctx, s.pool, tierID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, common.ErrInvalidTier
	}
	return t, nil
}

// ListTiers returns the purchasable tier catalog.
func (s *Service) ListTiers(ctx context.Context) ([]*Tier, error) {
	return s.store.ListTiers(ctx, true)
}

// ListAllTiers includes retired tiers (admin surface).
func (s *Service) ListAllTiers(ctx context.Context) ([]*Tier, error) {
	return s.store.ListTiers(ctx, false)
}

// UpdateTier applies plain admin field updates.
func (s *Service) UpdateTier(ctx context.Context, t *Tier) error {
	return s.store.UpdateTier(ctx, t)
}

// ActivateForPayment runs on the payment-completion transaction.
// A repeat purchase replaces the previous membership: same row, new
// tier, term reset to now + 365 days.
func (s *Service) ActivateForPayment(ctx context.Context, q postgres.Querier, userID, tierID int64, paymentRef string, now time.Time) error {
	if err := s.store.Activate(ctx, q, userID, tierID, paymentRef, now, now.Add(s.term)); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"tier_id": tierID,
		"payment": paymentRef,
	}).Info("Membership activated")
	return nil
}

// Get returns the user's membership row, nil when none exists.
func (s *Service) Get(ctx context.Context, userID int64) (*Membership, error) {
	return s.store.GetByUserID(ctx, s.pool, userID)
}

// Usable returns the membership when it is active and unexpired,
// otherwise ErrMembershipRequired. Mission eligibility and withdrawal
// handlers call this at decision time.
func (s *Service) Usable(ctx context.Context, userID int64, now time.Time) (*Membership, error) {
	m, err := s.store.GetByUserID(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsUsable(now) {
		return nil, common.ErrMembershipRequired
	}
	return m, nil
}

// ReferralDepth returns how many referral levels the user's current
// membership covers, 0 when the user has no usable membership. The
// referral walk consults this when deciding whether to materialize an
// edge for an ancestor.
func (s *Service) ReferralDepth(ctx context.Context, userID int64, now time.Time) (int, error) {
	m, err := s.store.GetByUserID(ctx, s.pool, userID)
	if err != nil {
		return 0, err
	}
	if m == nil || !m.IsUsable(now) {
		return 0, nil
	}
	return m.Tier.ReferralLevels, nil
}

// ExpireLapsed deactivates memberships whose term has ended. Runs daily
// from the scheduler.
func (s *Service) ExpireLapsed(ctx context.Context, now time.Time) error {
	n, err := s.store.DeactivateExpired(ctx, now)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithField("count", n).Info("Expired memberships deactivated")
	}
	return nil
}
