package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
)

// Store is the payment persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, userID, tierID, amount int64, method, reference string) (*Payment, error)
	GetByReferenceForUpdate(ctx context.Context, q postgres.Querier, reference string) (*Payment, error)
	MarkCompleted(ctx context.Context, q postgres.Querier, paymentID int64, externalRef string, at time.Time) error
	MarkFailed(ctx context.Context, q postgres.Querier, paymentID int64, at time.Time) error
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Payment, error)
}

// Memberships activates the purchased tier inside the settlement
// transaction.
type Memberships interface {
	PurchasableTier(ctx context.Context, tierID int64) (*membership.Tier, error)
	ActivateForPayment(ctx context.Context, q postgres.Querier, userID, tierID int64, paymentRef string, now time.Time) error
}

// Commissions pays the referral chain when a purchase settles.
type Commissions interface {
	PayCommissions(ctx context.Context, q postgres.Querier, buyerID, tierPrice int64, paymentRef string) error
}

// Directory resolves the buyer's phone number for the STK push.
type Directory interface {
	PhoneByID(ctx context.Context, userID int64) (string, error)
}

// StkPusher is the gateway surface the service uses; *MpesaClient in
// production.
type StkPusher interface {
	InitiateSTKPush(ctx context.Context, phone string, amount int64, reference, description string) (*StkResult, error)
}

type Service struct {
	store       Store
	memberships Memberships
	commissions Commissions
	directory   Directory
	mpesa       StkPusher
	runner      postgres.TxRunner
}

func NewService(store Store, memberships Memberships, commissions Commissions, directory Directory, mpesa StkPusher, runner postgres.TxRunner) *Service {
	return &Service{
		store:       store,
		memberships: memberships,
		commissions: commissions,
		directory:   directory,
		mpesa:       mpesa,
		runner:      runner,
	}
}

// newReference builds a payment reference: "SLH-" plus eight upper
// hex characters.
func newReference() string {
	return "SLH-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// Initialize creates a pending payment for the tier and sends the STK
// push. The push happens after the payment row is committed, so a
// callback can never arrive for a reference we do not know.
func (s *Service) Initialize(ctx context.Context, userID, tierID int64, method, phone string) (*Payment, *StkResult, error) {
	if method != MethodMpesa {
		return nil, nil, common.ErrInvalidPaymentMethod
	}

	tier, err := s.memberships.PurchasableTier(ctx, tierID)
	if err != nil {
		return nil, nil, err
	}

	if phone == "" {
		phone, err = s.directory.PhoneByID(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
	}
	msisdn := common.NormalizeMsisdn(phone)
	if msisdn == "" {
		return nil, nil, common.ErrInvalidAccountInfo
	}

	p, err := s.store.Create(ctx, userID, tierID, tier.Price, method, newReference())
	if err != nil {
		return nil, nil, err
	}

	stk, err := s.mpesa.InitiateSTKPush(ctx, msisdn, tier.Price, p.Reference,
		fmt.Sprintf("ShillEarn Hub %s Membership", tier.Name))
	if err != nil {
		// Leave the payment pending and surface the gateway error;
		// the buyer can retry with a fresh initialize.
		log.WithError(err).WithField("reference", p.Reference).Warn("STK push failed")
		return nil, nil, fmt.Errorf("initiate payment: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"tier_id":   tierID,
		"reference": p.Reference,
		"amount":    tier.Price,
	}).Info("payment initialized")
	return p, stk, nil
}

// HandleCallback settles a payment from the gateway callback. The
// payment row lock makes the whole block run at most once per
// reference: a repeated callback finds the payment already settled
// and returns without touching anything.
//
// On success the membership activates and the buyer's referral chain
// is paid, all in the same transaction as the status flip.
func (s *Service) HandleCallback(ctx context.Context, reference string, resultCode int, externalRef string) error {
	now := time.Now()
	return s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		p, err := s.store.GetByReferenceForUpdate(ctx, q, reference)
		if err != nil {
			return err
		}
		if p.Status != StatusPending {
			log.WithField("reference", reference).Debug("callback for settled payment ignored")
			return nil
		}

		if resultCode != 0 {
			if err := s.store.MarkFailed(ctx, q, p.ID, now); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"reference":   reference,
				"result_code": resultCode,
			}).Info("payment failed")
			return nil
		}

		if err := s.store.MarkCompleted(ctx, q, p.ID, externalRef, now); err != nil {
			return err
		}
		if err := s.memberships.ActivateForPayment(ctx, q, p.UserID, p.TierID, p.Reference, now); err != nil {
			return err
		}
		if err := s.commissions.PayCommissions(ctx, q, p.UserID, p.Amount, p.Reference); err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"reference": reference,
			"user_id":   p.UserID,
			"tier_id":   p.TierID,
			"amount":    p.Amount,
		}).Info("payment completed")
		return nil
	})
}

// Status returns the payment for polling, scoped to its owner.
func (s *Service) Status(ctx context.Context, userID int64, reference string) (*Payment, error) {
	p, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, common.ErrPaymentNotFound
	}
	return p, nil
}

// History returns the user's payments, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]*Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListByUser(ctx, userID, limit, offset)
}
