package mission

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
)

// Store is the mission persistence surface the service depends on.
type Store interface {
	GetActive(ctx context.Context, missionID int64) (*Mission, error)
	ListAvailable(ctx context.Context, userID int64, day time.Time, limit int) ([]*Mission, error)
	CompletedToday(ctx context.Context, q postgres.Querier, userID, missionID int64, day time.Time) (bool, error)
	CountToday(ctx context.Context, q postgres.Querier, userID int64, day time.Time) (int, error)
	CreateCompletion(ctx context.Context, q postgres.Querier, userID, missionID, reward int64, proof string, at time.Time) (*Completion, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]*Completion, error)
	UserStats(ctx context.Context, userID int64, day, weekStart, monthStart time.Time) (*Stats, error)
	Create(ctx context.Context, m *Mission) error
	Update(ctx context.Context, m *Mission) error
}

// Gate resolves the caller's usable membership, which carries the
// daily mission quota.
type Gate interface {
	Usable(ctx context.Context, userID int64, now time.Time) (*membership.Membership, error)
}

// Ledger is the slice of the wallet repository the service uses. The
// row lock serializes reward credits per user.
type Ledger interface {
	GetForUpdate(ctx context.Context, q postgres.Querier, userID int64) (*wallet.Wallet, error)
	Credit(ctx context.Context, q postgres.Querier, userID, amount int64, description, reference string) (*wallet.Transaction, error)
}

type Service struct {
	store  Store
	gate   Gate
	ledger Ledger
	pool   postgres.Querier
	runner postgres.TxRunner
}

func NewService(store Store, gate Gate, ledger Ledger, pool postgres.Querier, runner postgres.TxRunner) *Service {
	return &Service{store: store, gate: gate, ledger: ledger, pool: pool, runner: runner}
}

// ListAvailable returns today's remaining missions for the user,
// capped at the membership tier's daily quota.
func (s *Service) ListAvailable(ctx context.Context, userID int64) ([]*Mission, int, error) {
	now := time.Now()
	mem, err := s.gate.Usable(ctx, userID, now)
	if err != nil {
		return nil, 0, err
	}

	day := common.DayOf(now)
	done, err := s.store.CountToday(ctx, s.pool, userID, day)
	if err != nil {
		return nil, 0, err
	}
	remaining := mem.Tier.DailyMissions - done
	if remaining <= 0 {
		return nil, 0, nil
	}

	missions, err := s.store.ListAvailable(ctx, userID, day, remaining)
	if err != nil {
		return nil, 0, err
	}
	return missions, remaining, nil
}

// Complete validates the proof and, in a single transaction, records
// the completion and credits the reward. The wallet row lock taken at
// the start serializes concurrent completions by the same user, so
// the daily counters cannot race past the quota.
func (s *Service) Complete(ctx context.Context, userID, missionID int64, proof string) (*Completion, error) {
	now := time.Now()
	mem, err := s.gate.Usable(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	m, err := s.store.GetActive(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if !ValidateProof(m, proof) {
		return nil, common.ErrInvalidProof
	}

	day := common.DayOf(now)
	var comp *Completion
	err = s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		if _, err := s.ledger.GetForUpdate(ctx, q, userID); err != nil {
			return err
		}
		done, err := s.store.CompletedToday(ctx, q, userID, missionID, day)
		if err != nil {
			return err
		}
		if done {
			return common.ErrAlreadyCompletedToday
		}
		count, err := s.store.CountToday(ctx, q, userID, day)
		if err != nil {
			return err
		}
		if count >= mem.Tier.DailyMissions {
			return common.ErrDailyLimitReached
		}
		comp, err = s.store.CreateCompletion(ctx, q, userID, missionID, m.Reward, proof, now)
		if err != nil {
			return err
		}
		_, err = s.ledger.Credit(ctx, q, userID, m.Reward, "Reward for completing mission: "+m.Title, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"mission_id": missionID,
		"reward":     m.Reward,
	}).Info("mission completed")
	return comp, nil
}

// History returns the user's completions, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]*Completion, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.History(ctx, userID, limit, offset)
}

// Stats aggregates the user's completion counters.
func (s *Service) Stats(ctx context.Context, userID int64) (*Stats, error) {
	now := time.Now().UTC()
	day := common.DayOf(now)
	weekStart := day.AddDate(0, 0, -int(day.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.store.UserStats(ctx, userID, day, weekStart, monthStart)
}

// CreateMission adds a new mission (admin surface).
func (s *Service) CreateMission(ctx context.Context, m *Mission) error {
	if m.Reward <= 0 {
		return common.ErrInvalidAmount
	}
	return s.store.Create(ctx, m)
}

// UpdateMission applies admin edits.
func (s *Service) UpdateMission(ctx context.Context, m *Mission) error {
	if m.Reward <= 0 {
		return common.ErrInvalidAmount
	}
	return s.store.Update(ctx, m)
}
