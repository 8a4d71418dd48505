// Package jobs runs the background tasks (cron): expiring lapsed
// memberships and nudging admins about stale withdrawal requests.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Memberships expires lapsed memberships.
type Memberships interface {
	ExpireLapsed(ctx context.Context, now time.Time) error
}

// Withdrawals counts requests stuck in the pending queue.
type Withdrawals interface {
	CountStalePending(ctx context.Context, before time.Time) (int, error)
}

// Notifier delivers the stale-queue alert.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
}

const staleWithdrawalAge = 24 * time.Hour

// Scheduler owns the cron loop.
type Scheduler struct {
	cron        *cron.Cron
	memberships Memberships
	withdrawals Withdrawals
	notifier    Notifier
}

// NewScheduler builds the scheduler in the given timezone (Nairobi in
// production, so the midnight expiry matches the business day).
func NewScheduler(timezone string, memberships Memberships, withdrawals Withdrawals, notifier Notifier) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).Warnf("Failed to load timezone %s, falling back to UTC", timezone)
		loc = time.UTC
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		memberships: memberships,
		withdrawals: withdrawals,
		notifier:    notifier,
	}
}

// Start registers and launches all background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	// Expire lapsed memberships at midnight
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Expiring lapsed memberships")
		if err := s.memberships.ExpireLapsed(ctx, time.Now()); err != nil {
			log.WithError(err).Error("[CRON] Membership expiry failed")
		}
	})

	// Hourly check for withdrawals stuck in the queue
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Checking stale withdrawals")
		n, err := s.withdrawals.CountStalePending(ctx, time.Now().Add(-staleWithdrawalAge))
		if err != nil {
			log.WithError(err).Error("[CRON] Stale withdrawal check failed")
			return
		}
		if n == 0 {
			return
		}
		text := fmt.Sprintf("%d withdrawal request(s) pending for over 24h", n)
		if err := s.notifier.NotifyAdmin(ctx, text); err != nil {
			log.WithError(err).Error("[CRON] Failed to send stale withdrawal alert")
		}
	})

	s.cron.Start()
	log.Info("Background scheduler started")
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Background scheduler stopped")
}
