// Package app initializes all components of the application.
// app.go is the assembly point: database pool, repositories, services,
// HTTP handlers and the background scheduler.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/Kyamuel/shillearnhub-backened/internal/config"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/membership"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/mission"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/payment"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/referral"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/users"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/wallet"
	"github.com/Kyamuel/shillearnhub-backened/internal/features/withdrawal"
	"github.com/Kyamuel/shillearnhub-backened/internal/jobs"
	"github.com/Kyamuel/shillearnhub-backened/internal/notify"
	"github.com/Kyamuel/shillearnhub-backened/internal/server"
	"github.com/Kyamuel/shillearnhub-backened/internal/server/middleware"
)

// App holds the assembled application components.
type App struct {
	Router    *gin.Engine
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Limiter   *middleware.RateLimiter
}

// New creates and initializes the application. The initialization
// order matters: components depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	runner := postgres.NewRunner(pool)

	// === 2. Notifications ===
	notifier, err := notify.New(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	// === 3. Repositories ===
	userRepo := users.NewRepository(pool)
	walletRepo := wallet.NewRepository(pool)
	membershipRepo := membership.NewRepository(pool)
	referralRepo := referral.NewRepository(pool)
	missionRepo := mission.NewRepository(pool)
	withdrawalRepo := withdrawal.NewRepository(pool)
	paymentRepo := payment.NewRepository(pool)

	// === 4. Services ===
	walletService := wallet.NewService(walletRepo, runner)
	membershipService := membership.NewService(membershipRepo, pool, cfg.MembershipDays)
	referralService := referral.NewService(
		referralRepo, userRepo, membershipService, walletRepo,
		referral.NewRates(cfg.ReferralRates),
	)
	missionService := mission.NewService(missionRepo, membershipService, walletRepo, pool, runner)
	withdrawalService := withdrawal.NewService(withdrawalRepo, walletRepo, notifier, runner, cfg.MinWithdrawalAmount)

	mpesaClient := payment.NewMpesaClient(
		cfg.MpesaAPIURL, cfg.MpesaConsumerKey, cfg.MpesaConsumerSecret,
		cfg.MpesaShortcode, cfg.MpesaPasskey, cfg.MpesaCallbackURL,
	)
	paymentService := payment.NewService(
		paymentRepo, membershipService, referralService, userRepo, mpesaClient, runner,
	)

	userService := users.NewService(
		userRepo, walletRepo, referralService, notifier, runner,
		time.Duration(cfg.OTPPeriodSeconds)*time.Second,
	)

	// === 5. HTTP handlers ===
	tokens := middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	handlers := server.Handlers{
		Users:      users.NewHandler(userService, tokens, membershipService),
		Wallet:     wallet.NewHandler(walletService),
		Membership: membership.NewHandler(membershipService),
		Referral:   referral.NewHandler(referralService, userRepo),
		Mission:    mission.NewHandler(missionService),
		Withdrawal: withdrawal.NewHandler(withdrawalService),
		Payment:    payment.NewHandler(paymentService),
	}

	// === 6. Router ===
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := server.New(cfg, tokens, limiter, handlers)

	// === 7. Background jobs ===
	scheduler := jobs.NewScheduler(cfg.AppTimezone, membershipService, withdrawalRepo, notifier)

	return &App{
		Router:    router,
		Scheduler: scheduler,
		DB:        pool,
		Limiter:   limiter,
	}, nil
}

// runMigrations applies all SQL migrations in order.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Tiers},
		{3, migration003Memberships},
		{4, migration004Wallets},
		{5, migration005Referrals},
		{6, migration006Missions},
		{7, migration007Withdrawals},
		{8, migration008Payments},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		log.Infof("Migration %d applied", m.version)
	}
	return nil
}
