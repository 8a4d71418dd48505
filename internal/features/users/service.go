package users

import (
	"context"
	"errors"
	"regexp"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

var digitsOnly = regexp.MustCompile(`^\+?[0-9]+$`)

// Store is the account persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, q postgres.Querier, u *User) error
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	SetOTPWindow(ctx context.Context, userID int64, until time.Time) error
	MarkVerified(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetActive(ctx context.Context, userID int64, active bool) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
}

// Wallets opens the ledger row for a new account inside the signup
// transaction.
type Wallets interface {
	CreateForUser(ctx context.Context, q postgres.Querier, userID int64) error
}

// Referrals links a new account to its referral chain. Failures here
// never fail the signup.
type Referrals interface {
	RecordReferral(ctx context.Context, newUserID int64, referralCode string, now time.Time) error
}

// OTPSender delivers one-time codes to the account's contact channels.
type OTPSender interface {
	SendOTP(ctx context.Context, email, phone, code string) error
}

type RegisterInput struct {
	Username     string
	Email        string
	Phone        string
	FirstName    string
	LastName     string
	Password     string
	ReferralCode string
}

type Service struct {
	store     Store
	wallets   Wallets
	referrals Referrals
	sender    OTPSender
	runner    postgres.TxRunner
	otpWindow time.Duration
}

func NewService(store Store, wallets Wallets, referrals Referrals, sender OTPSender, runner postgres.TxRunner, otpWindow time.Duration) *Service {
	return &Service{
		store:     store,
		wallets:   wallets,
		referrals: referrals,
		sender:    sender,
		runner:    runner,
		otpWindow: otpWindow,
	}
}

// Register creates the account and its wallet in one transaction,
// records the referral chain and sends the first one-time code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if !common.ValidEmail(in.Email) {
		return nil, common.ErrInvalidCredentials
	}
	msisdn := common.NormalizeMsisdn(in.Phone)
	if msisdn == "" {
		return nil, common.ErrInvalidCredentials
	}

	for _, check := range []func() (*User, error){
		func() (*User, error) { return s.store.GetByUsername(ctx, in.Username) },
		func() (*User, error) { return s.store.GetByEmail(ctx, in.Email) },
		func() (*User, error) { return s.store.GetByPhone(ctx, msisdn) },
	} {
		_, err := check()
		if err == nil {
			return nil, common.ErrUserExists
		}
		if !errors.Is(err, common.ErrUserNotFound) {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        msisdn,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		OTPSecret:    NewOTPSecret(),
		IsActive:     true,
	}

	err = s.runner.WithinTx(ctx, func(q postgres.Querier) error {
		if err := s.store.Create(ctx, q, u); err != nil {
			return err
		}
		return s.wallets.CreateForUser(ctx, q, u.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.referrals.RecordReferral(ctx, u.ID, in.ReferralCode, time.Now()); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Warn("Failed to record referral chain")
	}

	if err := s.issueOTP(ctx, u); err != nil {
		log.WithError(err).WithField("user_id", u.ID).Warn("Failed to send signup OTP")
	}

	log.WithFields(log.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return u, nil
}

// Login checks the password and, when it matches, sends a one-time
// code. The identifier may be a username, email or phone number.
func (s *Service) Login(ctx context.Context, identifier, password string) (*User, error) {
	var (
		u   *User
		err error
	)
	switch {
	case common.ValidEmail(identifier):
		u, err = s.store.GetByEmail(ctx, identifier)
	case digitsOnly.MatchString(identifier):
		if msisdn := common.NormalizeMsisdn(identifier); msisdn != "" {
			identifier = msisdn
		}
		u, err = s.store.GetByPhone(ctx, identifier)
	default:
		u, err = s.store.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, common.ErrAccountDisabled
	}

	if err := s.issueOTP(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyOTP validates a submitted code and marks the contact channels
// verified. The caller issues tokens on success.
func (s *Service) VerifyOTP(ctx context.Context, userID int64, code string) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.otpCurrent(u, code) {
		return nil, common.ErrInvalidOTP
	}
	if err := s.store.MarkVerified(ctx, u.ID); err != nil {
		return nil, err
	}
	u.EmailVerified = true
	u.PhoneVerified = true
	return u, nil
}

// ForgotPassword sends a reset code. An unknown email is not an
// error, so the endpoint does not leak which addresses exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) (int64, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if err := s.issueOTP(ctx, u); err != nil {
		return 0, err
	}
	return u.ID, nil
}

// ResetPassword replaces the password after a valid reset code.
func (s *Service) ResetPassword(ctx context.Context, userID int64, code, newPassword string) error {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.otpCurrent(u, code) {
		return common.ErrInvalidOTP
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, userID, string(hash))
}

// Get returns the account profile.
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.store.GetByID(ctx, userID)
}

// SetActive enables or disables an account (admin surface).
func (s *Service) SetActive(ctx context.Context, userID int64, active bool) error {
	return s.store.SetActive(ctx, userID, active)
}

// List returns accounts for the admin panel.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

func (s *Service) issueOTP(ctx context.Context, u *User) error {
	now := time.Now()
	code, err := GenerateOTP(u.OTPSecret, now)
	if err != nil {
		return err
	}
	if err := s.store.SetOTPWindow(ctx, u.ID, now.Add(s.otpWindow)); err != nil {
		return err
	}
	return s.sender.SendOTP(ctx, u.Email, u.Phone, code)
}

func (s *Service) otpCurrent(u *User, code string) bool {
	now := time.Now()
	if u.OTPValidUntil == nil || now.After(*u.OTPValidUntil) {
		return false
	}
	return VerifyOTP(u.OTPSecret, code, now)
}
