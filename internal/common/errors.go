// Package common — errors.go defines the sentinel errors shared by all
// feature packages. Handlers match on these with errors.Is to translate
// them into user-facing HTTP responses.
package common

import "errors"

// Wallet errors
var (
	// ErrInsufficientFunds — wallet balance is lower than the requested amount
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount — amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrWalletNotFound — no wallet row for the user
	ErrWalletNotFound = errors.New("wallet not found")
)

// Membership errors
var (
	// ErrMembershipRequired — membership is missing, inactive or expired
	ErrMembershipRequired = errors.New("active membership required")
	// ErrInvalidTier — tier does not exist or is not active
	ErrInvalidTier = errors.New("invalid membership tier")
)

// Mission errors
var (
	// ErrMissionNotFound — mission does not exist or is not active
	ErrMissionNotFound = errors.New("mission not found")
	// ErrAlreadyCompletedToday — this mission was already completed today
	ErrAlreadyCompletedToday = errors.New("mission already completed today")
	// ErrDailyLimitReached — the tier's daily mission quota is exhausted
	ErrDailyLimitReached = errors.New("daily mission limit reached")
	// ErrInvalidProof — completion proof failed validation
	ErrInvalidProof = errors.New("invalid mission completion proof")
)

// Withdrawal errors
var (
	// ErrInvalidWithdrawalMethod — method is not mpesa, bank or paypal
	ErrInvalidWithdrawalMethod = errors.New("invalid withdrawal method")
	// ErrInvalidAccountInfo — account details do not match the method
	ErrInvalidAccountInfo = errors.New("invalid account info for withdrawal method")
	// ErrBelowMinWithdrawal — amount is below the configured minimum
	ErrBelowMinWithdrawal = errors.New("amount below minimum withdrawal")
	// ErrWithdrawalProcessed — withdrawal is already in a terminal state
	ErrWithdrawalProcessed = errors.New("withdrawal already processed")
	// ErrWithdrawalNotFound — no such withdrawal
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
)

// Payment errors
var (
	// ErrPaymentNotFound — no payment with that reference
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrInvalidPaymentMethod — method is not mpesa, card or paypal
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// User / auth errors
var (
	// ErrUserNotFound — user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists — username, email or phone number is already taken
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials — wrong username or password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidOTP — OTP is wrong or its window has expired
	ErrInvalidOTP = errors.New("invalid or expired OTP")
	// ErrAccountDisabled — the account has been deactivated
	ErrAccountDisabled = errors.New("account is disabled")
	// ErrNotAdmin — the caller is not an administrator
	ErrNotAdmin = errors.New("admin access required")
)
