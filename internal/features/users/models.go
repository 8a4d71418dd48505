// Package users implements accounts: registration with referral
// capture, password login with a one-time code as the second step,
// and password reset.
package users

import "time"

type User struct {
	ID            int64
	Username      string
	Email         string
	Phone         string
	FirstName     string
	LastName      string
	PasswordHash  string
	OTPSecret     string
	OTPValidUntil *time.Time
	EmailVerified bool
	PhoneVerified bool
	IsAdmin       bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
