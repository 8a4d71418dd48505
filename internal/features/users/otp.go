package users

import (
	"crypto/rand"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// One-time codes are TOTP over a per-user secret with a ten minute
// window. On top of the TOTP window the service keeps an explicit
// otp_valid_until timestamp, so a code stops working once its login
// attempt expires even if the TOTP step has not rolled over yet.
const otpPeriod = 600

func totpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    otpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NewOTPSecret returns a fresh base32 secret for a new account.
func NewOTPSecret() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}

// GenerateOTP produces the current code for the secret.
func GenerateOTP(secret string, now time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, now, totpOpts())
}

// VerifyOTP checks a submitted code against the secret.
func VerifyOTP(secret, code string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts())
	return err == nil && ok
}
