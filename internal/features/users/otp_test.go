package users

import (
	"strings"
	"testing"
	"time"
)

func TestNewOTPSecret(t *testing.T) {
	secret := NewOTPSecret()
	if len(secret) != 16 {
		t.Errorf("secret length = %d, want 16", len(secret))
	}
	for _, r := range secret {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", r) {
			t.Errorf("secret contains non-base32 rune %q", r)
		}
	}
	if NewOTPSecret() == secret {
		t.Error("two secrets should not be equal")
	}
}

func TestOTPRoundTrip(t *testing.T) {
	secret := NewOTPSecret()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	code, err := GenerateOTP(secret, now)
	if err != nil {
		t.Fatalf("GenerateOTP: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}

	if !VerifyOTP(secret, code, now) {
		t.Error("code should validate at generation time")
	}
	// Skew of one step keeps the code alive for one more period.
	if !VerifyOTP(secret, code, now.Add(otpPeriod*time.Second)) {
		t.Error("code should validate one step later")
	}
	if VerifyOTP(secret, code, now.Add(3*otpPeriod*time.Second)) {
		t.Error("code should not validate three steps later")
	}
}

func TestVerifyOTPRejectsWrongCode(t *testing.T) {
	secret := NewOTPSecret()
	now := time.Now()

	if VerifyOTP(secret, "000000", now) {
		code, _ := GenerateOTP(secret, now)
		if code != "000000" {
			t.Error("wrong code should not validate")
		}
	}
	if VerifyOTP(secret, "not-a-code", now) {
		t.Error("malformed code should not validate")
	}
}
