package withdrawal

import (
	"errors"
	"testing"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
)

func TestValidMethod(t *testing.T) {
	for _, m := range []string{MethodMpesa, MethodBank, MethodPaypal} {
		if !ValidMethod(m) {
			t.Errorf("ValidMethod(%q) = false, want true", m)
		}
	}
	for _, m := range []string{"", "cash", "MPESA", "crypto"} {
		if ValidMethod(m) {
			t.Errorf("ValidMethod(%q) = true, want false", m)
		}
	}
}

func TestValidateAccountMpesa(t *testing.T) {
	got, err := ValidateAccount(MethodMpesa, "0712345678")
	if err != nil {
		t.Fatalf("ValidateAccount: %v", err)
	}
	if got != "254712345678" {
		t.Errorf("canonical msisdn = %q, want 254712345678", got)
	}

	if _, err := ValidateAccount(MethodMpesa, "12345"); !errors.Is(err, common.ErrInvalidAccountInfo) {
		t.Errorf("bad msisdn err = %v, want ErrInvalidAccountInfo", err)
	}
}

func TestValidateAccountBank(t *testing.T) {
	ok := `{"bank_name": "KCB", "account_number": "0123456789", "account_name": "Jane Doe"}`
	if _, err := ValidateAccount(MethodBank, ok); err != nil {
		t.Fatalf("ValidateAccount: %v", err)
	}

	missing := `{"bank_name": "KCB", "account_number": "0123456789"}`
	if _, err := ValidateAccount(MethodBank, missing); !errors.Is(err, common.ErrInvalidAccountInfo) {
		t.Errorf("missing field err = %v, want ErrInvalidAccountInfo", err)
	}

	if _, err := ValidateAccount(MethodBank, "not json"); !errors.Is(err, common.ErrInvalidAccountInfo) {
		t.Errorf("bad json err = %v, want ErrInvalidAccountInfo", err)
	}
}

func TestValidateAccountPaypal(t *testing.T) {
	got, err := ValidateAccount(MethodPaypal, "Jane@Example.COM")
	if err != nil {
		t.Fatalf("ValidateAccount: %v", err)
	}
	if got != "jane@example.com" {
		t.Errorf("canonical email = %q, want jane@example.com", got)
	}

	if _, err := ValidateAccount(MethodPaypal, "not-an-email"); !errors.Is(err, common.ErrInvalidAccountInfo) {
		t.Errorf("bad email err = %v, want ErrInvalidAccountInfo", err)
	}
}

func TestValidateAccountUnknownMethod(t *testing.T) {
	if _, err := ValidateAccount("cash", "whatever"); !errors.Is(err, common.ErrInvalidWithdrawalMethod) {
		t.Errorf("err = %v, want ErrInvalidWithdrawalMethod", err)
	}
}
