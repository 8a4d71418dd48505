package withdrawal

import (
	"encoding/json"
	"strings"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
)

// ValidMethod reports whether the payout method is supported.
func ValidMethod(method string) bool {
	switch method {
	case MethodMpesa, MethodBank, MethodPaypal:
		return true
	}
	return false
}

// ValidateAccount checks the account info against the payout method
// and returns the canonical form to store. Mobile money expects a
// Kenyan MSISDN, bank a JSON object with the account fields, PayPal
// an email address.
func ValidateAccount(method, accountInfo string) (string, error) {
	accountInfo = strings.TrimSpace(accountInfo)
	if accountInfo == "" {
		return "", common.ErrInvalidAccountInfo
	}

	switch method {
	case MethodMpesa:
		msisdn := common.NormalizeMsisdn(accountInfo)
		if msisdn == "" {
			return "", common.ErrInvalidAccountInfo
		}
		return msisdn, nil

	case MethodBank:
		var acct struct {
			BankName      string `json:"bank_name"`
			AccountNumber string `json:"account_number"`
			AccountName   string `json:"account_name"`
		}
		if err := json.Unmarshal([]byte(accountInfo), &acct); err != nil {
			return "", common.ErrInvalidAccountInfo
		}
		if acct.BankName == "" || acct.AccountNumber == "" || acct.AccountName == "" {
			return "", common.ErrInvalidAccountInfo
		}
		return accountInfo, nil

	case MethodPaypal:
		if !common.ValidEmail(accountInfo) {
			return "", common.ErrInvalidAccountInfo
		}
		return strings.ToLower(accountInfo), nil
	}

	return "", common.ErrInvalidWithdrawalMethod
}
