// Package common holds shared utilities used across the project:
// currency formatting, calendar-day helpers and M-Pesa number handling.
package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FormatKES formats an amount as Kenyan Shillings.
// Example: FormatKES(3500) → "KSh 3,500"
func FormatKES(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	// Insert thousands separators right-to-left.
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "KSh " + sign + strings.Join(parts, ",")
}

// DayOf truncates a timestamp to its UTC calendar day.
// Daily quotas and the once-per-day mission rule are keyed on this value.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeMsisdn brings a Kenyan phone number to the 2547XXXXXXXX form.
// Accepts "7XXXXXXXX", "07XXXXXXXX" and "2547XXXXXXXX" with optional
// spaces, dashes or a leading plus. Returns "" when the number is not a
// valid Kenyan mobile number.
func NormalizeMsisdn(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case len(d) == 9 && d[0] == '7':
		return "254" + d
	case len(d) == 10 && strings.HasPrefix(d, "07"):
		return "254" + d[1:]
	case len(d) == 12 && strings.HasPrefix(d, "254"):
		return d
	default:
		return ""
	}
}

// ValidEmail reports whether s looks like an email address.
// Used for PayPal account validation.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
