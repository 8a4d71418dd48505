package common

import (
	"testing"
	"time"
)

func TestFormatKES(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "KSh 0"},
		{500, "KSh 500"},
		{3500, "KSh 3,500"},
		{150000, "KSh 150,000"},
		{1234567, "KSh 1,234,567"},
		{-3500, "KSh -3,500"},
	}
	for _, c := range cases {
		if got := FormatKES(c.amount); got != c.want {
			t.Errorf("FormatKES(%d) = %q, want %q", c.amount, got, c.want)
		}
	}
}

func TestNormalizeMsisdn(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"0712-345-678", "254712345678"},
		{"12345", ""},
		{"0812345678", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeMsisdn(c.in); got != c.want {
			t.Errorf("NormalizeMsisdn(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDayOf(t *testing.T) {
	// 23:30 in UTC+3 is 20:30 UTC of the same calendar day in UTC
	loc := time.FixedZone("EAT", 3*60*60)
	ts := time.Date(2024, 6, 15, 23, 30, 0, 0, loc)

	day := DayOf(ts)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Errorf("DayOf = %v, want %v", day, want)
	}

	// A time just after UTC midnight lands on the next day
	ts2 := time.Date(2024, 6, 16, 0, 1, 0, 0, time.UTC)
	if got := DayOf(ts2); !got.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("DayOf = %v, want %v", got, want.AddDate(0, 0, 1))
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@mail.co.ke"}
	invalid := []string{"", "user", "user@", "@example.com", "user@host"}

	for _, s := range valid {
		if !ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = true, want false", s)
		}
	}
}
