package referral

import "testing"

func defaultRates() Rates {
	return NewRates([]int{10, 5, 3, 2, 1})
}

func TestCommissionFor(t *testing.T) {
	rates := defaultRates()

	cases := []struct {
		price int64
		level int
		want  int64
	}{
		{3500, 1, 350},
		{3500, 2, 175},
		{3500, 3, 105},
		{3500, 4, 70},
		{3500, 5, 35},
		{3500, 6, 0},  // no configured rate
		{3500, 0, 0},  // level 0 never pays
		{10500, 1, 1050},
		{150000, 5, 1500},
	}
	for _, c := range cases {
		if got := rates.CommissionFor(c.price, c.level); got != c.want {
			t.Errorf("CommissionFor(%d, %d) = %d, want %d", c.price, c.level, got, c.want)
		}
	}
}

func TestCommissionForTruncates(t *testing.T) {
	rates := defaultRates()

	// 999 * 3% = 29.97 truncates to 29
	if got := rates.CommissionFor(999, 3); got != 29 {
		t.Errorf("CommissionFor(999, 3) = %d, want 29", got)
	}
	// 99 * 1% = 0.99 truncates to zero
	if got := rates.CommissionFor(99, 5); got != 0 {
		t.Errorf("CommissionFor(99, 5) = %d, want 0", got)
	}
}
