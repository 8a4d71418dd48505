package referral

// Rates maps a referral level to its commission percentage of the
// purchased tier's price. Built once from configuration and injected
// into the service; never mutated afterwards.
type Rates map[int]int

// NewRates builds the rate table from the configured per-level
// percentages, index 0 being level 1.
func NewRates(percents []int) Rates {
	r := make(Rates, len(percents))
	for i, p := range percents {
		r[i+1] = p
	}
	return r
}

// CommissionFor computes the payout for one level: price * rate / 100,
// truncated toward zero (KES are whole integers). Levels without a
// configured rate pay nothing.
func (r Rates) CommissionFor(price int64, level int) int64 {
	rate, ok := r[level]
	if !ok {
		return 0
	}
	return price * int64(rate) / 100
}
