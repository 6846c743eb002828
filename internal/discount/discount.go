// Package discount is the pure tier policy: activated referral count to
// discount percent. Stateless, safe for concurrent use.
package discount

import "github.com/shopspring/decimal"

// MaxPercent is the cap on the discount percent.
const MaxPercent = 50

// TierSize is how many activated referrals advance one tier.
const TierSize = 5

// Percent returns the discount for an activated-referral count. The tiers
// step by 5 percent per 5 activations: 0 → 0, 1-4 → 5, 5-9 → 10, up to a
// cap of 50 at 50 and beyond.
func Percent(activated int) int {
	if activated <= 0 {
		return 0
	}
	p := (activated/TierSize + 1) * 5
	if p > MaxPercent {
		return MaxPercent
	}
	return p
}

// Apply returns total reduced by percent, rounded to 2 decimal places.
func Apply(total decimal.Decimal, percent int) decimal.Decimal {
	factor := decimal.NewFromInt(100 - int64(percent)).Div(decimal.NewFromInt(100))
	return total.Mul(factor).Round(2)
}
