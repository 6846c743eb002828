package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentTiers(t *testing.T) {
	cases := []struct {
		activated int
		want      int
	}{
		{0, 0},
		{1, 5},
		{4, 5},
		{5, 10},
		{9, 10},
		{10, 15},
		{14, 15},
		{25, 30},
		{49, 50},
		{50, 50},
		{1000, 50},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percent(tc.activated), "activated=%d", tc.activated)
	}
}

func TestPercentMonotonic(t *testing.T) {
	prev := Percent(0)
	for n := 1; n <= 200; n++ {
		p := Percent(n)
		require.GreaterOrEqual(t, p, prev, "percent decreased at %d", n)
		prev = p
	}
}

func TestPercentNegativeCount(t *testing.T) {
	assert.Equal(t, 0, Percent(-3))
}

func TestApplyRoundsToTwoPlaces(t *testing.T) {
	charge := Apply(decimal.NewFromInt(200), 5)
	assert.Equal(t, "190.00", charge.StringFixed(2))

	// 99.99 at 15% is 84.9915, rounds to 84.99.
	charge = Apply(decimal.RequireFromString("99.99"), 15)
	assert.Equal(t, "84.99", charge.StringFixed(2))

	charge = Apply(decimal.NewFromInt(100), 0)
	assert.Equal(t, "100.00", charge.StringFixed(2))
}
