package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                   string
		aMin, aMax, bMin, bMax *decimal.Decimal
		want                   bool
	}{
		{name: "adjacent bands touch but do not overlap", aMin: dp(0), aMax: dp(10), bMin: dp(10), bMax: dp(20), want: false},
		{name: "nested", aMin: dp(0), aMax: dp(100), bMin: dp(10), bMax: dp(20), want: true},
		{name: "partial", aMin: dp(5), aMax: dp(15), bMin: dp(10), bMax: dp(20), want: true},
		{name: "disjoint", aMin: dp(0), aMax: dp(5), bMin: dp(6), bMax: dp(9), want: false},
		{name: "unbounded max swallows higher band", aMin: dp(50), aMax: nil, bMin: dp(100), bMax: dp(200), want: true},
		{name: "unbounded min below", aMin: nil, aMax: dp(10), bMin: dp(10), bMax: nil, want: false},
		{name: "both fully unbounded", want: true},
		{name: "open ended against lower band", aMin: dp(20), aMax: nil, bMin: dp(0), bMax: dp(20), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aMin, tc.aMax, tc.bMin, tc.bMax))
			assert.Equal(t, tc.want, Overlaps(tc.bMin, tc.bMax, tc.aMin, tc.aMax))
		})
	}
}

func TestContainsIsHalfOpen(t *testing.T) {
	tier := PricingTier{VolumeMin: dp(10), VolumeMax: dp(20)}
	assert.False(t, tier.Contains(decimal.NewFromFloat(9.999)))
	assert.True(t, tier.Contains(decimal.NewFromInt(10)))
	assert.True(t, tier.Contains(decimal.NewFromFloat(19.99)))
	assert.False(t, tier.Contains(decimal.NewFromInt(20)))

	open := PricingTier{VolumeMin: dp(20)}
	assert.True(t, open.Contains(decimal.NewFromInt(100000)))
}
