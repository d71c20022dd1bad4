// Package pricing holds the money arithmetic shared by orders and invoices.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

var ErrNegativeAmount = errors.New("amount cannot be negative")

// Quote is the priced view of an order: the operational base cost plus the
// platform margin.
type Quote struct {
	BasePrice     decimal.Decimal `json:"base_price"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	MarginAmount  decimal.Decimal `json:"margin_amount"`
	FinalPrice    decimal.Decimal `json:"final_price"`
}

// ResolveMargin returns the first configured margin: the company override,
// then the platform default, then the configured fallback.
func ResolveMargin(companyOverride, platformDefault *decimal.Decimal, configDefault decimal.Decimal) decimal.Decimal {
	if companyOverride != nil {
		return *companyOverride
	}
	if platformDefault != nil {
		return *platformDefault
	}
	return configDefault
}

// Calculate applies marginPercent to base. Both amounts are rounded half away
// from zero to two decimals before summing.
func Calculate(base, marginPercent decimal.Decimal) (Quote, error) {
	if base.IsNegative() || marginPercent.IsNegative() {
		return Quote{}, ErrNegativeAmount
	}
	base = base.Round(2)
	margin := Percent(base, marginPercent)
	return Quote{
		BasePrice:     base,
		MarginPercent: marginPercent.Round(2),
		MarginAmount:  margin,
		FinalPrice:    base.Add(margin),
	}, nil
}

// Tax returns pct of amount rounded to two decimals.
func Tax(amount, pct decimal.Decimal) decimal.Decimal {
	return Percent(amount, pct)
}

// Percent returns amount * pct / 100 rounded to two decimals.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}
