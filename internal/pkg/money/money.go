// Package money holds the rounding rules shared by pricing and promo code.
// Amounts are whole units of the platform currency; rates and unit costs are decimals.
package money

import "github.com/shopspring/decimal"

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Round rounds half up (towards positive infinity) to a whole currency unit.
func Round(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

// Percent returns round(base × pct / 100).
func Percent(base int64, pct decimal.Decimal) int64 {
	return Round(decimal.NewFromInt(base).Mul(pct).Div(hundred))
}

// Times returns round(amount × qty).
func Times(amount decimal.Decimal, qty int) int64 {
	return Round(amount.Mul(decimal.NewFromInt(int64(qty))))
}

// Share returns round(part × amount / whole), the proportional slice of amount owed to part.
// A zero whole yields zero.
func Share(part, whole int64, amount decimal.Decimal) int64 {
	if whole == 0 {
		return 0
	}
	return Round(decimal.NewFromInt(part).Mul(amount).Div(decimal.NewFromInt(whole)))
}

// CappedPercent returns round(base × pct/100 − base × excessPct/100) where
// excessPct = excess × 100 / whole. It spreads the part of a percentage discount that
// overshot a cap across items in proportion to their size.
func CappedPercent(base int64, pct decimal.Decimal, excess, whole int64) int64 {
	if whole == 0 {
		return 0
	}
	b := decimal.NewFromInt(base)
	excessPct := decimal.NewFromInt(excess).Mul(hundred).Div(decimal.NewFromInt(whole))
	return Round(b.Mul(pct).Div(hundred).Sub(b.Mul(excessPct).Div(hundred)))
}

// Rate multiplies a whole amount by a fractional rate (e.g. 0.05) and rounds.
func Rate(base int64, rate decimal.Decimal) int64 {
	return Round(decimal.NewFromInt(base).Mul(rate))
}
