// Package money centralizes the rounding conventions for monetary arithmetic.
// All aggregates are rounded to 2 decimal places and per-share rates to 4,
// using banker's rounding, before any further arithmetic.
package money

import "github.com/shopspring/decimal"

const (
	// AmountPlaces is the precision of stored monetary amounts.
	AmountPlaces = 2
	// RatePlaces is the precision of per-share rates.
	RatePlaces = 4
)

// MinPayout is the smallest payout worth recording: 0.01 currency units.
var MinPayout = decimal.New(1, -2)

// RoundAmount rounds a monetary amount to cents.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(AmountPlaces)
}

// RoundRate rounds a per-share rate.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(RatePlaces)
}

// PerShare computes a per-share rate from a pool and a share count.
// A non-positive share count yields a zero rate.
func PerShare(pool, shares decimal.Decimal) decimal.Decimal {
	if !shares.IsPositive() {
		return decimal.Zero
	}
	return RoundRate(pool.Div(shares))
}

// Payout computes the rounded amount owed for a holding at the given rate.
func Payout(shares, rate decimal.Decimal) decimal.Decimal {
	return RoundAmount(shares.Mul(rate))
}

// MeetsMinimum reports whether a rounded payout is at or above the minimum
// threshold. An amount exactly equal to the threshold is included.
func MeetsMinimum(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(MinPayout)
}
