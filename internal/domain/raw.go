// Package domain defines the core data structures of the portfolio engine.
package domain

import "github.com/shopspring/decimal"

// rawScale is the fixed-point exponent of raw integer amounts returned by
// the exchange (satoshi units, 1e8 per whole unit).
const rawScale = 8

// FromRaw converts a raw fixed-point integer amount into an exact decimal.
func FromRaw(raw int64) decimal.Decimal {
	return decimal.New(raw, -rawScale)
}

// ToRaw converts a decimal amount back to the nearest raw fixed-point integer.
func ToRaw(d decimal.Decimal) int64 {
	return d.Shift(rawScale).Round(0).IntPart()
}
