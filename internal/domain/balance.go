package domain

import "github.com/shopspring/decimal"

// balancePrecision is the number of fractional digits kept when a raw
// balance is converted to a decimal quantity.
const balancePrecision = 7

// Balance is one currency's holding from the account balance snapshot.
// Raw is the exchange's fixed-point integer; it is never mutated downstream.
type Balance struct {
	Currency string
	Raw      int64
}

// Decimal returns the held quantity in whole currency units.
func (b Balance) Decimal() decimal.Decimal {
	return FromRaw(b.Raw).Round(balancePrecision)
}

// IsZero reports whether nothing of the currency is held.
func (b Balance) IsZero() bool {
	return b.Raw == 0
}

// ValuationRow is the per-instrument result of balance valuation.
// Value is expressed in the quote currency, rounded to cents.
// PriceKnown is false when no tick was available for the instrument;
// in that case Value covers only quote-currency holdings and BestBid
// must not be used.
type ValuationRow struct {
	Instrument string
	Balance    decimal.Decimal
	BestBid    decimal.Decimal
	Value      decimal.Decimal
	PriceKnown bool
}
