package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade as reported by the exchange.
type Side string

const (
	// Bid is a buy: it increased the held volume of the instrument.
	Bid Side = "Bid"
	// Ask is a sell: it decreased the held volume of the instrument.
	Ask Side = "Ask"
)

// Fill is one raw trade record from the trade history. Several fills may
// share an OrderID when one order executed in parts. Volume, price and fee
// are fixed-point integers scaled by 1e8.
type Fill struct {
	ID           int64
	OrderID      int64
	Side         Side
	RawVolume    int64
	RawPrice     int64
	RawFee       int64
	CreationTime time.Time
}

// Volume returns the fill volume in whole instrument units.
func (f Fill) Volume() decimal.Decimal { return FromRaw(f.RawVolume) }

// Price returns the fill price in whole quote units.
func (f Fill) Price() decimal.Decimal { return FromRaw(f.RawPrice) }

// Fee returns the fill fee in whole quote units.
func (f Fill) Fee() decimal.Decimal { return FromRaw(f.RawFee) }

// GroupedTrade merges all fills of one order into a single logical trade.
// Volume and Fee are sums over the fills; Price is the first fill's price,
// since fills of one order execute at one effective price for our purposes.
// Amount is volume*price-fee, filled in once the trade is matched against
// the held balance.
type GroupedTrade struct {
	OrderID int64
	Side    Side
	Volume  decimal.Decimal
	Price   decimal.Decimal
	Fee     decimal.Decimal
	Amount  decimal.Decimal
}

// Signed returns the trade volume signed by its effect on the held
// balance: positive for a buy, negative for a sell.
func (g GroupedTrade) Signed() decimal.Decimal {
	if g.Side == Ask {
		return g.Volume.Neg()
	}
	return g.Volume
}
