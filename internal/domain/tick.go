package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is a market snapshot for one instrument against the quote currency.
// Prices are already in whole quote units (the exchange does not scale them).
type Tick struct {
	Instrument string
	Currency   string
	LastPrice  decimal.Decimal
	BestBid    decimal.Decimal
	BestAsk    decimal.Decimal
	Timestamp  time.Time
}

// PairKey returns the memo key for the (instrument, currency) pair.
func (t Tick) PairKey() string {
	return PairKey(t.Instrument, t.Currency)
}

// PairKey builds the canonical key for an instrument/currency pair.
func PairKey(instrument, currency string) string {
	return fmt.Sprintf("%s-%s", instrument, currency)
}

// Quote is one price level of an order book.
type Quote struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// OrderBook is the market depth for one instrument.
type OrderBook struct {
	Instrument string
	Currency   string
	Bids       []Quote
	Asks       []Quote
}
