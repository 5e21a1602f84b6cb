// Package valuator converts the raw balance snapshot into quote-currency
// valuations.
package valuator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/services/marketdata"
)

// valuePrecision is the display precision of quote-currency values.
const valuePrecision = 2

// Valuator values account balances in the quote currency.
type Valuator struct {
	session *marketdata.Session
}

// New creates a Valuator over the given market data session.
func New(session *marketdata.Session) *Valuator {
	return &Valuator{session: session}
}

// Rows values every balance in the snapshot, in snapshot order.
//
// A zero balance values to zero without a price lookup. The quote
// currency values to its own balance. Any other instrument values to
// balance*bestBid rounded to cents; when no tick is available the row is
// returned with PriceKnown=false instead of a fabricated zero price, and
// valuation of the remaining instruments continues.
func (v *Valuator) Rows(ctx context.Context) ([]domain.ValuationRow, error) {
	balances, err := v.session.Balances(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ValuationRow, 0, len(balances))
	for _, b := range balances {
		row := domain.ValuationRow{
			Instrument: b.Currency,
			Balance:    b.Decimal(),
		}

		switch {
		case b.IsZero():
			row.Value = decimal.Zero
			row.PriceKnown = true
		case b.Currency == v.session.Quote():
			row.Value = row.Balance
			row.PriceKnown = true
		default:
			bid, err := v.session.BestBid(ctx, b.Currency)
			if err != nil {
				if errors.Is(err, marketdata.ErrPriceUnavailable) {
					rows = append(rows, row)
					continue
				}
				return nil, err
			}
			row.BestBid = bid
			row.Value = row.Balance.Mul(bid).Round(valuePrecision)
			row.PriceKnown = true
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// Total sums the quote values of all priced rows, rounded to cents.
// Rows whose price was unavailable contribute nothing; the caller decides
// whether to surface them.
func Total(rows []domain.ValuationRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if row.PriceKnown {
			total = total.Add(row.Value)
		}
	}
	return total.Round(valuePrecision)
}
