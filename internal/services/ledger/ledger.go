// Package ledger aggregates deposit and withdrawal transfers into the
// cash-basis total-funds figure used as the portfolio profit denominator.
package ledger

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/services/marketdata"
	"github.com/getrepo/trade/internal/storage/cache"
)

// fundsKey is the fixed key of the fund-transfer snapshot in the
// persistent cache.
const fundsKey = "funds"

// Ledger fetches and totals the account's fund-transfer history.
type Ledger struct {
	gw    marketdata.Gateway
	store *cache.Store
	quote string

	funds   []domain.FundTransfer
	fetched bool
}

// New creates a Ledger. store may be nil to disable persistence.
func New(gw marketdata.Gateway, store *cache.Store, quote string) *Ledger {
	return &Ledger{gw: gw, store: store, quote: quote}
}

// Funds returns the full fund-transfer history: from the persistent cache
// when present, otherwise fetched once per run and cached until the user
// clears it.
func (l *Ledger) Funds(ctx context.Context) ([]domain.FundTransfer, error) {
	if l.fetched {
		return l.funds, nil
	}

	if l.store != nil && l.store.Has(fundsKey) {
		var cached []domain.FundTransfer
		if err := l.store.Get(fundsKey, &cached); err == nil {
			l.funds = cached
			l.fetched = true
			return cached, nil
		}
	}

	funds, err := l.gw.FundHistory(ctx)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		if err := l.store.Set(fundsKey, funds); err != nil {
			return nil, errors.Wrap(err, "cache fund history")
		}
	}

	l.funds = funds
	l.fetched = true
	return funds, nil
}

// Total sums the net cash moved into the account: completed quote-currency
// transfers only, deposits positive, withdrawals negative, fees subtracted
// from the contribution either way. Pure summation, invariant to input
// order.
func (l *Ledger) Total(ctx context.Context) (decimal.Decimal, error) {
	funds, err := l.Funds(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return Total(funds, l.quote), nil
}

// Total aggregates the given transfers for the quote currency.
func Total(funds []domain.FundTransfer, quote string) decimal.Decimal {
	total := decimal.Zero
	for _, f := range funds {
		if !f.Complete() || f.Currency != quote {
			continue
		}

		contribution := f.Amount()
		if f.TransferType == domain.Withdraw {
			contribution = contribution.Neg()
		}
		total = total.Add(contribution.Sub(f.Fee()))
	}
	return total
}
