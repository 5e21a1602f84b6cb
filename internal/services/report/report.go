// Package report composes valuation, reconciliation and the fund ledger
// into per-instrument rows and portfolio totals. Nothing here is cached:
// every invocation opens a fresh market data session, since balances and
// prices are live.
package report

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/services/ledger"
	"github.com/getrepo/trade/internal/services/marketdata"
	"github.com/getrepo/trade/internal/services/reconciler"
	"github.com/getrepo/trade/internal/services/valuator"
	"github.com/getrepo/trade/internal/storage/cache"
)

// Engine owns the gateway and the persistent caches and produces reports.
type Engine struct {
	gw          marketdata.Gateway
	instruments *cache.Store
	funds       *cache.Store
	quote       string
	log         *zap.Logger
}

// NewEngine wires the reporting façade. The two cache stores are separate
// namespaces; either may be nil to run uncached.
func NewEngine(gw marketdata.Gateway, instruments, funds *cache.Store, quote string, log *zap.Logger) *Engine {
	return &Engine{
		gw:          gw,
		instruments: instruments,
		funds:       funds,
		quote:       quote,
		log:         log,
	}
}

// Session opens a fresh per-run market data session.
func (e *Engine) Session() *marketdata.Session {
	return marketdata.NewSession(e.gw, e.quote, e.instruments)
}

// Row is one instrument's line of the portfolio report. Unrealized is
// only meaningful when HasUnrealized is set; Err records a failure that
// was isolated to this instrument.
type Row struct {
	domain.ValuationRow
	Trades        []domain.GroupedTrade
	Unrealized    decimal.Decimal
	HasUnrealized bool
	Err           error
}

// Report is the full portfolio picture of one invocation.
type Report struct {
	Rows          []Row
	BalanceTotal  decimal.Decimal
	FundsTotal    decimal.Decimal
	PortfolioDiff decimal.Decimal
}

// Portfolio values every balance, reconciles every nonzero non-quote
// position, and nets the total against the fund ledger.
//
// A reconciliation or price failure for one instrument never aborts the
// others: the row keeps whatever data was computed and carries the error.
// Only the balance snapshot and the fund history are fatal.
func (e *Engine) Portfolio(ctx context.Context) (*Report, error) {
	session := e.Session()

	rows, err := valuator.New(session).Rows(ctx)
	if err != nil {
		return nil, err
	}

	rec := reconciler.New(session)
	reportRows := make([]Row, 0, len(rows))
	for _, vr := range rows {
		row := Row{ValuationRow: vr}

		if vr.Instrument != e.quote && !vr.Balance.IsZero() {
			trades, diff, err := rec.Reconcile(ctx, vr.Instrument, vr.Balance)
			row.Trades = trades
			switch {
			case err == nil:
				row.Unrealized = diff
				row.HasUnrealized = true
			case errors.Is(err, reconciler.ErrIncompleteMatch),
				errors.Is(err, marketdata.ErrPriceUnavailable):
				// data shown without an unrealized figure
				e.log.Debug("unrealized diff unavailable",
					zap.String("instrument", vr.Instrument),
					zap.Error(err))
			default:
				row.Err = err
				e.log.Warn("reconciliation failed",
					zap.String("instrument", vr.Instrument),
					zap.Error(err))
			}
		}

		reportRows = append(reportRows, row)
	}

	fundsTotal, err := ledger.New(e.gw, e.funds, e.quote).Total(ctx)
	if err != nil {
		return nil, err
	}

	balanceTotal := valuator.Total(rows)
	return &Report{
		Rows:          reportRows,
		BalanceTotal:  balanceTotal,
		FundsTotal:    fundsTotal.Round(2),
		PortfolioDiff: balanceTotal.Sub(fundsTotal).Round(2),
	}, nil
}

// Instruments lists the tradable instrument codes.
func (e *Engine) Instruments(ctx context.Context) ([]string, error) {
	return e.Session().Instruments(ctx)
}

// BalanceTotal values the whole snapshot in quote units.
func (e *Engine) BalanceTotal(ctx context.Context) (decimal.Decimal, error) {
	rows, err := valuator.New(e.Session()).Rows(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return valuator.Total(rows), nil
}

// Reconcile exposes single-instrument reconciliation: the matched trades
// and, when computable, the unrealized diff.
func (e *Engine) Reconcile(ctx context.Context, instrument string) ([]domain.GroupedTrade, decimal.Decimal, error) {
	session := e.Session()
	balance, err := session.Balance(ctx, instrument)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return reconciler.New(session).Reconcile(ctx, instrument, balance)
}

// Funds returns the cached fund-transfer history.
func (e *Engine) Funds(ctx context.Context) ([]domain.FundTransfer, error) {
	return ledger.New(e.gw, e.funds, e.quote).Funds(ctx)
}

// TotalFunds returns the net cash moved into the account.
func (e *Engine) TotalFunds(ctx context.Context) (decimal.Decimal, error) {
	return ledger.New(e.gw, e.funds, e.quote).Total(ctx)
}

// OrderBook fetches current depth for an instrument against the quote
// currency.
func (e *Engine) OrderBook(ctx context.Context, instrument string) (domain.OrderBook, error) {
	return e.gw.MarketOrderBook(ctx, instrument, e.quote)
}

// ClearCaches wipes both persistent cache namespaces. The user-facing
// clear action always clears everything.
func (e *Engine) ClearCaches() error {
	if e.instruments != nil {
		if err := e.instruments.Clear(); err != nil {
			return errors.Wrap(err, "clear instrument cache")
		}
	}
	if e.funds != nil {
		if err := e.funds.Clear(); err != nil {
			return errors.Wrap(err, "clear fund cache")
		}
	}
	return nil
}
