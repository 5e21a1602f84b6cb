// Package marketdata wraps the exchange gateway with per-run memoisation.
// A Session is created per invocation and owns the in-process memo plus a
// handle to the persistent instrument cache; data fetched through it is
// immutable for the rest of the run.
package marketdata

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/storage/cache"
)

// instrumentsKey is the fixed key of the derived instrument list in the
// persistent cache.
const instrumentsKey = "instruments"

var (
	// ErrNoBalances signals an empty or missing balance snapshot. Fatal,
	// never retried.
	ErrNoBalances = errors.New("no balances could be found")

	// ErrPriceUnavailable signals that no tick could be fetched for an
	// instrument. Callers must propagate it, never treat it as price zero.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Gateway is the exchange capability consumed by the engine: one RPC per
// logical call, decoded structured data or an error.
type Gateway interface {
	AccountBalance(ctx context.Context) ([]domain.Balance, error)
	MarketTick(ctx context.Context, instrument, currency string) (domain.Tick, error)
	TradeHistory(ctx context.Context, currency, instrument string, limit int, since int64) ([]domain.Fill, error)
	FundHistory(ctx context.Context) ([]domain.FundTransfer, error)
	MarketOrderBook(ctx context.Context, instrument, currency string) (domain.OrderBook, error)
}

// Session memoises gateway calls for the duration of one run.
type Session struct {
	gw          Gateway
	quote       string
	instruments *cache.Store

	balances        []domain.Balance
	balancesFetched bool
	ticks           map[string]domain.Tick
}

// NewSession creates a fresh session. quote is the reference currency all
// values are expressed in; instruments is the persistent instrument-list
// cache (may be nil, in which case the list is derived on every run).
func NewSession(gw Gateway, quote string, instruments *cache.Store) *Session {
	return &Session{
		gw:          gw,
		quote:       quote,
		instruments: instruments,
		ticks:       make(map[string]domain.Tick),
	}
}

// Quote returns the configured quote currency.
func (s *Session) Quote() string { return s.quote }

// Balances returns the account balance snapshot, fetching it at most once
// per session.
func (s *Session) Balances(ctx context.Context) ([]domain.Balance, error) {
	if !s.balancesFetched {
		balances, err := s.gw.AccountBalance(ctx)
		if err != nil {
			return nil, err
		}
		s.balances = balances
		s.balancesFetched = true
	}

	if len(s.balances) == 0 {
		return nil, ErrNoBalances
	}
	return s.balances, nil
}

// Balance returns the held quantity of one instrument from the snapshot,
// zero when the instrument does not appear in it.
func (s *Session) Balance(ctx context.Context, instrument string) (decimal.Decimal, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	for _, b := range balances {
		if b.Currency == instrument {
			return b.Decimal(), nil
		}
	}
	return decimal.Zero, nil
}

// Instruments returns the tradable instrument codes: every non-quote
// currency present in the balance snapshot. The derived list is kept in
// the persistent cache until the user clears it.
func (s *Session) Instruments(ctx context.Context) ([]string, error) {
	if s.instruments != nil && s.instruments.Has(instrumentsKey) {
		var cached []string
		if err := s.instruments.Get(instrumentsKey, &cached); err == nil {
			return cached, nil
		}
	}

	balances, err := s.Balances(ctx)
	if err != nil {
		return nil, err
	}

	instruments := make([]string, 0, len(balances))
	for _, b := range balances {
		if b.Currency != s.quote {
			instruments = append(instruments, b.Currency)
		}
	}

	if s.instruments != nil {
		if err := s.instruments.Set(instrumentsKey, instruments); err != nil {
			return nil, errors.Wrap(err, "cache instrument list")
		}
	}
	return instruments, nil
}

// Tick returns the market tick for (instrument, quote), fetching each
// distinct pair at most once per session.
func (s *Session) Tick(ctx context.Context, instrument string) (domain.Tick, error) {
	key := domain.PairKey(instrument, s.quote)
	if tick, ok := s.ticks[key]; ok {
		return tick, nil
	}

	tick, err := s.gw.MarketTick(ctx, instrument, s.quote)
	if err != nil {
		return domain.Tick{}, err
	}
	s.ticks[key] = tick
	return tick, nil
}

// BestBid returns the best bid price for the instrument in quote units.
// ErrPriceUnavailable is returned when the tick cannot be fetched or
// carries no usable price.
func (s *Session) BestBid(ctx context.Context, instrument string) (decimal.Decimal, error) {
	tick, err := s.Tick(ctx, instrument)
	if err != nil {
		return decimal.Decimal{}, errors.WithMessagef(ErrPriceUnavailable, "%s/%s: %v", instrument, s.quote, err)
	}
	if !tick.BestBid.IsPositive() {
		return decimal.Decimal{}, errors.WithMessagef(ErrPriceUnavailable, "%s/%s: empty best bid", instrument, s.quote)
	}
	return tick.BestBid, nil
}

// LastPrice returns the last traded price for the instrument in quote
// units, with the same unavailability semantics as BestBid.
func (s *Session) LastPrice(ctx context.Context, instrument string) (decimal.Decimal, error) {
	tick, err := s.Tick(ctx, instrument)
	if err != nil {
		return decimal.Decimal{}, errors.WithMessagef(ErrPriceUnavailable, "%s/%s: %v", instrument, s.quote, err)
	}
	if !tick.LastPrice.IsPositive() {
		return decimal.Decimal{}, errors.WithMessagef(ErrPriceUnavailable, "%s/%s: empty last price", instrument, s.quote)
	}
	return tick.LastPrice, nil
}

// Gateway exposes the underlying gateway for callers that need calls the
// session does not memoise (trade history, fund history, order book).
func (s *Session) Gateway() Gateway { return s.gw }
