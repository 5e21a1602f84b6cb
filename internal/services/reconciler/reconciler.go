// Package reconciler reconstructs the subset of recent trade history that
// explains a currently held balance and nets its cost against current
// market value.
package reconciler

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/services/marketdata"
)

// MaxResults is the largest number of raw fills fetched per
// reconciliation; the exchange returns at most this page, newest first.
const MaxResults = 200

// ErrIncompleteMatch signals that the fetched page did not reach far
// enough back to fully explain the held balance. Matched trades are still
// returned alongside it; only the unrealized figure is unavailable.
var ErrIncompleteMatch = errors.New("trade history does not explain held balance")

// Reconciler matches recent fills against held balances.
type Reconciler struct {
	session *marketdata.Session
}

// New creates a Reconciler over the given market data session.
func New(session *marketdata.Session) *Reconciler {
	return &Reconciler{session: session}
}

// Group merges fills sharing an order id into single logical trades,
// preserving the order of first appearance. Volume and fee accumulate;
// the price stays the first fill's price. Grouping an already-grouped
// sequence changes nothing.
func Group(fills []domain.Fill) []domain.GroupedTrade {
	grouped := make([]domain.GroupedTrade, 0, len(fills))
	byOrder := make(map[int64]int, len(fills))

	for _, f := range fills {
		if i, ok := byOrder[f.OrderID]; ok {
			grouped[i].Volume = grouped[i].Volume.Add(f.Volume())
			grouped[i].Fee = grouped[i].Fee.Add(f.Fee())
			continue
		}
		byOrder[f.OrderID] = len(grouped)
		grouped = append(grouped, domain.GroupedTrade{
			OrderID: f.OrderID,
			Side:    f.Side,
			Volume:  f.Volume(),
			Price:   f.Price(),
			Fee:     f.Fee(),
		})
	}
	return grouped
}

// Match walks grouped trades newest-first, accumulating signed volume
// until the running remainder of balance hits exactly zero. It returns
// the matched prefix with Amount computed per trade. When the trades
// never sum to the balance the full sequence is returned along with
// ErrIncompleteMatch.
//
// The stop condition is exact decimal equality: if external transfers
// moved volume outside the trade history, the sums never close and the
// match is deliberately reported incomplete rather than approximated.
func Match(trades []domain.GroupedTrade, balance decimal.Decimal) ([]domain.GroupedTrade, error) {
	matched := make([]domain.GroupedTrade, 0, len(trades))
	remaining := balance

	if remaining.IsZero() {
		return matched, nil
	}

	for _, trade := range trades {
		// Walking backward in time: undo the trade's effect on the
		// balance. A buy is volume we would not yet hold, a sell is
		// volume we would still hold.
		remaining = remaining.Sub(trade.Signed())

		trade.Amount = trade.Volume.Mul(trade.Price).Sub(trade.Fee)
		matched = append(matched, trade)

		if remaining.IsZero() {
			return matched, nil
		}
	}
	return matched, ErrIncompleteMatch
}

// NetCost nets the matched trades' amounts into the capital currently
// deployed in the position: buys add cost, sells return it.
func NetCost(matched []domain.GroupedTrade) decimal.Decimal {
	cost := decimal.Zero
	for _, trade := range matched {
		if trade.Side == domain.Bid {
			cost = cost.Add(trade.Amount)
		} else {
			cost = cost.Sub(trade.Amount)
		}
	}
	return cost
}

// Reconcile fetches recent fills for the instrument, matches them against
// the held balance and returns the matched trades plus the unrealized
// difference between current market value and net cost.
//
// On ErrIncompleteMatch or a missing price the matched trades are still
// returned; only the unrealized figure is unavailable. Accumulation stays
// unrounded; callers round for display.
func (r *Reconciler) Reconcile(ctx context.Context, instrument string, balance decimal.Decimal) ([]domain.GroupedTrade, decimal.Decimal, error) {
	fills, err := r.session.Gateway().TradeHistory(ctx, r.session.Quote(), instrument, MaxResults, 0)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}

	matched, err := Match(Group(fills), balance)
	if err != nil {
		return matched, decimal.Decimal{}, err
	}

	bid, err := r.session.BestBid(ctx, instrument)
	if err != nil {
		return matched, decimal.Decimal{}, err
	}

	currentValue := balance.Mul(bid)
	return matched, currentValue.Sub(NetCost(matched)), nil
}
