package marketdata

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/storage/cache"
)

const rawUnit = int64(100000000)

type countingGateway struct {
	balances []domain.Balance
	ticks    map[string]domain.Tick

	balanceCalls int
	tickCalls    int
}

func (g *countingGateway) AccountBalance(context.Context) ([]domain.Balance, error) {
	g.balanceCalls++
	return g.balances, nil
}

func (g *countingGateway) MarketTick(_ context.Context, instrument, currency string) (domain.Tick, error) {
	g.tickCalls++
	tick, ok := g.ticks[domain.PairKey(instrument, currency)]
	if !ok {
		return domain.Tick{}, assert.AnError
	}
	return tick, nil
}

func (g *countingGateway) TradeHistory(context.Context, string, string, int, int64) ([]domain.Fill, error) {
	return nil, nil
}

func (g *countingGateway) FundHistory(context.Context) ([]domain.FundTransfer, error) {
	return nil, nil
}

func (g *countingGateway) MarketOrderBook(context.Context, string, string) (domain.OrderBook, error) {
	return domain.OrderBook{}, nil
}

func newGateway() *countingGateway {
	return &countingGateway{
		balances: []domain.Balance{
			{Currency: "BTC", Raw: rawUnit},
			{Currency: "AUD", Raw: 5000 * rawUnit},
		},
		ticks: map[string]domain.Tick{
			"BTC-AUD": {
				Instrument: "BTC",
				Currency:   "AUD",
				BestBid:    decimal.NewFromInt(50000),
				LastPrice:  decimal.NewFromInt(50100),
			},
		},
	}
}

func TestBalancesFetchedOnce(t *testing.T) {
	gw := newGateway()
	session := NewSession(gw, "AUD", nil)

	ctx := context.Background()
	_, err := session.Balances(ctx)
	require.NoError(t, err)
	_, err = session.Balances(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.balanceCalls)
}

func TestBalance(t *testing.T) {
	session := NewSession(newGateway(), "AUD", nil)
	ctx := context.Background()

	btc, err := session.Balance(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, btc.Equal(decimal.NewFromInt(1)))

	// unknown instrument holds zero, not an error
	none, err := session.Balance(ctx, "DOGE")
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestNoBalances(t *testing.T) {
	session := NewSession(&countingGateway{}, "AUD", nil)

	_, err := session.Balances(context.Background())
	assert.ErrorIs(t, err, ErrNoBalances)
}

func TestTickFetchedOncePerPair(t *testing.T) {
	gw := newGateway()
	session := NewSession(gw, "AUD", nil)

	ctx := context.Background()
	bid, err := session.BestBid(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, bid.Equal(decimal.NewFromInt(50000)))

	last, err := session.LastPrice(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, last.Equal(decimal.NewFromInt(50100)))

	assert.Equal(t, 1, gw.tickCalls)
}

func TestBestBidUnavailable(t *testing.T) {
	gw := newGateway()
	session := NewSession(gw, "AUD", nil)

	_, err := session.BestBid(context.Background(), "DOGE")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestBestBidEmptyPrice(t *testing.T) {
	gw := newGateway()
	gw.ticks["ETH-AUD"] = domain.Tick{Instrument: "ETH", Currency: "AUD"}
	session := NewSession(gw, "AUD", nil)

	_, err := session.BestBid(context.Background(), "ETH")
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestInstrumentsDerivedAndCached(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	gw := newGateway()
	ctx := context.Background()

	instruments, err := NewSession(gw, "AUD", store).Instruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC"}, instruments)
	assert.Equal(t, 1, gw.balanceCalls)

	// second session reads the persisted list without touching the gateway
	cached, err := NewSession(gw, "AUD", store).Instruments(ctx)
	require.NoError(t, err)
	assert.Equal(t, instruments, cached)
	assert.Equal(t, 1, gw.balanceCalls)
}
