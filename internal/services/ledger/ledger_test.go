package ledger

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

type fakeGateway struct {
	transfers []domain.FundTransfer
	calls     int
}

func (f *fakeGateway) AccountBalance(context.Context) ([]domain.Balance, error) {
	return nil, nil
}

func (f *fakeGateway) MarketTick(context.Context, string, string) (domain.Tick, error) {
	return domain.Tick{}, nil
}

func (f *fakeGateway) TradeHistory(context.Context, string, string, int, int64) ([]domain.Fill, error) {
	return nil, nil
}

func (f *fakeGateway) FundHistory(context.Context) ([]domain.FundTransfer, error) {
	f.calls++
	return f.transfers, nil
}

func (f *fakeGateway) MarketOrderBook(context.Context, string, string) (domain.OrderBook, error) {
	return domain.OrderBook{}, nil
}

func sampleTransfers() []domain.FundTransfer {
	return []domain.FundTransfer{
		{Currency: "AUD", TransferType: domain.Deposit, Status: domain.TransferComplete, RawAmount: 100 * rawUnit, RawFee: rawUnit},
		{Currency: "AUD", TransferType: domain.Withdraw, Status: domain.TransferComplete, RawAmount: 50 * rawUnit, RawFee: rawUnit / 2},
		{Currency: "AUD", TransferType: domain.Deposit, Status: "Pending Authorization", RawAmount: 1000 * rawUnit},
		{Currency: "BTC", TransferType: domain.Deposit, Status: domain.TransferComplete, RawAmount: rawUnit},
	}
}

func TestTotal(t *testing.T) {
	// deposit 100 minus fee 1, withdrawal -50 minus fee 0.5; pending and
	// non-quote transfers are ignored
	total := Total(sampleTransfers(), "AUD")
	assert.True(t, total.Equal(decimal.RequireFromString("48.5")), "got %s", total)
}

func TestTotalOrderInvariant(t *testing.T) {
	transfers := sampleTransfers()
	reversed := make([]domain.FundTransfer, len(transfers))
	for i, f := range transfers {
		reversed[len(transfers)-1-i] = f
	}
	assert.True(t, Total(transfers, "AUD").Equal(Total(reversed, "AUD")))
}

func TestTotalEmpty(t *testing.T) {
	assert.True(t, Total(nil, "AUD").IsZero())
}

func TestFundsMemoisesPerRun(t *testing.T) {
	gw := &fakeGateway{transfers: sampleTransfers()}
	l := New(gw, nil, "AUD")

	_, err := l.Funds(context.Background())
	require.NoError(t, err)
	_, err = l.Total(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, gw.calls)
}

func TestFundsPersistentCache(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	gw := &fakeGateway{transfers: sampleTransfers()}

	first, err := New(gw, store, "AUD").Funds(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.Equal(t, 1, gw.calls)

	// a fresh ledger over the same store serves from cache
	second, err := New(gw, store, "AUD").Funds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gw.calls)
}
