package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRaw(t *testing.T) {
	assert.True(t, FromRaw(100000000).Equal(decimal.NewFromInt(1)))
	assert.True(t, FromRaw(50000000).Equal(decimal.RequireFromString("0.5")))
	assert.True(t, FromRaw(1).Equal(decimal.RequireFromString("0.00000001")))
	assert.True(t, FromRaw(-250000000).Equal(decimal.RequireFromString("-2.5")))
	assert.True(t, FromRaw(0).IsZero())
}

func TestToRawRoundTrip(t *testing.T) {
	for _, raw := range []int64{0, 1, 100000000, 123456789, -987654321} {
		assert.Equal(t, raw, ToRaw(FromRaw(raw)))
	}
}

func TestBalanceDecimal(t *testing.T) {
	b := Balance{Currency: "BTC", Raw: 123456789}
	require.True(t, b.Decimal().Equal(decimal.RequireFromString("1.2345679")),
		"got %s", b.Decimal())

	assert.True(t, Balance{Currency: "XRP"}.IsZero())
	assert.False(t, b.IsZero())
}

func TestGroupedTradeSigned(t *testing.T) {
	vol := decimal.RequireFromString("0.5")

	buy := GroupedTrade{Side: Bid, Volume: vol}
	assert.True(t, buy.Signed().Equal(vol))

	sell := GroupedTrade{Side: Ask, Volume: vol}
	assert.True(t, sell.Signed().Equal(vol.Neg()))
}

func TestFundTransferAccessors(t *testing.T) {
	f := FundTransfer{
		Currency:     "AUD",
		TransferType: Deposit,
		Status:       TransferComplete,
		RawAmount:    10000000000,
		RawFee:       100000000,
	}
	assert.True(t, f.Amount().Equal(decimal.NewFromInt(100)))
	assert.True(t, f.Fee().Equal(decimal.NewFromInt(1)))
	assert.True(t, f.Complete())

	f.Status = "Pending Authorization"
	assert.False(t, f.Complete())
}
