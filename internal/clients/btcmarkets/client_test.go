package btcmarkets

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getrepo/trade/internal/domain"
)

const testSecret = "sw0rdf1sh"

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte(testSecret))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, "api-key", testKey())
	require.NoError(t, err)
	return client
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New("", "api-key", "not base64 !!!")
	assert.Error(t, err)
}

func TestRequestSigning(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "api-key", r.Header.Get("apikey"))

		timestamp := r.Header.Get("timestamp")
		require.NotEmpty(t, timestamp)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		mac := hmac.New(sha512.New, []byte(testSecret))
		mac.Write([]byte(r.URL.Path + "\n" + timestamp + "\n" + string(body)))
		want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		assert.Equal(t, want, r.Header.Get("signature"))

		_ = json.NewEncoder(w).Encode(tradeHistoryResponse{envelope: envelope{Success: true}})
	})

	_, err := client.TradeHistory(context.Background(), "AUD", "BTC", 10, 0)
	require.NoError(t, err)
}

func TestAccountBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/balance", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]rawBalance{
			{Currency: "BTC", Balance: 150000000},
			{Currency: "AUD", Balance: 500000000000},
		})
	})

	balances, err := client.AccountBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Balance{
		{Currency: "BTC", Raw: 150000000},
		{Currency: "AUD", Raw: 500000000000},
	}, balances)
}

func TestMarketTick(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market/BTC/AUD/tick", r.URL.Path)
		_ = json.NewEncoder(w).Encode(rawTick{
			Instrument: "BTC",
			Currency:   "AUD",
			LastPrice:  50100.5,
			BestBid:    50000,
			BestAsk:    50200,
			Timestamp:  1700000000,
		})
	})

	tick, err := client.MarketTick(context.Background(), "BTC", "AUD")
	require.NoError(t, err)
	assert.Equal(t, "BTC", tick.Instrument)
	assert.True(t, tick.BestBid.Equal(decimal.RequireFromString("50000")))
	assert.True(t, tick.LastPrice.Equal(decimal.RequireFromString("50100.5")))
}

func TestMarketTickMissingPair(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.MarketTick(context.Background(), "BTC", "AUD")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "get_market_tick", apiErr.Method)
}

func TestTradeHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order/trade/history", r.URL.Path)

		var req historyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AUD", req.Currency)
		assert.Equal(t, "BTC", req.Instrument)
		assert.Equal(t, 200, req.Limit)

		_ = json.NewEncoder(w).Encode(tradeHistoryResponse{
			envelope: envelope{Success: true},
			Trades: []rawTrade{
				{ID: 1, OrderID: 42, Side: "Bid", Volume: 50000000, Price: 4000000000000, Fee: 10000, CreationTime: 1700000000000},
			},
		})
	})

	fills, err := client.TradeHistory(context.Background(), "AUD", "BTC", 200, 0)
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, domain.Bid, fills[0].Side)
	assert.Equal(t, int64(42), fills[0].OrderID)
	assert.Equal(t, int64(50000000), fills[0].RawVolume)
}

func TestTradeHistoryAPIFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tradeHistoryResponse{
			envelope: envelope{Success: false, ErrorMessage: "Invalid currency"},
		})
	})

	_, err := client.TradeHistory(context.Background(), "BOGUS", "BTC", 10, 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "trade_history", apiErr.Method)
	assert.Contains(t, apiErr.Error(), "Invalid currency")
}

func TestTradeHistoryUnknownSide(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tradeHistoryResponse{
			envelope: envelope{Success: true},
			Trades:   []rawTrade{{ID: 1, Side: "Sideways"}},
		})
	})

	_, err := client.TradeHistory(context.Background(), "AUD", "BTC", 10, 0)
	assert.Error(t, err)
}

func TestFundHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundtransfer/history", r.URL.Path)
		_ = json.NewEncoder(w).Encode(fundHistoryResponse{
			envelope: envelope{Success: true},
			FundTransfers: []rawFundTransfer{
				{FundTransferID: 1, Status: "Complete", Currency: "AUD", Amount: 10000000000, Fee: 0, TransferType: "DEPOSIT", CreationTime: 1700000000000},
			},
		})
	})

	transfers, err := client.FundHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, domain.Deposit, transfers[0].TransferType)
	assert.True(t, transfers[0].Complete())
}

func TestMarketOrderBook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market/BTC/AUD/orderbook", r.URL.Path)
		_ = json.NewEncoder(w).Encode(rawOrderBook{
			Instrument: "BTC",
			Currency:   "AUD",
			Bids:       [][2]float64{{49999.5, 0.25}},
			Asks:       [][2]float64{{50001, 1.5}},
		})
	})

	book, err := client.MarketOrderBook(context.Background(), "BTC", "AUD")
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.True(t, book.Bids[0].Price.Equal(decimal.RequireFromString("49999.5")))
}

func TestMarketOrderBookServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"errorCode":3,"errorMessage":"service unavailable"}`))
	})

	_, err := client.MarketOrderBook(context.Background(), "BTC", "AUD")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "get_market_orderbook", apiErr.Method)
}

func TestOrderDetailNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ordersResponse{envelope: envelope{Success: true}})
	})

	_, err := client.OrderDetail(context.Background(), 99)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "not found")
}
