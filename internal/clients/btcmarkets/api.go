package btcmarkets

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/domain"
)

// Logical method names, reported inside APIError.
const (
	methodAccountBalance = "account_balance"
	methodMarketTick     = "get_market_tick"
	methodTradeHistory   = "trade_history"
	methodFundHistory    = "fund_history"
	methodOrderBook      = "get_market_orderbook"
	methodMarketTrades   = "get_market_trades"
	methodOrderOpen      = "order_open"
	methodOrderDetail    = "order_detail"
)

// AccountBalance fetches the balance snapshot for every currency of the
// account.
func (c *Client) AccountBalance(ctx context.Context) ([]domain.Balance, error) {
	var raw []rawBalance
	if err := c.request(ctx, methodAccountBalance, GET, "/account/balance", nil, &raw); err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(raw))
	for _, b := range raw {
		if b.Currency == "" {
			return nil, apiErrorf(methodAccountBalance, "balance entry without currency")
		}
		balances = append(balances, domain.Balance{Currency: b.Currency, Raw: b.Balance})
	}
	return balances, nil
}

// MarketTick fetches the current tick for instrument priced in currency.
func (c *Client) MarketTick(ctx context.Context, instrument, currency string) (domain.Tick, error) {
	path := fmt.Sprintf("/market/%s/%s/tick", instrument, currency)

	var raw rawTick
	if err := c.request(ctx, methodMarketTick, GET, path, nil, &raw); err != nil {
		return domain.Tick{}, err
	}
	if raw.Instrument == "" || raw.Currency == "" {
		return domain.Tick{}, apiErrorf(methodMarketTick, "tick for %s/%s missing pair fields", instrument, currency)
	}

	return domain.Tick{
		Instrument: raw.Instrument,
		Currency:   raw.Currency,
		LastPrice:  decimal.NewFromFloat(raw.LastPrice),
		BestBid:    decimal.NewFromFloat(raw.BestBid),
		BestAsk:    decimal.NewFromFloat(raw.BestAsk),
		Timestamp:  time.Unix(raw.Timestamp, 0),
	}, nil
}

// TradeHistory fetches up to limit most recent fills for the account on
// the instrument/currency pair, newest first. since is a trade id lower
// bound, zero for the full window.
func (c *Client) TradeHistory(ctx context.Context, currency, instrument string, limit int, since int64) ([]domain.Fill, error) {
	req := historyRequest{Currency: currency, Instrument: instrument, Limit: limit, Since: since}

	var resp tradeHistoryResponse
	if err := c.request(ctx, methodTradeHistory, POST, "/order/trade/history", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiErrorf(methodTradeHistory, "%s", resp.ErrorMessage)
	}

	fills := make([]domain.Fill, 0, len(resp.Trades))
	for _, t := range resp.Trades {
		side := domain.Side(t.Side)
		if side != domain.Bid && side != domain.Ask {
			return nil, apiErrorf(methodTradeHistory, "trade %d has unknown side %q", t.ID, t.Side)
		}
		fills = append(fills, domain.Fill{
			ID:           t.ID,
			OrderID:      t.OrderID,
			Side:         side,
			RawVolume:    t.Volume,
			RawPrice:     t.Price,
			RawFee:       t.Fee,
			CreationTime: time.UnixMilli(t.CreationTime),
		})
	}
	return fills, nil
}

// FundHistory fetches the full deposit/withdrawal history of the account.
func (c *Client) FundHistory(ctx context.Context) ([]domain.FundTransfer, error) {
	var resp fundHistoryResponse
	if err := c.request(ctx, methodFundHistory, POST, "/fundtransfer/history", struct{}{}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiErrorf(methodFundHistory, "%s", resp.ErrorMessage)
	}

	transfers := make([]domain.FundTransfer, 0, len(resp.FundTransfers))
	for _, f := range resp.FundTransfers {
		transferType := domain.TransferType(f.TransferType)
		if transferType != domain.Deposit && transferType != domain.Withdraw {
			return nil, apiErrorf(methodFundHistory, "transfer %d has unknown type %q", f.FundTransferID, f.TransferType)
		}
		transfers = append(transfers, domain.FundTransfer{
			Currency:     f.Currency,
			TransferType: transferType,
			Status:       f.Status,
			RawAmount:    f.Amount,
			RawFee:       f.Fee,
			CreationTime: time.UnixMilli(f.CreationTime),
		})
	}
	return transfers, nil
}

// MarketOrderBook fetches the current depth for instrument priced in
// currency.
func (c *Client) MarketOrderBook(ctx context.Context, instrument, currency string) (domain.OrderBook, error) {
	path := fmt.Sprintf("/market/%s/%s/orderbook", instrument, currency)

	var raw rawOrderBook
	if err := c.request(ctx, methodOrderBook, GET, path, nil, &raw); err != nil {
		return domain.OrderBook{}, err
	}
	if raw.Instrument == "" || raw.Currency == "" {
		return domain.OrderBook{}, apiErrorf(methodOrderBook, "order book for %s/%s missing pair fields", instrument, currency)
	}

	return domain.OrderBook{
		Instrument: raw.Instrument,
		Currency:   raw.Currency,
		Bids:       toQuotes(raw.Bids),
		Asks:       toQuotes(raw.Asks),
	}, nil
}

func toQuotes(levels [][2]float64) []domain.Quote {
	quotes := make([]domain.Quote, 0, len(levels))
	for _, l := range levels {
		quotes = append(quotes, domain.Quote{
			Price:  decimal.NewFromFloat(l[0]),
			Volume: decimal.NewFromFloat(l[1]),
		})
	}
	return quotes
}

// MarketTrades fetches recent public trades for the pair.
func (c *Client) MarketTrades(ctx context.Context, instrument, currency string) ([]MarketTrade, error) {
	path := fmt.Sprintf("/market/%s/%s/trades", instrument, currency)

	var raw []rawMarketTrade
	if err := c.request(ctx, methodMarketTrades, GET, path, nil, &raw); err != nil {
		return nil, err
	}

	trades := make([]MarketTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, MarketTrade{TID: t.TID, Amount: t.Amount, Price: t.Price, Date: t.Date})
	}
	return trades, nil
}

// OpenOrders fetches the account's open orders on the pair.
func (c *Client) OpenOrders(ctx context.Context, currency, instrument string, limit int) ([]Order, error) {
	req := historyRequest{Currency: currency, Instrument: instrument, Limit: limit}

	var resp ordersResponse
	if err := c.request(ctx, methodOrderOpen, POST, "/order/open", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apiErrorf(methodOrderOpen, "%s", resp.ErrorMessage)
	}
	return toOrders(resp.Orders), nil
}

// OrderDetail fetches one order by id.
func (c *Client) OrderDetail(ctx context.Context, id int64) (Order, error) {
	var resp ordersResponse
	if err := c.request(ctx, methodOrderDetail, POST, "/order/detail", orderDetailRequest{OrderIDs: []int64{id}}, &resp); err != nil {
		return Order{}, err
	}
	if !resp.Success {
		return Order{}, apiErrorf(methodOrderDetail, "%s", resp.ErrorMessage)
	}
	if len(resp.Orders) == 0 {
		return Order{}, apiErrorf(methodOrderDetail, "order %d not found", id)
	}
	return toOrders(resp.Orders)[0], nil
}

func toOrders(raw []rawOrder) []Order {
	orders := make([]Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, Order{
			ID:           o.ID,
			Currency:     o.Currency,
			Instrument:   o.Instrument,
			OrderSide:    o.OrderSide,
			OrderType:    o.OrderType,
			Status:       o.Status,
			RawPrice:     o.Price,
			RawVolume:    o.Volume,
			RawOpenVol:   o.OpenVolume,
			CreationTime: o.CreationTime,
		})
	}
	return orders
}
