package btcmarkets

// Wire types decoded from API responses. Private endpoints share the
// success/errorMessage envelope; market-data endpoints respond bare.

type envelope struct {
	Success      bool   `json:"success"`
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type rawBalance struct {
	Currency     string `json:"currency"`
	Balance      int64  `json:"balance"`
	PendingFunds int64  `json:"pendingFunds"`
}

type rawTick struct {
	Instrument string  `json:"instrument"`
	Currency   string  `json:"currency"`
	LastPrice  float64 `json:"lastPrice"`
	BestBid    float64 `json:"bestBid"`
	BestAsk    float64 `json:"bestAsk"`
	Timestamp  int64   `json:"timestamp"`
}

type rawTrade struct {
	ID           int64  `json:"id"`
	CreationTime int64  `json:"creationTime"`
	Description  string `json:"description"`
	Price        int64  `json:"price"`
	Volume       int64  `json:"volume"`
	Side         string `json:"side"`
	Fee          int64  `json:"fee"`
	OrderID      int64  `json:"orderId"`
}

type tradeHistoryResponse struct {
	envelope
	Trades []rawTrade `json:"trades"`
}

type historyRequest struct {
	Currency   string `json:"currency"`
	Instrument string `json:"instrument"`
	Limit      int    `json:"limit"`
	Since      int64  `json:"since"`
}

type rawFundTransfer struct {
	FundTransferID int64  `json:"fundTransferId"`
	Status         string `json:"status"`
	Currency       string `json:"currency"`
	Amount         int64  `json:"amount"`
	Fee            int64  `json:"fee"`
	TransferType   string `json:"transferType"`
	CreationTime   int64  `json:"creationTime"`
	Description    string `json:"description"`
}

type fundHistoryResponse struct {
	envelope
	FundTransfers []rawFundTransfer `json:"fundTransfers"`
}

type rawOrderBook struct {
	Instrument string       `json:"instrument"`
	Currency   string       `json:"currency"`
	Timestamp  int64        `json:"timestamp"`
	Bids       [][2]float64 `json:"bids"`
	Asks       [][2]float64 `json:"asks"`
}

type rawMarketTrade struct {
	TID    int64   `json:"tid"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
	Date   int64   `json:"date"`
}

type rawOrder struct {
	ID              int64      `json:"id"`
	Currency        string     `json:"currency"`
	Instrument      string     `json:"instrument"`
	OrderSide       string     `json:"orderSide"`
	OrderType       string     `json:"ordertype"`
	CreationTime    int64      `json:"creationTime"`
	Status          string     `json:"status"`
	Price           int64      `json:"price"`
	Volume          int64      `json:"volume"`
	OpenVolume      int64      `json:"openVolume"`
	Trades          []rawTrade `json:"trades"`
	ClientRequestID string     `json:"clientRequestId"`
}

type ordersResponse struct {
	envelope
	Orders []rawOrder `json:"orders"`
}

type orderDetailRequest struct {
	OrderIDs []int64 `json:"orderIds"`
}

// Order is an exchange order as returned by the open-orders and
// order-detail endpoints. Read-only here; order creation is out of scope.
type Order struct {
	ID           int64
	Currency     string
	Instrument   string
	OrderSide    string
	OrderType    string
	Status       string
	RawPrice     int64
	RawVolume    int64
	RawOpenVol   int64
	CreationTime int64
}

// MarketTrade is one public trade from the market trades endpoint.
type MarketTrade struct {
	TID    int64
	Amount float64
	Price  float64
	Date   int64
}
