// Package collector samples instrument prices into the persistent sample
// store, feeding the chart dashboard.
package collector

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/getrepo/trade/internal/services/marketdata"
	"github.com/getrepo/trade/internal/storage/samples"
)

type sessionFactory interface {
	Session() *marketdata.Session
}

// Collector records one price point per instrument per collection pass.
type Collector struct {
	sessions sessionFactory
	store    *samples.WALStore
	log      *zap.Logger
}

// New creates a Collector writing to store.
func New(sessions sessionFactory, store *samples.WALStore, log *zap.Logger) *Collector {
	return &Collector{sessions: sessions, store: store, log: log}
}

// CollectAll samples every tradable instrument once. With withOrderBook
// the price recorded is the top bid of the order book instead of the last
// traded price. An unavailable price skips the instrument, it does not
// abort the pass.
func (c *Collector) CollectAll(ctx context.Context, withOrderBook bool) error {
	session := c.sessions.Session()

	instruments, err := session.Instruments(ctx)
	if err != nil {
		return err
	}

	for _, instrument := range instruments {
		if err := c.collect(ctx, session, instrument, withOrderBook); err != nil {
			if errors.Is(err, marketdata.ErrPriceUnavailable) {
				c.log.Warn("skipping instrument without price",
					zap.String("instrument", instrument),
					zap.Error(err))
				continue
			}
			return err
		}
	}
	return nil
}

func (c *Collector) collect(ctx context.Context, session *marketdata.Session, instrument string, withOrderBook bool) error {
	price, err := session.LastPrice(ctx, instrument)
	if withOrderBook {
		book, bookErr := session.Gateway().MarketOrderBook(ctx, instrument, session.Quote())
		if bookErr != nil {
			return bookErr
		}
		if len(book.Bids) == 0 {
			return errors.WithMessagef(marketdata.ErrPriceUnavailable, "%s: empty order book", instrument)
		}
		price, err = book.Bids[0].Price, nil
	}
	if err != nil {
		return err
	}

	return c.store.Save(samples.PricePoint{
		Instrument: instrument,
		Price:      price.String(),
		Timestamp:  time.Now(),
	})
}

// Series is the collected price history of one instrument.
type Series struct {
	Instrument string               `json:"instrument"`
	Points     []samples.PricePoint `json:"points"`
}

// ChartData returns the collected series of every sampled instrument.
func (c *Collector) ChartData() ([]Series, error) {
	instruments, err := c.store.Instruments()
	if err != nil {
		return nil, err
	}

	series := make([]Series, 0, len(instruments))
	for _, instrument := range instruments {
		points, err := c.store.Points(instrument)
		if err != nil {
			return nil, err
		}
		series = append(series, Series{Instrument: instrument, Points: points})
	}
	return series, nil
}
