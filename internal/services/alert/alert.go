// Package alert implements the price-watch loop: poll last prices at a
// fixed interval and notify when a configured threshold is crossed.
package alert

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/getrepo/trade/internal/services/marketdata"
)

// Rule is one price threshold to watch.
type Rule struct {
	Instrument string
	Above      bool
	Price      decimal.Decimal
}

// String describes the rule in log-friendly form.
func (r Rule) String() string {
	direction := "below"
	if r.Above {
		direction = "above"
	}
	return fmt.Sprintf("%s %s %s", r.Instrument, direction, r.Price.String())
}

// Triggered reports whether price crosses the rule's bound.
func (r Rule) Triggered(price decimal.Decimal) bool {
	if r.Above {
		return price.GreaterThanOrEqual(r.Price)
	}
	return price.LessThanOrEqual(r.Price)
}

// sessionFactory opens a fresh market data session per poll iteration, so
// iterations share no mutable state.
type sessionFactory interface {
	Session() *marketdata.Session
}

// Watcher polls prices and rings the terminal bell when a rule triggers.
type Watcher struct {
	sessions sessionFactory
	rules    []Rule
	interval time.Duration
	out      io.Writer
	log      *zap.Logger
}

// NewWatcher creates a Watcher. out receives the audible bell byte on
// every trigger (normally the terminal).
func NewWatcher(sessions sessionFactory, rules []Rule, interval time.Duration, out io.Writer, log *zap.Logger) (*Watcher, error) {
	if len(rules) == 0 {
		return nil, errors.New("no alert rules configured")
	}
	if interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	return &Watcher{sessions: sessions, rules: rules, interval: interval, out: out, log: log}, nil
}

// Run polls until ctx is cancelled; cancellation is the loop's normal
// exit and returns nil. Each iteration is independent: a fresh session,
// one price fetch per distinct instrument, a notification for every rule
// currently beyond its bound. Price failures are logged and never stop
// the loop.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	session := w.sessions.Session()

	for _, rule := range w.rules {
		price, err := session.LastPrice(ctx, rule.Instrument)
		if err != nil {
			w.log.Warn("price fetch failed during alert poll",
				zap.String("rule", rule.String()),
				zap.Error(err))
			continue
		}

		if rule.Triggered(price) {
			fmt.Fprint(w.out, "\a")
			w.log.Info("price alert",
				zap.String("rule", rule.String()),
				zap.String("price", price.String()))
		}
	}
}
