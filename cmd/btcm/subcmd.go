package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/getrepo/trade/config"
	"github.com/getrepo/trade/internal/clients/btcmarkets"
	"github.com/getrepo/trade/internal/services/alert"
	"github.com/getrepo/trade/internal/services/collector"
	"github.com/getrepo/trade/internal/services/report"
	"github.com/getrepo/trade/internal/storage/cache"
	"github.com/getrepo/trade/internal/storage/samples"
	"github.com/getrepo/trade/internal/web"
)

const defaultDepth = 200

var (
	balanceCommand = &cli.Command{
		Action:  balance,
		Name:    "balance",
		Aliases: []string{"b"},
		Usage:   "Show balances with unrealized profit per instrument",
	}
	fundsCommand = &cli.Command{
		Action:  funds,
		Name:    "funds",
		Aliases: []string{"f"},
		Usage:   "Show deposit/withdrawal history and net funds",
	}
	ticksCommand = &cli.Command{
		Action:  ticks,
		Name:    "ticks",
		Aliases: []string{"t"},
		Usage:   "Show current instrument prices",
	}
	marketCommand = &cli.Command{
		Action:    market,
		Name:      "market",
		Aliases:   []string{"m"},
		Usage:     "Show the order book for an instrument",
		ArgsUsage: "INSTRUMENT[,DEPTH]",
	}
	collectCommand = &cli.Command{
		Action:  collect,
		Name:    "collect",
		Aliases: []string{"cd"},
		Usage:   "Collect one price sample per instrument",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "with-orderbook",
				Usage: "record the top order book bid instead of the last price",
			},
		},
	}
	watchCommand = &cli.Command{
		Action:  watch,
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Poll prices and ring on configured alert thresholds",
	}
	serveCommand = &cli.Command{
		Action: serve,
		Name:   "serve",
		Usage:  "Serve the collected price charts over HTTP",
	}
	tradesCommand = &cli.Command{
		Action:    trades,
		Name:      "trades",
		Aliases:   []string{"tr"},
		Usage:     "Show recent public trades for an instrument",
		ArgsUsage: "INSTRUMENT",
	}
	ordersCommand = &cli.Command{
		Action:    orders,
		Name:      "orders",
		Aliases:   []string{"o"},
		Usage:     "Show open orders, or one order by id",
		ArgsUsage: "[ORDER_ID]",
	}
	clearCacheCommand = &cli.Command{
		Action:  clearCache,
		Name:    "clear-cache",
		Aliases: []string{"cc"},
		Usage:   "Clear the persistent instrument and fund caches",
	}
)

// env bundles everything a command needs; built fresh per invocation.
type env struct {
	cfg    *config.Config
	client *btcmarkets.Client
	engine *report.Engine
	log    *zap.Logger
	close  func()
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	client, err := btcmarkets.New(cfg.BaseURL, cfg.APIKey, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	instruments, err := cache.Open(cfg.CacheDir + "/instruments")
	if err != nil {
		return nil, err
	}
	fundCache, err := cache.Open(cfg.CacheDir + "/funds")
	if err != nil {
		_ = instruments.Close()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		client: client,
		engine: report.NewEngine(client, instruments, fundCache, cfg.QuoteCurrency, log),
		log:    log,
		close: func() {
			_ = instruments.Close()
			_ = fundCache.Close()
			_ = log.Sync()
		},
	}, nil
}

func balance(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	rep, err := e.engine.Portfolio(c.Context)
	if err != nil {
		return err
	}
	renderBalance(rep, e.cfg.QuoteCurrency)
	return nil
}

func funds(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	transfers, err := e.engine.Funds(c.Context)
	if err != nil {
		return err
	}
	total, err := e.engine.TotalFunds(c.Context)
	if err != nil {
		return err
	}
	renderFunds(transfers, total)
	return nil
}

func ticks(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	session := e.engine.Session()
	instruments, err := session.Instruments(c.Context)
	if err != nil {
		return err
	}

	rows := make([][2]string, 0, len(instruments))
	for _, instrument := range instruments {
		price, err := session.LastPrice(c.Context, instrument)
		if err != nil {
			rows = append(rows, [2]string{instrument, "n/a"})
			continue
		}
		rows = append(rows, [2]string{instrument, price.StringFixed(2)})
	}
	renderTicks(rows)
	return nil
}

func market(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	instrument, depth, err := parseMarketArg(c.Args().First())
	if err != nil {
		return err
	}

	known, err := e.engine.Instruments(c.Context)
	if err != nil {
		return err
	}
	if !contains(known, instrument) {
		return fmt.Errorf("wrong instrument %s", instrument)
	}

	book, err := e.engine.OrderBook(c.Context, instrument)
	if err != nil {
		return err
	}
	renderOrderBook(book, depth)
	return nil
}

func parseMarketArg(arg string) (string, int, error) {
	if arg == "" {
		return "", 0, fmt.Errorf("specify an instrument, e.g.: market BTC,15")
	}

	parts := strings.SplitN(arg, ",", 2)
	instrument := strings.ToUpper(strings.TrimSpace(parts[0]))
	depth := defaultDepth
	if len(parts) == 2 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("invalid depth %q", parts[1])
		}
		if n > defaultDepth {
			n = defaultDepth
		}
		depth = n
	}
	return instrument, depth, nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func trades(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	instrument := strings.ToUpper(strings.TrimSpace(c.Args().First()))
	if instrument == "" {
		return fmt.Errorf("specify an instrument, e.g.: trades BTC")
	}

	known, err := e.engine.Instruments(c.Context)
	if err != nil {
		return err
	}
	if !contains(known, instrument) {
		return fmt.Errorf("wrong instrument %s", instrument)
	}

	recent, err := e.client.MarketTrades(c.Context, instrument, e.cfg.QuoteCurrency)
	if err != nil {
		return err
	}
	renderMarketTrades(recent)
	return nil
}

func orders(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if arg := c.Args().First(); arg != "" {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", arg)
		}
		order, err := e.client.OrderDetail(c.Context, id)
		if err != nil {
			return err
		}
		renderOrders([]btcmarkets.Order{order})
		return nil
	}

	instruments, err := e.engine.Instruments(c.Context)
	if err != nil {
		return err
	}

	var open []btcmarkets.Order
	for _, instrument := range instruments {
		page, err := e.client.OpenOrders(c.Context, e.cfg.QuoteCurrency, instrument, defaultDepth)
		if err != nil {
			return err
		}
		open = append(open, page...)
	}
	renderOrders(open)
	return nil
}

func collect(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	store, err := samples.NewWALStore(e.cfg.DataDir + "/samples")
	if err != nil {
		return err
	}
	defer store.Close()

	return collector.New(e.engine, store, e.log).CollectAll(c.Context, c.Bool("with-orderbook"))
}

func watch(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	rules := make([]alert.Rule, 0, len(e.cfg.Alerts))
	for _, r := range e.cfg.Alerts {
		rules = append(rules, alert.Rule{Instrument: r.Instrument, Above: r.Above, Price: r.Price})
	}

	watcher, err := alert.NewWatcher(e.engine, rules, e.cfg.PollInterval, c.App.Writer, e.log)
	if err != nil {
		return err
	}
	return watcher.Run(c.Context)
}

func serve(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	store, err := samples.NewWALStore(e.cfg.DataDir + "/samples")
	if err != nil {
		return err
	}
	defer store.Close()

	server := web.NewServer(e.cfg.DashboardAddr, collector.New(e.engine, store, e.log), e.log)
	if e.cfg.DashboardDomain != "" {
		return server.StartWithAutoTLS(c.Context, e.cfg.DashboardDomain, e.cfg.CacheDir+"/certs")
	}
	return server.Start(c.Context)
}

func clearCache(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.engine.ClearCaches(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, styGreen.Render("Cache cleared successfully!"))
	return nil
}
