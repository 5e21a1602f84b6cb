// Command btcm is the BTC Markets portfolio dashboard: it shows account
// balances with unrealized profit per instrument, fund totals, current
// prices and market depth, collects price history and serves it as charts.
//
// Usage:
//
//	btcm balance
//	btcm funds
//	btcm ticks
//	btcm market BTC,15
//	btcm trades BTC
//	btcm orders [ORDER_ID]
//	btcm collect --with-orderbook
//	btcm watch
//	btcm serve
//	btcm clear-cache
//
// Required environment variables (a .env file is honoured):
//
//	BTCMARKETS_API_KEY, BTCMARKETS_PRIVATE_KEY
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Value:   "",
	Usage:   "load configuration from yaml `file`",
}

var app *cli.App

func init() {
	app = &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "BTC Markets portfolio dashboard",
		Version: "1.0.0",
	}

	app.Commands = []*cli.Command{
		balanceCommand,
		fundsCommand,
		ticksCommand,
		marketCommand,
		tradesCommand,
		ordersCommand,
		collectCommand,
		watchCommand,
		serveCommand,
		clearCacheCommand,
	}
	app.Flags = []cli.Flag{
		configFlag,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
