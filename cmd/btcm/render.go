package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/getrepo/trade/internal/clients/btcmarkets"
	"github.com/getrepo/trade/internal/domain"
	"github.com/getrepo/trade/internal/services/report"
)

var (
	styComment = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styGreen   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styRed     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styCyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styComment.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func signedStyle(negative bool) lipgloss.Style {
	if negative {
		return styRed
	}
	return styGreen
}

func renderBalance(rep *report.Report, quote string) {
	t := newTable("", "Quantity", "Price", quote, "+/-")

	for _, row := range rep.Rows {
		if row.Instrument != quote && row.Balance.IsZero() {
			continue
		}

		price, value, diff := "", "", ""
		if row.Instrument != quote {
			if row.PriceKnown {
				price = row.BestBid.StringFixed(2)
				value = row.Value.StringFixed(2)
			}
			switch {
			case row.Err != nil:
				diff = styRed.Render("error")
			case row.HasUnrealized:
				d := row.Unrealized.Round(2)
				diff = signedStyle(d.IsNegative()).Render(d.StringFixed(2))
			}
		} else {
			value = row.Value.StringFixed(2)
		}

		t.Row(styComment.Render(row.Instrument), row.Balance.String(), price, value, diff)
	}

	fmt.Println(t)
	fmt.Printf("%s  $%s\n", styComment.Render("TOTAL"), rep.BalanceTotal.StringFixed(2))
	fmt.Printf("%s  $%s\n", styComment.Render("FUNDS"), rep.FundsTotal.StringFixed(2))
	fmt.Printf("%s   %s\n", styComment.Render("DIFF"),
		signedStyle(rep.PortfolioDiff.IsNegative()).Render("$"+rep.PortfolioDiff.StringFixed(2)))
}

func renderFunds(transfers []domain.FundTransfer, total decimal.Decimal) {
	t := newTable("Date", "Type", "Cur", "Amount")

	for _, f := range transfers {
		style := styGreen
		if f.TransferType == domain.Deposit {
			style = styCyan
		}
		t.Row(
			f.CreationTime.Format("2006-01-02"),
			style.Render(string(f.TransferType)),
			f.Currency,
			f.Amount().StringFixed(2),
		)
	}

	fmt.Println(t)
	fmt.Printf("%s  $%s\n", styComment.Render("TOTAL"), total.StringFixed(2))
}

func renderTicks(rows [][2]string) {
	t := newTable("", "Price")
	for _, row := range rows {
		t.Row(styComment.Render(row[0]), row[1])
	}
	fmt.Println(t)
}

func renderMarketTrades(recent []btcmarkets.MarketTrade) {
	t := newTable("Time", "Price", "Amount")
	for _, tr := range recent {
		t.Row(
			time.Unix(tr.Date, 0).Format("15:04:05"),
			strconv.FormatFloat(tr.Price, 'f', 2, 64),
			strconv.FormatFloat(tr.Amount, 'f', -1, 64),
		)
	}
	fmt.Println(t)
}

func renderOrders(orders []btcmarkets.Order) {
	t := newTable("ID", "Pair", "Side", "Type", "Price", "Open/Vol.", "Status")
	for _, o := range orders {
		side := styGreen
		if o.OrderSide == "Ask" {
			side = styRed
		}
		t.Row(
			strconv.FormatInt(o.ID, 10),
			o.Instrument+"/"+o.Currency,
			side.Render(o.OrderSide),
			o.OrderType,
			domain.FromRaw(o.RawPrice).StringFixed(2),
			domain.FromRaw(o.RawOpenVol).String()+"/"+domain.FromRaw(o.RawVolume).String(),
			o.Status,
		)
	}
	fmt.Println(t)
}

func renderOrderBook(book domain.OrderBook, depth int) {
	t := newTable(styGreen.Render("Price"), styGreen.Render("Vol."), "", styRed.Render("Price"), styRed.Render("Vol."))

	for i := 0; i < depth && (i < len(book.Bids) || i < len(book.Asks)); i++ {
		cells := []string{"", "", "", "", ""}
		if i < len(book.Bids) {
			cells[0] = styGreen.Render(book.Bids[i].Price.String())
			cells[1] = styGreen.Render(book.Bids[i].Volume.String())
		}
		if i < len(book.Asks) {
			cells[3] = styRed.Render(book.Asks[i].Price.String())
			cells[4] = styRed.Render(book.Asks[i].Volume.String())
		}
		t.Row(cells...)
	}

	fmt.Println(t)
}
