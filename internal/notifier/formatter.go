package notifier

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"RSITrader/internal/model"
	"RSITrader/internal/recorder"
)

func renderTable(header []string, rows [][]string) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()
	return b.String()
}

// FormatOrdersSummary itemizes the orders filled on day.
func FormatOrdersSummary(day string, orders []model.Order) (subject, body string) {
	subject = fmt.Sprintf("Trading summary %s: %d filled orders", day, len(orders))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Filled orders for %s\n\n", day))
	if len(orders) == 0 {
		b.WriteString("No orders were filled.\n")
		return subject, b.String()
	}

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.FilledAt.Format("15:04:05"),
			strings.ToUpper(string(o.Side)),
			o.Symbol,
			fmt.Sprintf("%g", o.FilledQty),
			fmt.Sprintf("$%.2f", o.FilledAvgPrice),
		})
	}
	b.WriteString(renderTable([]string{"Time", "Side", "Symbol", "Qty", "Avg Price"}, rows))
	return subject, b.String()
}

// FormatPositionsSummary itemizes open positions with unrealized P&L.
func FormatPositionsSummary(day string, positions []model.Position, equity float64) (subject, body string) {
	subject = fmt.Sprintf("Trading summary %s: %d open positions", day, len(positions))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Open positions for %s\n\n", day))
	if len(positions) == 0 {
		b.WriteString("No open positions.\n")
	} else {
		var total float64
		rows := make([][]string, 0, len(positions))
		for _, p := range positions {
			total += p.UnrealizedPL
			rows = append(rows, []string{
				p.Symbol,
				fmt.Sprintf("%g", p.Qty),
				fmt.Sprintf("$%.2f", p.AvgEntryPrice),
				fmt.Sprintf("$%.2f", p.CurrentPrice),
				fmt.Sprintf("%+.2f", p.UnrealizedPL),
			})
		}
		b.WriteString(renderTable([]string{"Symbol", "Qty", "Entry", "Current", "Unrealized P&L"}, rows))
		b.WriteString(fmt.Sprintf("\nTotal unrealized P&L: %+.2f\n", total))
	}
	if equity > 0 {
		b.WriteString(fmt.Sprintf("Account equity: $%.2f\n", equity))
	}
	return subject, b.String()
}

// FormatTrade describes a single submitted order.
func FormatTrade(rec *recorder.TradeRecord) (subject, body string) {
	subject = fmt.Sprintf("%s %d %s @ $%.2f", rec.Action, rec.Qty, rec.Symbol, rec.Price)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Action: %s\n", rec.Action))
	b.WriteString(fmt.Sprintf("Symbol: %s\n", rec.Symbol))
	b.WriteString(fmt.Sprintf("Quantity: %d\n", rec.Qty))
	b.WriteString(fmt.Sprintf("Price: $%.2f\n", rec.Price))
	b.WriteString(fmt.Sprintf("Time: %s\n", rec.Time.Format("2006-01-02 15:04:05")))
	if rec.OrderID != "" {
		b.WriteString(fmt.Sprintf("Order ID: %s\n", rec.OrderID))
	}
	return subject, b.String()
}
