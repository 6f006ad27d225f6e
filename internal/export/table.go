package export

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
)

// PrintTable writes positions and their summary as a console table
func PrintTable(w io.Writer, positions []*models.Position, now time.Time) error {
	table := tablewriter.NewWriter(w)
	table.Header("Token", "Symbol", "Bought", "Buy price", "SOL", "Status", "Sell price", "PnL SOL", "PnL %")

	for _, p := range positions {
		status := "open " + now.Sub(p.BuyTimestamp).Round(time.Second).String()
		sellPrice, pnl, pct := "-", "-", "-"
		if p.Closed {
			status = "closed"
			if p.CloseReason != nil {
				status = string(*p.CloseReason)
			}
			if p.SellPrice != nil {
				sellPrice = fmt.Sprintf("%.8g", *p.SellPrice)
			}
			if p.SOLDelta != nil {
				pnl = fmt.Sprintf("%+.9f", *p.SOLDelta)
			}
			if p.PercentageDelta != nil {
				pct = fmt.Sprintf("%+.2f%%", *p.PercentageDelta)
			}
		}

		_ = table.Append(
			shortAddress(p.TokenAddress),
			p.TokenSymbol,
			p.BuyTimestamp.Local().Format("01-02 15:04:05"),
			fmt.Sprintf("%.8g", p.BuyPrice),
			fmt.Sprintf("%.6g", p.BuyAmountSOL),
			status,
			sellPrice,
			pnl,
			pct,
		)
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := Summarize(positions)
	_, err := fmt.Fprintf(w, "  %d positions (%d open, %d closed) | PnL %+.9f SOL | win rate %.1f%% | avg %+.2f%%\n",
		s.TotalPositions, s.OpenCount, s.ClosedCount, s.TotalPnL, s.WinRate, s.AvgPnLPercent)
	return err
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "…" + addr[len(addr)-4:]
}
