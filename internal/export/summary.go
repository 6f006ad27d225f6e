package export

import (
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
)

// Summary contains statistics over a set of positions
type Summary struct {
	TotalPositions  int            `json:"total_positions"`
	OpenCount       int            `json:"open_count"`
	ClosedCount     int            `json:"closed_count"`
	UniqueTokens    int            `json:"unique_tokens"`
	TotalInvested   float64        `json:"total_invested_sol"`
	TotalReturned   float64        `json:"total_returned_sol"`
	TotalPnL        float64        `json:"total_pnl_sol"`
	WinCount        int            `json:"win_count"`
	LossCount       int            `json:"loss_count"`
	WinRate         float64        `json:"win_rate"`
	AvgPnLPercent   float64        `json:"avg_pnl_percent"`
	AvgHoldDuration time.Duration  `json:"avg_hold_duration_ns"`
	ByReason        map[string]int `json:"by_reason"`
}

// Summarize computes statistics. PnL figures cover closed positions only.
func Summarize(positions []*models.Position) Summary {
	summary := Summary{
		TotalPositions: len(positions),
		ByReason:       make(map[string]int),
	}

	tokens := make(map[string]struct{})
	var pctSum float64
	var holdSum time.Duration
	for _, p := range positions {
		tokens[p.TokenAddress] = struct{}{}
		summary.TotalInvested += p.BuyAmountSOL

		if !p.Closed {
			summary.OpenCount++
			continue
		}
		summary.ClosedCount++
		if p.CloseReason != nil {
			summary.ByReason[string(*p.CloseReason)]++
		}
		if p.SellAmountSOL != nil {
			summary.TotalReturned += *p.SellAmountSOL
		}
		if p.SOLDelta != nil {
			summary.TotalPnL += *p.SOLDelta
			switch {
			case *p.SOLDelta > 0:
				summary.WinCount++
			case *p.SOLDelta < 0:
				summary.LossCount++
			}
		}
		if p.PercentageDelta != nil {
			pctSum += *p.PercentageDelta
		}
		if p.SellTimestamp != nil {
			holdSum += p.SellTimestamp.Sub(p.BuyTimestamp)
		}
	}

	summary.UniqueTokens = len(tokens)
	if summary.ClosedCount > 0 {
		n := float64(summary.ClosedCount)
		summary.WinRate = float64(summary.WinCount) / n * 100
		summary.AvgPnLPercent = pctSum / n
		summary.AvgHoldDuration = holdSum / time.Duration(summary.ClosedCount)
	}
	return summary
}
