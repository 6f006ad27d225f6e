// internal/monitor/rules.go
package monitor

import (
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
)

// Rules holds the close thresholds. TakeProfit and StopLoss are multipliers of
// the buy price.
type Rules struct {
	TakeProfit float64
	MaxHold    time.Duration
	StopLoss   float64
}

// DefaultRules returns +2.5% take profit, a 300s hold limit and -50% stop loss.
func DefaultRules() Rules {
	return Rules{
		TakeProfit: 1.025,
		MaxHold:    300 * time.Second,
		StopLoss:   0.5,
	}
}

// Evaluate decides whether a position should be closed. Take profit wins over
// the time limit, which wins over stop loss.
func Evaluate(buyPrice, currentPrice float64, elapsed time.Duration, r Rules) (models.CloseReason, bool) {
	switch {
	case currentPrice >= buyPrice*r.TakeProfit:
		return models.ReasonTakeProfit, true
	case elapsed >= r.MaxHold:
		return models.ReasonTimeExit, true
	case currentPrice <= buyPrice*r.StopLoss:
		return models.ReasonStopLoss, true
	}
	return "", false
}
