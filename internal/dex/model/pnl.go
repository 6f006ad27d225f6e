// Package model internal/dex/model/pnl.go
package model

import "github.com/shopspring/decimal"

// PnLResult holds realized profit and loss of one round trip.
type PnLResult struct {
	InitialInvestment float64 // SOL spent on the buy
	SellAmount        float64 // SOL received from the sell
	NetPnL            float64 // SellAmount - InitialInvestment
	PnLPercentage     float64 // NetPnL ÷ InitialInvestment x 100
}

// NewPnL computes the result for a position bought with invested SOL and sold
// for received SOL. A zero investment yields a zero percentage.
func NewPnL(invested, received float64) PnLResult {
	in := decimal.NewFromFloat(invested)
	out := decimal.NewFromFloat(received)
	net := out.Sub(in)

	res := PnLResult{
		InitialInvestment: invested,
		SellAmount:        received,
		NetPnL:            net.InexactFloat64(),
	}
	if !in.IsZero() {
		res.PnLPercentage = net.Div(in).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return res
}
