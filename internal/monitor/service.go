// internal/monitor/service.go
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/dex/model"
	"github.com/rovshanmuradov/trend-sniper/internal/notify"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// PositionStore is the part of storage.Store the monitor needs.
type PositionStore interface {
	ListOpen(ctx context.Context) ([]*models.PositionRow, error)
	ClosePosition(ctx context.Context, id string, upd models.CloseUpdate) error
}

// PriceSource returns the current price of a token.
type PriceSource interface {
	TokenPrice(ctx context.Context, address string) (float64, error)
}

// Summary counts what one review did.
type Summary struct {
	Open    int // open positions loaded
	Closed  int
	Held    int
	Skipped int // parse, price, sell or update failures
}

// Monitor reviews open positions and closes those that hit a rule.
type Monitor struct {
	store    PositionStore
	prices   PriceSource
	seller   Seller
	notifier notify.Notifier
	rules    Rules
	now      func() time.Time
	logger   *zap.Logger
}

// NewMonitor creates a monitor. notifier may be nil.
func NewMonitor(store PositionStore, prices PriceSource, seller Seller, notifier notify.Notifier, rules Rules, logger *zap.Logger) *Monitor {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Monitor{
		store:    store,
		prices:   prices,
		seller:   seller,
		notifier: notifier,
		rules:    rules,
		now:      time.Now,
		logger:   logger.Named("monitor"),
	}
}

// ReviewPositions makes one pass over all open positions. A failure on one
// position is logged and the position is retried next pass; only a failure to
// list positions is returned.
func (m *Monitor) ReviewPositions(ctx context.Context) (Summary, error) {
	rows, err := m.store.ListOpen(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list open positions: %w", err)
	}

	summary := Summary{Open: len(rows)}
	for _, row := range rows {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		switch m.review(ctx, row) {
		case reviewClosed:
			summary.Closed++
		case reviewHeld:
			summary.Held++
		default:
			summary.Skipped++
		}
	}

	if summary.Open > 0 {
		m.logger.Info("review finished",
			zap.Int("open", summary.Open),
			zap.Int("closed", summary.Closed),
			zap.Int("held", summary.Held),
			zap.Int("skipped", summary.Skipped))
	}
	return summary, nil
}

type reviewResult int

const (
	reviewSkipped reviewResult = iota
	reviewHeld
	reviewClosed
)

func (m *Monitor) review(ctx context.Context, row *models.PositionRow) reviewResult {
	log := m.logger.With(zap.String("id", row.ID), zap.String("address", row.TokenAddress))

	p, err := row.Parse()
	if err != nil {
		log.Warn("invalid position record, skipping", zap.Error(err))
		return reviewSkipped
	}
	if p.Closed {
		return reviewSkipped
	}

	current, err := m.prices.TokenPrice(ctx, p.TokenAddress)
	if err != nil {
		log.Warn("failed to get price, skipping", zap.Error(err))
		return reviewSkipped
	}

	now := m.now()
	elapsed := now.Sub(p.BuyTimestamp)
	reason, ok := Evaluate(p.BuyPrice, current, elapsed, m.rules)
	if !ok {
		log.Debug("holding position",
			zap.Float64("buy_price", p.BuyPrice),
			zap.Float64("current_price", current),
			zap.Duration("elapsed", elapsed))
		return reviewHeld
	}

	log.Info("close rule triggered",
		zap.String("reason", string(reason)),
		zap.Float64("buy_price", p.BuyPrice),
		zap.Float64("current_price", current),
		zap.Duration("elapsed", elapsed))

	sold, err := m.seller.Sell(ctx, p)
	if err != nil {
		log.Error("sell failed", zap.Error(err))
		return reviewSkipped
	}

	amount := sold.AmountSOL
	if amount <= 0 {
		amount = p.BuyAmountSOL
	}
	pnl := model.NewPnL(p.BuyAmountSOL, amount)

	upd := models.CloseUpdate{
		SellTimestamp:   now.UTC(),
		SellAmountSOL:   amount,
		SellPrice:       current,
		SOLDelta:        pnl.NetPnL,
		PercentageDelta: pnl.PnLPercentage,
		SellSignature:   sold.Signature,
		Reason:          reason,
	}
	if err := m.store.ClosePosition(ctx, p.ID, upd); err != nil {
		log.Warn("sold but failed to update position",
			zap.String("signature", sold.Signature),
			zap.Error(err))
		return reviewSkipped
	}

	log.Info("position closed",
		zap.String("reason", string(reason)),
		zap.Float64("sell_amount_sol", amount),
		zap.Float64("sol_delta", pnl.NetPnL),
		zap.Float64("percentage_delta", pnl.PnLPercentage))

	if err := m.notifier.PositionClosed(ctx, p, upd); err != nil {
		log.Warn("failed to send notification", zap.Error(err))
	}
	return reviewClosed
}
