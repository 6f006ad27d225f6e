// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
)

// Notifier reports position events to the operator. Delivery is best effort:
// callers log errors and carry on.
type Notifier interface {
	PositionOpened(ctx context.Context, p *models.Position) error
	PositionClosed(ctx context.Context, p *models.Position, upd models.CloseUpdate) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PositionOpened(context.Context, *models.Position) error { return nil }

func (Nop) PositionClosed(context.Context, *models.Position, models.CloseUpdate) error { return nil }

func openedText(p *models.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🟢 Bought %s\n", label(p))
	fmt.Fprintf(&b, "Price: %.10g\n", p.BuyPrice)
	fmt.Fprintf(&b, "Spent: %.9g SOL\n", p.BuyAmountSOL)
	if p.BuySignature != "" {
		fmt.Fprintf(&b, "Tx: %s", p.BuySignature)
	}
	return strings.TrimRight(b.String(), "\n")
}

func closedText(p *models.Position, upd models.CloseUpdate) string {
	icon := "🔴"
	if upd.SOLDelta >= 0 {
		icon = "🟢"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s Sold %s (%s)\n", icon, label(p), upd.Reason)
	fmt.Fprintf(&b, "Price: %.10g → %.10g\n", p.BuyPrice, upd.SellPrice)
	fmt.Fprintf(&b, "PnL: %+.9g SOL (%+.2f%%)\n", upd.SOLDelta, upd.PercentageDelta)
	fmt.Fprintf(&b, "Held: %s\n", upd.SellTimestamp.Sub(p.BuyTimestamp).Round(time.Second))
	if upd.SellSignature != "" {
		fmt.Fprintf(&b, "Tx: %s", upd.SellSignature)
	}
	return strings.TrimRight(b.String(), "\n")
}

func label(p *models.Position) string {
	if p.TokenSymbol == "" {
		return p.TokenAddress
	}
	return fmt.Sprintf("%s (%s)", p.TokenSymbol, p.TokenAddress)
}
