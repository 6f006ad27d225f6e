// internal/sniping/opener.go
package sniping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"github.com/rovshanmuradov/trend-sniper/internal/gmgn"
	"github.com/rovshanmuradov/trend-sniper/internal/notify"
	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// Status is the result kind of OpenPosition.
type Status string

const (
	StatusOpened  Status = "opened"
	StatusSkipped Status = "skipped"
)

// SkipReason explains a skipped token.
type SkipReason string

const (
	SkipDuplicate SkipReason = "duplicate"
	SkipTooOld    SkipReason = "too_old"
)

// Outcome describes what OpenPosition did with a token.
type Outcome struct {
	Status   Status
	Reason   SkipReason       // set when skipped
	Position *models.Position // set when opened
}

// PositionStore is the part of storage.Store the opener needs.
type PositionStore interface {
	GetByTokenAddress(ctx context.Context, address string) (*models.PositionRow, error)
	Insert(ctx context.Context, p *models.Position) error
}

// Buyer spends SOL on a token.
type Buyer interface {
	Buy(ctx context.Context, solAmount float64, mint string) (*dex.SwapResult, error)
}

// PriceSource looks up a token price when the ranking entry has none.
type PriceSource interface {
	TokenPrice(ctx context.Context, address string) (float64, error)
}

// Config holds the opener parameters.
type Config struct {
	BuyAmountSOL      float64
	MaxTokenAge       time.Duration
	NumTokensFallback float64
	TokenDecimals     int32
}

// Opener buys a candidate token and records the position.
type Opener struct {
	store    PositionStore
	buyer    Buyer
	prices   PriceSource
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewOpener creates an opener. prices and notifier may be nil.
func NewOpener(store PositionStore, buyer Buyer, prices PriceSource, notifier notify.Notifier, cfg Config, logger *zap.Logger) *Opener {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.TokenDecimals == 0 {
		cfg.TokenDecimals = dex.DefaultTokenDecimals
	}
	return &Opener{
		store:    store,
		buyer:    buyer,
		prices:   prices,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("opener"),
	}
}

// OpenPosition runs the duplicate check, the age check, the buy and the insert,
// stopping at the first step that rejects the token. The position is inserted
// only after a successful buy.
func (o *Opener) OpenPosition(ctx context.Context, token gmgn.TokenSummary) (Outcome, error) {
	log := o.logger.With(zap.String("address", token.Address), zap.String("symbol", token.Symbol))

	_, err := o.store.GetByTokenAddress(ctx, token.Address)
	switch {
	case err == nil:
		log.Debug("position already exists, skipping")
		return Outcome{Status: StatusSkipped, Reason: SkipDuplicate}, nil
	case !errors.Is(err, storage.ErrNotFound):
		return Outcome{}, fmt.Errorf("lookup position %s: %w", token.Address, err)
	}

	var createdPtr *time.Time
	if created, ok := token.CreatedAt(); ok {
		createdPtr = &created
		if age := o.now().Sub(created); age >= o.cfg.MaxTokenAge {
			log.Debug("token too old, skipping", zap.Duration("age", age))
			return Outcome{Status: StatusSkipped, Reason: SkipTooOld}, nil
		}
	} else {
		log.Warn("token has no creation timestamp, age check bypassed")
	}

	price, err := o.buyPrice(ctx, token)
	if err != nil {
		return Outcome{}, err
	}

	result, err := o.buyer.Buy(ctx, o.cfg.BuyAmountSOL, token.Address)
	if err != nil {
		return Outcome{}, fmt.Errorf("buy %s: %w", token.Address, err)
	}

	tokens := o.cfg.NumTokensFallback
	if result.OutAmount > 0 {
		tokens = dex.TokensFromRaw(result.OutAmount, o.cfg.TokenDecimals)
	}

	p := models.NewPosition(token.Address, token.Symbol, createdPtr, o.now(),
		price, o.cfg.BuyAmountSOL, tokens, result.Signature)
	if err := o.store.Insert(ctx, p); err != nil {
		log.Warn("bought but failed to record position",
			zap.String("signature", result.Signature),
			zap.Error(err))
		return Outcome{}, fmt.Errorf("insert position %s: %w", token.Address, err)
	}

	log.Info("position opened",
		zap.String("id", p.ID),
		zap.Float64("buy_price", p.BuyPrice),
		zap.Float64("tokens", p.NumTokensBought),
		zap.String("signature", p.BuySignature))

	if err := o.notifier.PositionOpened(ctx, p); err != nil {
		log.Warn("failed to send notification", zap.Error(err))
	}
	return Outcome{Status: StatusOpened, Position: p}, nil
}

func (o *Opener) buyPrice(ctx context.Context, token gmgn.TokenSummary) (float64, error) {
	if token.Price > 0 {
		return float64(token.Price), nil
	}
	if o.prices == nil {
		return 0, fmt.Errorf("no price for %s", token.Address)
	}
	price, err := o.prices.TokenPrice(ctx, token.Address)
	if err != nil {
		return 0, fmt.Errorf("price %s: %w", token.Address, err)
	}
	return price, nil
}
