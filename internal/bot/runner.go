// internal/bot/runner.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/gmgn"
	"github.com/rovshanmuradov/trend-sniper/internal/monitor"
	"github.com/rovshanmuradov/trend-sniper/internal/sniping"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects which loops the runner starts.
type Mode string

const (
	ModeBuy  Mode = "buy"
	ModeSell Mode = "sell"
	ModeBoth Mode = "both"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBuy, ModeSell, ModeBoth:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want buy, sell or both)", s)
}

// TrendScanner returns fresh candidate tokens.
type TrendScanner interface {
	Scan(ctx context.Context, now time.Time, maxAge time.Duration) ([]gmgn.TokenSummary, error)
}

// PositionOpener opens a position for one token.
type PositionOpener interface {
	OpenPosition(ctx context.Context, token gmgn.TokenSummary) (sniping.Outcome, error)
}

// PositionReviewer makes one pass over open positions.
type PositionReviewer interface {
	ReviewPositions(ctx context.Context) (monitor.Summary, error)
}

// RunnerConfig holds loop timing.
type RunnerConfig struct {
	PollInterval time.Duration
	MaxTokenAge  time.Duration
}

// Runner drives the buy and sell loops.
type Runner struct {
	scanner  TrendScanner
	opener   PositionOpener
	reviewer PositionReviewer
	cfg      RunnerConfig
	now      func() time.Time
	logger   *zap.Logger
}

func NewRunner(scanner TrendScanner, opener PositionOpener, reviewer PositionReviewer, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Runner{
		scanner:  scanner,
		opener:   opener,
		reviewer: reviewer,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("runner"),
	}
}

// BuyCycle scans once and tries to open a position for every fresh token, in
// ranking order. Token failures do not stop the cycle; they are joined into
// the returned error.
func (r *Runner) BuyCycle(ctx context.Context) error {
	tokens, err := r.scanner.Scan(ctx, r.now(), r.cfg.MaxTokenAge)
	if err != nil {
		return err
	}

	var errs []error
	opened := 0
	for _, token := range tokens {
		if ctx.Err() != nil {
			break
		}
		outcome, err := r.opener.OpenPosition(ctx, token)
		if err != nil {
			r.logger.Error("failed to open position",
				zap.String("address", token.Address),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if outcome.Status == sniping.StatusOpened {
			opened++
		}
	}
	if opened > 0 {
		r.logger.Info("buy cycle finished", zap.Int("candidates", len(tokens)), zap.Int("opened", opened))
	}
	return errors.Join(errs...)
}

// SellCycle reviews open positions once.
func (r *Runner) SellCycle(ctx context.Context) error {
	_, err := r.reviewer.ReviewPositions(ctx)
	return err
}

// RunBuyLoop repeats BuyCycle until ctx is cancelled.
func (r *Runner) RunBuyLoop(ctx context.Context) error {
	return r.loop(ctx, "buy", r.BuyCycle)
}

// RunSellLoop repeats SellCycle until ctx is cancelled.
func (r *Runner) RunSellLoop(ctx context.Context) error {
	return r.loop(ctx, "sell", r.SellCycle)
}

func (r *Runner) loop(ctx context.Context, name string, cycle func(context.Context) error) error {
	log := r.logger.With(zap.String("loop", name))
	log.Info("loop started", zap.Duration("interval", r.cfg.PollInterval))

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for iteration := 1; ; iteration++ {
		if err := cycle(ctx); err != nil && ctx.Err() == nil {
			log.Error("iteration failed", zap.Int("iteration", iteration), zap.Error(err))
		}

		timer.Reset(r.cfg.PollInterval)
		select {
		case <-ctx.Done():
			log.Info("loop stopped", zap.Int("iterations", iteration))
			return nil
		case <-timer.C:
		}
	}
}

// Run starts the loops selected by mode and blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeBuy:
		return r.RunBuyLoop(ctx)
	case ModeSell:
		return r.RunSellLoop(ctx)
	case ModeBoth:
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error { return r.RunBuyLoop(gCtx) })
		g.Go(func() error { return r.RunSellLoop(gCtx) })
		return g.Wait()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
