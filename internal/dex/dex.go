// =============================
// File: internal/dex/dex.go
// =============================
package dex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrZeroAmount is returned when a swap would move nothing.
var ErrZeroAmount = errors.New("swap amount is zero")

// Executor wraps a Swapper with SOL-denominated buy and sell helpers.
type Executor struct {
	swapper     Swapper
	slippageBps int
	logger      *zap.Logger
}

func NewExecutor(swapper Swapper, slippageBps int, logger *zap.Logger) *Executor {
	return &Executor{
		swapper:     swapper,
		slippageBps: slippageBps,
		logger:      logger.Named("executor"),
	}
}

// Name returns the underlying swapper name.
func (e *Executor) Name() string {
	return e.swapper.Name()
}

// Buy spends solAmount SOL on mint.
func (e *Executor) Buy(ctx context.Context, solAmount float64, mint string) (*SwapResult, error) {
	lamports := LamportsFromSOL(solAmount)
	if lamports == 0 {
		return nil, fmt.Errorf("buy %s: %w", mint, ErrZeroAmount)
	}
	return e.execute(ctx, "buy", SwapRequest{
		InputMint:   SOLMint,
		OutputMint:  mint,
		Amount:      lamports,
		SlippageBps: e.slippageBps,
	})
}

// Sell swaps rawAmount units of mint back to SOL.
func (e *Executor) Sell(ctx context.Context, mint string, rawAmount uint64) (*SwapResult, error) {
	if rawAmount == 0 {
		return nil, fmt.Errorf("sell %s: %w", mint, ErrZeroAmount)
	}
	return e.execute(ctx, "sell", SwapRequest{
		InputMint:   mint,
		OutputMint:  SOLMint,
		Amount:      rawAmount,
		SlippageBps: e.slippageBps,
	})
}

func (e *Executor) execute(ctx context.Context, op string, req SwapRequest) (*SwapResult, error) {
	start := time.Now()
	e.logger.Info("Executing swap",
		zap.String("operation", op),
		zap.String("dex", e.swapper.Name()),
		zap.String("input_mint", req.InputMint),
		zap.String("output_mint", req.OutputMint),
		zap.Uint64("amount", req.Amount))

	result, err := e.swapper.Swap(ctx, req)
	if err != nil {
		e.logger.Error("Swap failed",
			zap.String("operation", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%s swap: %w", op, err)
	}

	e.logger.Info("Swap submitted",
		zap.String("operation", op),
		zap.String("signature", result.Signature),
		zap.Uint64("out_amount", result.OutAmount),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
