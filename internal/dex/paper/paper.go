// internal/dex/paper/paper.go

// Package paper provides a swapper that quotes real routes but never signs or
// submits anything.
package paper

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"github.com/rovshanmuradov/trend-sniper/internal/dex/jupiter"
	"go.uber.org/zap"
)

// SignaturePrefix marks synthetic signatures.
const SignaturePrefix = "paper-"

// Quoter is the quote half of the aggregator API.
type Quoter interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*jupiter.Quote, error)
}

type Swapper struct {
	quoter Quoter
	logger *zap.Logger
}

func NewSwapper(quoter Quoter, logger *zap.Logger) *Swapper {
	return &Swapper{quoter: quoter, logger: logger.Named("paper-swapper")}
}

func (s *Swapper) Name() string { return "Paper" }

func (s *Swapper) Swap(ctx context.Context, req dex.SwapRequest) (*dex.SwapResult, error) {
	quote, err := s.quoter.GetQuote(ctx, req.InputMint, req.OutputMint, req.Amount, req.SlippageBps)
	if err != nil {
		return nil, err
	}
	out, _ := strconv.ParseUint(quote.OutAmount, 10, 64)

	sig := SignaturePrefix + uuid.NewString()
	s.logger.Info("paper swap",
		zap.String("signature", sig),
		zap.String("input_mint", req.InputMint),
		zap.String("output_mint", req.OutputMint),
		zap.Uint64("in_amount", req.Amount),
		zap.Uint64("out_amount", out))

	return &dex.SwapResult{Signature: sig, InAmount: req.Amount, OutAmount: out}, nil
}

var _ dex.Swapper = (*Swapper)(nil)
