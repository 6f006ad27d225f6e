// internal/monitor/seller.go
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"github.com/rovshanmuradov/trend-sniper/internal/dex/paper"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// SellResult is what a sale realized. AmountSOL of zero means unknown.
type SellResult struct {
	AmountSOL float64
	Signature string
}

// Seller closes a position on the market.
type Seller interface {
	Sell(ctx context.Context, p *models.Position) (*SellResult, error)
}

// TokenSeller swaps raw token units back to SOL.
type TokenSeller interface {
	Sell(ctx context.Context, mint string, rawAmount uint64) (*dex.SwapResult, error)
}

// ATAResolver derives the wallet token account for a mint.
type ATAResolver interface {
	GetATA(mint solana.PublicKey) (solana.PublicKey, error)
}

// BalanceReader reads a token account balance.
type BalanceReader interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// SwapSeller sells the whole wallet balance of the token. When the balance
// cannot be read the recorded token count is sold instead.
type SwapSeller struct {
	executor TokenSeller
	wallet   ATAResolver
	chain    BalanceReader
	decimals int32
	logger   *zap.Logger
}

func NewSwapSeller(executor TokenSeller, wallet ATAResolver, chain BalanceReader, decimals int32, logger *zap.Logger) *SwapSeller {
	if decimals == 0 {
		decimals = dex.DefaultTokenDecimals
	}
	return &SwapSeller{
		executor: executor,
		wallet:   wallet,
		chain:    chain,
		decimals: decimals,
		logger:   logger.Named("seller"),
	}
}

func (s *SwapSeller) Sell(ctx context.Context, p *models.Position) (*SellResult, error) {
	amount := s.balance(ctx, p)
	if amount == 0 {
		return nil, fmt.Errorf("nothing to sell for %s", p.TokenAddress)
	}

	res, err := s.executor.Sell(ctx, p.TokenAddress, amount)
	if err != nil {
		return nil, err
	}
	return &SellResult{
		AmountSOL: dex.SOLFromLamports(res.OutAmount),
		Signature: res.Signature,
	}, nil
}

func (s *SwapSeller) balance(ctx context.Context, p *models.Position) uint64 {
	recorded := dex.RawFromTokens(p.NumTokensBought, s.decimals)

	balance, err := s.walletBalance(ctx, p.TokenAddress)
	if err != nil {
		s.logger.Warn("failed to read token balance, using recorded amount",
			zap.String("address", p.TokenAddress),
			zap.Uint64("recorded", recorded),
			zap.Error(err))
		return recorded
	}
	if balance == 0 {
		return recorded
	}
	return balance
}

func (s *SwapSeller) walletBalance(ctx context.Context, address string) (uint64, error) {
	if s.wallet == nil || s.chain == nil {
		return 0, errors.New("no wallet or rpc client")
	}
	mint, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("invalid mint: %w", err)
	}
	ata, err := s.wallet.GetATA(mint)
	if err != nil {
		return 0, fmt.Errorf("derive token account: %w", err)
	}
	return s.chain.GetTokenAccountBalance(ctx, ata)
}

// PaperSeller pretends to sell and reports the buy amount as proceeds.
type PaperSeller struct{}

func (PaperSeller) Sell(_ context.Context, p *models.Position) (*SellResult, error) {
	return &SellResult{
		AmountSOL: p.BuyAmountSOL,
		Signature: paper.SignaturePrefix + uuid.NewString(),
	}, nil
}
