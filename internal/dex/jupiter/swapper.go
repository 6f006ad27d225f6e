// internal/dex/jupiter/swapper.go

package jupiter

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/trend-sniper/internal/blockchain"
	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"go.uber.org/zap"
)

// Signer signs transactions on behalf of the user account.
type Signer interface {
	SignTransaction(tx *solana.Transaction) error
	String() string
}

// Sender submits signed transactions.
type Sender interface {
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error)
}

// Swapper runs quote, swap build, signing and submission.
type Swapper struct {
	api    *Client
	signer Signer
	sender Sender
	logger *zap.Logger
}

func NewSwapper(api *Client, signer Signer, sender Sender, logger *zap.Logger) *Swapper {
	return &Swapper{
		api:    api,
		signer: signer,
		sender: sender,
		logger: logger.Named("jupiter-swapper"),
	}
}

func (s *Swapper) Name() string { return "Jupiter" }

// Swap executes req. Nothing is retried; any failing step aborts.
func (s *Swapper) Swap(ctx context.Context, req dex.SwapRequest) (*dex.SwapResult, error) {
	quote, err := s.api.GetQuote(ctx, req.InputMint, req.OutputMint, req.Amount, req.SlippageBps)
	if err != nil {
		return nil, err
	}
	outAmount, _ := strconv.ParseUint(quote.OutAmount, 10, 64)
	s.logger.Debug("quote received",
		zap.String("in_amount", quote.InAmount),
		zap.String("out_amount", quote.OutAmount),
		zap.String("price_impact_pct", quote.PriceImpactPct))

	swapResp, err := s.api.GetSwapTransaction(ctx, quote, s.signer.String())
	if err != nil {
		return nil, err
	}

	tx, err := decodeTransaction(swapResp.SwapTransaction)
	if err != nil {
		return nil, err
	}
	if err := s.signer.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := s.sender.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}

	return &dex.SwapResult{
		Signature: sig.String(),
		InAmount:  req.Amount,
		OutAmount: outAmount,
	}, nil
}

func decodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}
	return tx, nil
}

var _ dex.Swapper = (*Swapper)(nil)
