// ==========================================
// File: internal/dex/types.go
// ==========================================
package dex

import "context"

const (
	// SOLMint is the wrapped SOL mint used as the quote currency.
	SOLMint = "So11111111111111111111111111111111111111112"

	// SOLDecimals is the decimal precision of SOL: one SOL is 10^9 lamports.
	SOLDecimals = 9

	// DefaultTokenDecimals is used when converting raw token amounts for
	// storage. Launchpad tokens are minted with six decimals.
	DefaultTokenDecimals = 6
)

// SwapRequest describes one exchange of Amount raw units of InputMint.
type SwapRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64
	SlippageBps int
}

// SwapResult is what a submitted swap reports back.
type SwapResult struct {
	Signature string
	InAmount  uint64
	OutAmount uint64 // quoted output in raw units
}

// Swapper executes a swap end to end.
type Swapper interface {
	// Name identifies the implementation in logs.
	Name() string
	Swap(ctx context.Context, req SwapRequest) (*SwapResult, error)
}
