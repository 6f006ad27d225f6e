// internal/dex/jupiter/types.go

package jupiter

import (
	"encoding/json"
	"errors"
)

// ErrMissingTransaction is returned when the swap endpoint answers without a
// serialized transaction.
var ErrMissingTransaction = errors.New("swap response has no transaction")

// Quote is a route returned by the quote endpoint. Raw holds the unmodified body,
// which the swap endpoint expects back unchanged.
type Quote struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	SlippageBps    int    `json:"slippageBps"`
	PriceImpactPct string `json:"priceImpactPct"`
	SwapMode       string `json:"swapMode"`

	Raw json.RawMessage `json:"-"`
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

// SwapResponse carries the unsigned transaction built for the user.
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}
