// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Client is the subset of the Solana RPC surface the bot depends on.
type Client interface {
	// SendTransactionWithOpts submits a signed transaction.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// GetTokenAccountBalance returns the raw balance of a token account.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	// GetHealth reports whether the node is ready to serve requests.
	GetHealth(ctx context.Context) error
}
