// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/trend-sniper/internal/blockchain"
	"go.uber.org/zap"
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc    *rpc.Client
	logger *zap.Logger
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(rpcURL),
		logger: logger.Named("solbc-client"),
	}
}

// SendTransactionWithOpts отправляет транзакцию с заданными опциями.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		if failure, ok := AnalyzePreflight(err); ok {
			c.logger.Error("Transaction rejected by preflight",
				zap.Int("code", failure.Code),
				zap.String("program_error", failure.LastProgramError()),
				zap.Strings("logs", failure.Logs))
			return solana.Signature{}, fmt.Errorf("%s: %w", failure, err)
		}
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetTokenAccountBalance получает сырой баланс токенного аккаунта.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("account", account.String()),
			zap.Error(err))
		return 0, err
	}
	if result == nil || result.Value == nil {
		return 0, fmt.Errorf("empty balance response for %s", account)
	}
	amount, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token amount %q: %w", result.Value.Amount, err)
	}
	return amount, nil
}

// GetHealth проверяет, что узел готов обслуживать запросы.
func (c *Client) GetHealth(ctx context.Context) error {
	status, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return err
	}
	if !strings.EqualFold(status, rpc.HealthOk) {
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
