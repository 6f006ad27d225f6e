// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("RPC_NODE", "https://api.mainnet-beta.solana.com")
	t.Setenv("PRIVATE_KEY", "test-key")
	t.Setenv("STORE_URL", "postgres://bot@localhost:5432/bot")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCNode)
	assert.Equal(t, DefaultGMGNBaseURL, cfg.GMGNBaseURL)
	assert.Equal(t, DefaultJupiterBaseURL, cfg.JupiterBaseURL)
	assert.Equal(t, DefaultBuyAmountSOL, cfg.BuyAmountSOL)
	assert.Equal(t, DefaultSlippageBps, cfg.SlippageBps)
	assert.Equal(t, time.Minute, cfg.MaxTokenAge)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 300*time.Second, cfg.MaxHold)
	assert.Equal(t, 20, cfg.TrendLimit)
	assert.InDelta(t, 1.025, cfg.TakeProfit, 1e-9)
	assert.InDelta(t, 0.5, cfg.StopLoss, 1e-9)
	assert.False(t, cfg.DryRun)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BUY_AMOUNT_SOL", "0.25")
	t.Setenv("MAX_TOKEN_AGE", "90s")
	t.Setenv("SLIPPAGE_BPS", "500")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, 0.25, cfg.BuyAmountSOL, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.MaxTokenAge)
	assert.Equal(t, 500, cfg.SlippageBps)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
}

func TestLoadConfig_File(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
    "buy_amount_sol": 0.5,
    "trend_limit": 50,
    "gmgn_cookie": "sid=abc"
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.BuyAmountSOL, 1e-9)
	assert.Equal(t, 50, cfg.TrendLimit)
	assert.Equal(t, "sid=abc", cfg.GMGNCookie)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing rpc node",
			env:  map[string]string{"RPC_NODE": ""},
		},
		{
			name: "rpc node with wrong protocol",
			env:  map[string]string{"RPC_NODE": "ws://localhost:8900"},
		},
		{
			name: "missing private key",
			env:  map[string]string{"PRIVATE_KEY": ""},
		},
		{
			name: "missing store url",
			env:  map[string]string{"STORE_URL": ""},
		},
		{
			name: "negative buy amount",
			env:  map[string]string{"BUY_AMOUNT_SOL": "-1"},
		},
		{
			name: "slippage above 100%",
			env:  map[string]string{"SLIPPAGE_BPS": "20000"},
		},
		{
			name: "take profit below one",
			env:  map[string]string{"TAKE_PROFIT": "0.9"},
		},
		{
			name: "telegram token without chat",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "123:abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_DryRunWithoutKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("DRY_RUN", "true")

	_, err := LoadConfig("")
	assert.NoError(t, err)
}

func TestValidateFor_Report(t *testing.T) {
	t.Setenv("RPC_NODE", "")
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("DRY_RUN", "false")
	t.Setenv("STORE_URL", "sqlite::memory:")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateFor(UsageReport))
	assert.ErrorContains(t, cfg.ValidateFor(UsageTrading), "rpc_node")

	_, err = LoadConfig("")
	assert.Error(t, err)

	t.Setenv("STORE_URL", "")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.ValidateFor(UsageReport), "store_url")
}
