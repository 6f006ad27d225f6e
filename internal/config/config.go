// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting of the bot. Values come from the environment
// (optionally a .env file) and may be overridden by an explicit config file.
type Config struct {
	RPCNode    string `mapstructure:"rpc_node"`
	PrivateKey string `mapstructure:"private_key"`
	StoreURL   string `mapstructure:"store_url"`
	StoreKey   string `mapstructure:"store_key"`

	GMGNBaseURL   string  `mapstructure:"gmgn_base_url"`
	GMGNCookie    string  `mapstructure:"gmgn_cookie"`
	GMGNDeviceID  string  `mapstructure:"gmgn_device_id"`
	GMGNClientID  string  `mapstructure:"gmgn_client_id"`
	GMGNUserAgent string  `mapstructure:"gmgn_user_agent"`
	GMGNRateLimit float64 `mapstructure:"gmgn_rate_limit"`
	TrendLimit    int     `mapstructure:"trend_limit"`
	MinLiquidity  float64 `mapstructure:"min_liquidity"`
	MinMarketCap  float64 `mapstructure:"min_marketcap"`

	JupiterBaseURL    string        `mapstructure:"jupiter_base_url"`
	BuyAmountSOL      float64       `mapstructure:"buy_amount_sol"`
	SlippageBps       int           `mapstructure:"slippage_bps"`
	NumTokensFallback float64       `mapstructure:"num_tokens_fallback"`
	MaxTokenAge       time.Duration `mapstructure:"max_token_age"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`

	TakeProfit float64       `mapstructure:"take_profit"`
	StopLoss   float64       `mapstructure:"stop_loss"`
	MaxHold    time.Duration `mapstructure:"max_hold"`

	DryRun           bool   `mapstructure:"dry_run"`
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   int64  `mapstructure:"telegram_chat_id"`

	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultGMGNBaseURL    = "https://gmgn.ai"
	DefaultJupiterBaseURL = "https://quote-api.jup.ag/v6"
	DefaultUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	DefaultBuyAmountSOL      = 0.0001
	DefaultSlippageBps       = 1000
	DefaultNumTokensFallback = 1912380.2090
	DefaultMaxTokenAge       = time.Minute
	DefaultPollInterval      = time.Second
	DefaultHTTPTimeout       = 10 * time.Second

	DefaultTakeProfit = 1.025
	DefaultStopLoss   = 0.5
	DefaultMaxHold    = 300 * time.Second
)

// Usage selects which settings must be present.
type Usage int

const (
	// UsageTrading needs the node, the key and every trading parameter.
	UsageTrading Usage = iota
	// UsageReport only reads the store.
	UsageReport
)

// LoadConfig loads the configuration and validates it for trading.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateFor(UsageTrading); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads .env (if present), the environment and, when path is not empty,
// the given config file. The file wins over the environment. Nothing is
// validated; call ValidateFor.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_node":            "",
		"private_key":         "",
		"store_url":           "",
		"store_key":           "",
		"gmgn_base_url":       DefaultGMGNBaseURL,
		"gmgn_cookie":         "",
		"gmgn_device_id":      "",
		"gmgn_client_id":      "",
		"gmgn_user_agent":     DefaultUserAgent,
		"gmgn_rate_limit":     5.0,
		"trend_limit":         20,
		"min_liquidity":       50000.0,
		"min_marketcap":       1000000.0,
		"jupiter_base_url":    DefaultJupiterBaseURL,
		"buy_amount_sol":      DefaultBuyAmountSOL,
		"slippage_bps":        DefaultSlippageBps,
		"num_tokens_fallback": DefaultNumTokensFallback,
		"max_token_age":       DefaultMaxTokenAge,
		"poll_interval":       DefaultPollInterval,
		"http_timeout":        DefaultHTTPTimeout,
		"take_profit":         DefaultTakeProfit,
		"stop_loss":           DefaultStopLoss,
		"max_hold":            DefaultMaxHold,
		"dry_run":             false,
		"telegram_bot_token":  "",
		"telegram_chat_id":    0,
		"log_file":            "bot.log",
		"debug_logging":       false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return &cfg, nil
}

// ValidateFor checks the settings required by usage.
func (c *Config) ValidateFor(usage Usage) error {
	if usage == UsageReport {
		if c.StoreURL == "" {
			return errors.New("store_url is required")
		}
		return nil
	}
	return c.validate()
}

// validate checks required fields and numeric ranges.
func (c *Config) validate() error {
	if c.RPCNode == "" {
		return errors.New("rpc_node is required")
	}
	if err := validateURLWithCache(c.RPCNode, "http"); err != nil {
		return fmt.Errorf("invalid rpc_node: %w", err)
	}
	if c.PrivateKey == "" && !c.DryRun {
		return errors.New("private_key is required unless dry_run is set")
	}
	if c.StoreURL == "" {
		return errors.New("store_url is required")
	}
	if err := validateURLWithCache(c.GMGNBaseURL, "http"); err != nil {
		return fmt.Errorf("invalid gmgn_base_url: %w", err)
	}
	if err := validateURLWithCache(c.JupiterBaseURL, "http"); err != nil {
		return fmt.Errorf("invalid jupiter_base_url: %w", err)
	}
	if err := c.validateNumericParams(); err != nil {
		return err
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return errors.New("telegram_chat_id is required when telegram_bot_token is set")
	}
	return nil
}

func (c *Config) validateNumericParams() error {
	if c.BuyAmountSOL <= 0 {
		return errors.New("invalid buy_amount_sol")
	}
	if c.SlippageBps <= 0 || c.SlippageBps > 10000 {
		return errors.New("invalid slippage_bps")
	}
	if c.MaxTokenAge <= 0 {
		return errors.New("invalid max_token_age")
	}
	if c.PollInterval <= 0 {
		return errors.New("invalid poll_interval")
	}
	if c.TrendLimit <= 0 {
		return errors.New("invalid trend_limit")
	}
	if c.GMGNRateLimit <= 0 {
		return errors.New("invalid gmgn_rate_limit")
	}
	if c.TakeProfit <= 1 {
		return errors.New("take_profit must be above 1")
	}
	if c.StopLoss <= 0 || c.StopLoss >= 1 {
		return errors.New("stop_loss must be between 0 and 1")
	}
	if c.MaxHold <= 0 {
		return errors.New("invalid max_hold")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}
