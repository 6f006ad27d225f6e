// =============================
// File: internal/bot/wire.go
// =============================
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/trend-sniper/internal/blockchain/solbc"
	"github.com/rovshanmuradov/trend-sniper/internal/config"
	"github.com/rovshanmuradov/trend-sniper/internal/dex"
	"github.com/rovshanmuradov/trend-sniper/internal/dex/jupiter"
	"github.com/rovshanmuradov/trend-sniper/internal/dex/paper"
	"github.com/rovshanmuradov/trend-sniper/internal/gmgn"
	"github.com/rovshanmuradov/trend-sniper/internal/monitor"
	"github.com/rovshanmuradov/trend-sniper/internal/notify"
	"github.com/rovshanmuradov/trend-sniper/internal/scanner"
	"github.com/rovshanmuradov/trend-sniper/internal/sniping"
	"github.com/rovshanmuradov/trend-sniper/internal/storage"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/postgres"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/sqlite"
	"github.com/rovshanmuradov/trend-sniper/internal/wallet"
	"go.uber.org/zap"
)

const (
	startupMaxTries   = 5
	startupMaxElapsed = 30 * time.Second
)

// ErrUnsupportedStore is returned for a store URL with an unknown scheme.
var ErrUnsupportedStore = errors.New("unsupported store url")

// App holds the wired components of a running bot.
type App struct {
	Runner *Runner
	Store  storage.Store
	logger *zap.Logger
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// Build connects to the store and the RPC node and wires the trading
// components. Without a private key or with dry_run set the bot quotes real
// routes but signs nothing.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.StoreURL, cfg.StoreKey, logger)
	if err != nil {
		return nil, err
	}

	app, err := build(ctx, cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg *config.Config, store storage.Store, logger *zap.Logger) (*App, error) {
	gmgnClient := gmgn.NewClient(gmgn.Config{
		BaseURL:   cfg.GMGNBaseURL,
		Cookie:    cfg.GMGNCookie,
		DeviceID:  cfg.GMGNDeviceID,
		ClientID:  cfg.GMGNClientID,
		UserAgent: cfg.GMGNUserAgent,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.GMGNRateLimit,
	}, logger)

	query := gmgn.DefaultTrendQuery()
	if cfg.TrendLimit > 0 {
		query.Limit = cfg.TrendLimit
	}
	query.MinLiquidity = cfg.MinLiquidity
	query.MinMarketCap = cfg.MinMarketCap
	trendScanner := scanner.New(gmgnClient, query, logger)

	jup := jupiter.NewClient(cfg.JupiterBaseURL, cfg.HTTPTimeout, logger)

	var (
		swapper dex.Swapper
		seller  monitor.Seller
	)
	executorFor := func(s dex.Swapper) *dex.Executor {
		return dex.NewExecutor(s, cfg.SlippageBps, logger)
	}

	if cfg.DryRun {
		logger.Warn("Dry run: swaps are quoted but never submitted")
		swapper = paper.NewSwapper(jup, logger)
		seller = monitor.PaperSeller{}
	} else {
		w, err := wallet.NewWallet(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load wallet: %w", err)
		}
		chain := solbc.NewClient(cfg.RPCNode, logger)
		if err := waitHealthy(ctx, chain, logger); err != nil {
			return nil, err
		}
		logger.Info("Wallet loaded", zap.String("public_key", w.String()))

		swapper = jupiter.NewSwapper(jup, w, chain, logger)
		seller = monitor.NewSwapSeller(executorFor(swapper), w, chain, dex.DefaultTokenDecimals, logger)
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	opener := sniping.NewOpener(store, executorFor(swapper), gmgnClient, notifier, sniping.Config{
		BuyAmountSOL:      cfg.BuyAmountSOL,
		MaxTokenAge:       cfg.MaxTokenAge,
		NumTokensFallback: cfg.NumTokensFallback,
		TokenDecimals:     dex.DefaultTokenDecimals,
	}, logger)

	rules := monitor.Rules{
		TakeProfit: cfg.TakeProfit,
		MaxHold:    cfg.MaxHold,
		StopLoss:   cfg.StopLoss,
	}
	reviewer := monitor.NewMonitor(store, gmgnClient, seller, notifier, rules, logger)

	runner := NewRunner(trendScanner, opener, reviewer, RunnerConfig{
		PollInterval: cfg.PollInterval,
		MaxTokenAge:  cfg.MaxTokenAge,
	}, logger)

	return &App{Runner: runner, Store: store, logger: logger}, nil
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return notify.Nop{}, nil
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, "", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram: %w", err)
	}
	return tg, nil
}

// OpenStore picks the backend by URL scheme, pings it with bounded retries and
// applies the schema. postgres:// and postgresql:// use pgx with key as the
// password; sqlite:, file: and :memory: use the embedded SQLite driver.
func OpenStore(ctx context.Context, storeURL, key string, logger *zap.Logger) (storage.Store, error) {
	var (
		store   storage.Store
		migrate func(context.Context) error
	)

	switch {
	case strings.HasPrefix(storeURL, "postgres://"), strings.HasPrefix(storeURL, "postgresql://"):
		pg, err := postgres.New(ctx, storeURL, key, logger)
		if err != nil {
			return nil, err
		}
		store, migrate = pg, pg.Migrate
	case strings.HasPrefix(storeURL, "sqlite:"), strings.HasPrefix(storeURL, "file:"), storeURL == ":memory:":
		path := strings.TrimPrefix(storeURL, "sqlite:")
		path = strings.TrimPrefix(path, "//")
		lite, err := sqlite.New(path, logger)
		if err != nil {
			return nil, err
		}
		store = lite
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStore, storeURL)
	}

	if err := retryStartup(ctx, "store ping", store.Ping, logger); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store unreachable: %w", err)
	}
	if migrate != nil {
		if err := migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to migrate store: %w", err)
		}
	}
	return store, nil
}

type healthChecker interface {
	GetHealth(ctx context.Context) error
}

func waitHealthy(ctx context.Context, chain healthChecker, logger *zap.Logger) error {
	if err := retryStartup(ctx, "rpc health", chain.GetHealth, logger); err != nil {
		return fmt.Errorf("rpc node unhealthy: %w", err)
	}
	return nil
}

// retryStartup runs check with exponential backoff, giving up after
// startupMaxTries attempts or startupMaxElapsed.
func retryStartup(ctx context.Context, what string, check func(context.Context) error, logger *zap.Logger) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, check(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(startupMaxTries),
		backoff.WithMaxElapsedTime(startupMaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("Start-up check failed, retrying",
				zap.String("check", what),
				zap.Duration("next_attempt", next),
				zap.Error(err))
		}),
	)
	return err
}
