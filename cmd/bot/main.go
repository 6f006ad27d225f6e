// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/trend-sniper/internal/bot"
	"github.com/rovshanmuradov/trend-sniper/internal/config"
	"github.com/rovshanmuradov/trend-sniper/internal/export"
	"github.com/rovshanmuradov/trend-sniper/internal/logger"
)

func main() {
	mode := flag.String("mode", "both", "buy, sell, both or report")
	configPath := flag.String("config", "", "optional config file (yaml, json, toml)")
	exportFormat := flag.String("export", "", "report mode: also export positions as csv or json")
	outDir := flag.String("out", "exports", "report mode: export directory")

	var filter bot.ReportFilter
	flag.DurationVar(&filter.Since, "since", 0, "report mode: only positions bought within this window (e.g. 24h)")
	flag.StringVar(&filter.Until, "until", "", "report mode: only positions bought before this RFC3339 time")
	flag.StringVar(&filter.Token, "token", "", "report mode: only positions of this token mint")
	flag.BoolVar(&filter.OnlyClosed, "closed", false, "report mode: only closed positions")
	flag.Parse()

	if err := run(*mode, *configPath, export.ExportFormat(*exportFormat), *outDir, filter); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(mode, configPath string, format export.ExportFormat, outDir string, filter bot.ReportFilter) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	usage := config.UsageTrading
	if mode == "report" {
		usage = config.UsageReport
	}
	if err := cfg.ValidateFor(usage); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mode == "report" {
		return report(ctx, cfg, format, outDir, filter, log)
	}

	runMode, err := bot.ParseMode(mode)
	if err != nil {
		return err
	}

	app, err := bot.Build(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to start", zap.Error(err))
		return err
	}
	defer app.Close()

	log.Info("Starting trend sniper",
		zap.String("mode", string(runMode)),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Float64("buy_amount_sol", cfg.BuyAmountSOL),
		zap.Duration("poll_interval", cfg.PollInterval))

	if err := app.Runner.Run(ctx, runMode); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Runner stopped with error", zap.Error(err))
		return err
	}
	log.Info("Shutdown complete")
	return nil
}

func report(ctx context.Context, cfg *config.Config, format export.ExportFormat, outDir string, filter bot.ReportFilter, log *zap.Logger) error {
	opts, err := filter.Options(format, outDir, time.Now())
	if err != nil {
		return err
	}

	store, err := bot.OpenStore(ctx, cfg.StoreURL, cfg.StoreKey, log)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := bot.Report(ctx, store, os.Stdout, opts, log)
	if errors.Is(err, export.ErrNoPositions) {
		log.Info("Nothing to export")
		return nil
	}
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Printf("Exported to %s\n", path)
	}
	return nil
}
