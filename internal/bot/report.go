// internal/bot/report.go
package bot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/export"
	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// PositionLister reads every stored position.
type PositionLister interface {
	List(ctx context.Context) ([]*models.PositionRow, error)
}

// LoadPositions parses all stored rows. Rows that fail validation are logged
// and left out.
func LoadPositions(ctx context.Context, store PositionLister, logger *zap.Logger) ([]*models.Position, error) {
	rows, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	positions := make([]*models.Position, 0, len(rows))
	for _, row := range rows {
		p, err := row.Parse()
		if err != nil {
			logger.Warn("Skipping invalid position row", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// ReportFilter holds the command-line report filters.
type ReportFilter struct {
	Since      time.Duration // only positions bought within this window
	Until      string        // RFC3339, only positions bought before it
	Token      string
	OnlyClosed bool
}

// Options converts the filter into export options relative to now.
func (f ReportFilter) Options(format export.ExportFormat, outDir string, now time.Time) (export.ExportOptions, error) {
	opts := export.ExportOptions{
		Format:      format,
		OutputDir:   outDir,
		TokenFilter: f.Token,
		OnlyClosed:  f.OnlyClosed,
	}
	if f.Since < 0 {
		return opts, fmt.Errorf("negative since window: %s", f.Since)
	}
	if f.Since > 0 {
		opts.StartTime = now.Add(-f.Since)
	}
	if f.Until != "" {
		until, err := time.Parse(time.RFC3339, f.Until)
		if err != nil {
			return opts, fmt.Errorf("invalid until time %q: %w", f.Until, err)
		}
		opts.EndTime = until
	}
	return opts, nil
}

// Report prints the stored positions matching opts as a table to w. A
// non-empty opts.Format also writes them to a file whose path is returned.
func Report(ctx context.Context, store PositionLister, w io.Writer, opts export.ExportOptions, logger *zap.Logger) (string, error) {
	logger = logger.Named("report")

	positions, err := LoadPositions(ctx, store, logger)
	if err != nil {
		return "", err
	}
	positions = export.FilterPositions(positions, opts)
	if err := export.PrintTable(w, positions, time.Now()); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	if opts.Format == "" {
		return "", nil
	}
	return export.NewPositionExporter(logger).ExportPositions(positions, opts)
}
