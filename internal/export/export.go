package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ErrNoPositions is returned when the filters leave nothing to export.
var ErrNoPositions = errors.New("no positions match the export criteria")

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format      ExportFormat
	StartTime   time.Time // filter on buy time
	EndTime     time.Time
	TokenFilter string // Filter by token mint
	OnlyClosed  bool
	OutputDir   string
}

// PositionExporter writes positions to CSV or JSON files
type PositionExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewPositionExporter creates a new exporter
func NewPositionExporter(logger *zap.Logger) *PositionExporter {
	return &PositionExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// ExportPositions exports positions matching options and returns the file path
func (pe *PositionExporter) ExportPositions(positions []*models.Position, options ExportOptions) (string, error) {
	filtered := FilterPositions(positions, options)
	if len(filtered) == 0 {
		return "", ErrNoPositions
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].BuyTimestamp.Before(filtered[j].BuyTimestamp)
	})

	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, pe.generateFilename(options))

	var err error
	switch options.Format {
	case FormatCSV:
		err = pe.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = pe.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	pe.logger.Info("Positions exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// FilterPositions applies the option filters
func FilterPositions(positions []*models.Position, options ExportOptions) []*models.Position {
	var filtered []*models.Position
	for _, p := range positions {
		if !options.StartTime.IsZero() && p.BuyTimestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && p.BuyTimestamp.After(options.EndTime) {
			continue
		}
		if options.TokenFilter != "" && p.TokenAddress != options.TokenFilter {
			continue
		}
		if options.OnlyClosed && !p.Closed {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func (pe *PositionExporter) generateFilename(options ExportOptions) string {
	prefix := "positions_all"
	if options.OnlyClosed {
		prefix = "positions_closed"
	}
	if options.TokenFilter != "" {
		token := options.TokenFilter
		if len(token) > 8 {
			token = token[:8]
		}
		prefix += "_" + token
	}
	return fmt.Sprintf("%s_%s.%s", prefix, pe.now().Format("20060102_150405"), options.Format)
}

// CSVHeaders returns the column names of the CSV export
func CSVHeaders() []string {
	return []string{
		"id", "token_address", "token_symbol", "token_creation_timestamp",
		"buy_timestamp", "buy_price", "buy_amount_sol", "num_tokens_bought", "buy_signature",
		"position_closed", "sell_timestamp", "sell_amount_sol", "sell_price",
		"sol_delta", "percentage_delta", "sell_signature", "close_reason",
	}
}

// CSVRecord converts a position to a CSV row
func CSVRecord(p *models.Position) []string {
	return []string{
		p.ID,
		p.TokenAddress,
		p.TokenSymbol,
		formatTime(p.TokenCreationTimestamp),
		formatTime(&p.BuyTimestamp),
		formatFloat(p.BuyPrice),
		formatFloat(p.BuyAmountSOL),
		formatFloat(p.NumTokensBought),
		p.BuySignature,
		strconv.FormatBool(p.Closed),
		formatTime(p.SellTimestamp),
		formatOptional(p.SellAmountSOL),
		formatOptional(p.SellPrice),
		formatOptional(p.SOLDelta),
		formatOptional(p.PercentageDelta),
		derefString(p.SellSignature),
		reasonString(p.CloseReason),
	}
}

func (pe *PositionExporter) exportToCSV(positions []*models.Position, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, p := range positions {
		if err := writer.Write(CSVRecord(p)); err != nil {
			return fmt.Errorf("failed to write position: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

type positionJSON struct {
	ID                     string     `json:"id"`
	TokenAddress           string     `json:"token_address"`
	TokenSymbol            string     `json:"token_symbol"`
	TokenCreationTimestamp *time.Time `json:"token_creation_timestamp,omitempty"`
	BuyTimestamp           time.Time  `json:"buy_timestamp"`
	BuyPrice               float64    `json:"buy_price"`
	BuyAmountSOL           float64    `json:"buy_amount_sol"`
	NumTokensBought        float64    `json:"num_tokens_bought"`
	BuySignature           string     `json:"buy_signature"`
	Closed                 bool       `json:"position_closed"`
	SellTimestamp          *time.Time `json:"sell_timestamp,omitempty"`
	SellAmountSOL          *float64   `json:"sell_amount_sol,omitempty"`
	SellPrice              *float64   `json:"sell_price,omitempty"`
	SOLDelta               *float64   `json:"sol_delta,omitempty"`
	PercentageDelta        *float64   `json:"percentage_delta,omitempty"`
	SellSignature          *string    `json:"sell_signature,omitempty"`
	CloseReason            string     `json:"close_reason,omitempty"`
}

func toJSON(p *models.Position) positionJSON {
	return positionJSON{
		ID:                     p.ID,
		TokenAddress:           p.TokenAddress,
		TokenSymbol:            p.TokenSymbol,
		TokenCreationTimestamp: p.TokenCreationTimestamp,
		BuyTimestamp:           p.BuyTimestamp,
		BuyPrice:               p.BuyPrice,
		BuyAmountSOL:           p.BuyAmountSOL,
		NumTokensBought:        p.NumTokensBought,
		BuySignature:           p.BuySignature,
		Closed:                 p.Closed,
		SellTimestamp:          p.SellTimestamp,
		SellAmountSOL:          p.SellAmountSOL,
		SellPrice:              p.SellPrice,
		SOLDelta:               p.SOLDelta,
		PercentageDelta:        p.PercentageDelta,
		SellSignature:          p.SellSignature,
		CloseReason:            reasonString(p.CloseReason),
	}
}

func (pe *PositionExporter) exportToJSON(positions []*models.Position, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	items := make([]positionJSON, 0, len(positions))
	for _, p := range positions {
		items = append(items, toJSON(p))
	}

	exportData := struct {
		ExportTime    time.Time      `json:"export_time"`
		PositionCount int            `json:"position_count"`
		Summary       Summary        `json:"summary"`
		Positions     []positionJSON `json:"positions"`
	}{
		ExportTime:    pe.now(),
		PositionCount: len(positions),
		Summary:       Summarize(positions),
		Positions:     items,
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func reasonString(r *models.CloseReason) string {
	if r == nil {
		return ""
	}
	return string(*r)
}
