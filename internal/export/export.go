// =============================
// File: internal/export/export.go
// =============================

// Package export writes trade history to CSV or JSON files for offline
// analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/market"
)

// ExportFormat represents the export file format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior.
type ExportOptions struct {
	Format     ExportFormat
	StartTime  time.Time
	EndTime    time.Time
	SideFilter string // "buy", "sell" or empty
	OutputDir  string
}

// TradeExporter handles trade export functionality.
type TradeExporter struct {
	logger *zap.Logger
}

// NewTradeExporter creates a new trade exporter.
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeExporter{logger: logger}
}

// ExportTrades writes the filtered trades to a timestamped file under
// OutputDir and returns its path.
func (te *TradeExporter) ExportTrades(trades []market.Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Seq < filtered[j].Seq
	})

	filename := te.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}
	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

func (te *TradeExporter) filterTrades(trades []market.Trade, options ExportOptions) []market.Trade {
	var filtered []market.Trade
	for _, trade := range trades {
		if !options.StartTime.IsZero() && trade.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && trade.Timestamp.After(options.EndTime) {
			continue
		}
		if options.SideFilter != "" && trade.Side != options.SideFilter {
			continue
		}
		filtered = append(filtered, trade)
	}
	return filtered
}

func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	prefix := "trades_all"
	if options.SideFilter != "" {
		prefix = "trades_" + options.SideFilter
	}
	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

func csvHeaders() []string {
	return []string{"seq", "side", "trader", "gross_in", "fee", "amount_out", "spot_price", "timestamp"}
}

func csvRow(t market.Trade) []string {
	return []string{
		fmt.Sprintf("%d", t.Seq),
		t.Side,
		t.Trader.String(),
		t.GrossIn,
		t.Fee,
		t.AmountOut,
		t.SpotPrice,
		t.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (te *TradeExporter) exportToCSV(trades []market.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, trade := range trades {
		if err := writer.Write(csvRow(trade)); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}
	return nil
}

func (te *TradeExporter) exportToJSON(trades []market.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time      `json:"export_time"`
		TradeCount int            `json:"trade_count"`
		Trades     []market.Trade `json:"trades"`
		Summary    ExportSummary  `json:"summary"`
	}{
		ExportTime: time.Now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    te.calculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// calculateSummary aggregates volumes per side. Amounts stay decimal wei
// strings so the summary never loses precision.
func (te *TradeExporter) calculateSummary(trades []market.Trade) ExportSummary {
	summary := ExportSummary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].Timestamp
	summary.EndDate = trades[len(trades)-1].Timestamp

	buyVolume := new(big.Int)
	sellVolume := new(big.Int)
	totalFees := new(big.Int)
	for _, trade := range trades {
		fee, _ := new(big.Int).SetString(trade.Fee, 10)
		if fee != nil {
			totalFees.Add(totalFees, fee)
		}
		switch trade.Side {
		case "buy":
			summary.BuyCount++
			if v, ok := new(big.Int).SetString(trade.GrossIn, 10); ok {
				buyVolume.Add(buyVolume, v)
			}
		case "sell":
			summary.SellCount++
			if v, ok := new(big.Int).SetString(trade.AmountOut, 10); ok {
				sellVolume.Add(sellVolume, v)
			}
		}
	}

	summary.TotalBuyVolume = buyVolume.String()
	summary.TotalSellVolume = sellVolume.String()
	summary.TotalFees = totalFees.String()
	return summary
}

// ExportSummary contains summary statistics for exported trades.
type ExportSummary struct {
	TotalTrades     int       `json:"total_trades"`
	BuyCount        int       `json:"buy_count"`
	SellCount       int       `json:"sell_count"`
	TotalBuyVolume  string    `json:"total_buy_volume"`
	TotalSellVolume string    `json:"total_sell_volume"`
	TotalFees       string    `json:"total_fees"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}
