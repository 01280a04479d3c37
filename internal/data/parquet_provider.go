package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/ridopark/closebt/pkg/feed"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/rs/zerolog"
)

// Compile-time interface checks.
var _ feed.HistoricalDataProvider = (*ParquetProvider)(nil)
var _ feed.BarWriter = (*ParquetProvider)(nil)

// ParquetProvider reads and writes bars as Parquet files laid out as
//
//	<DataDir>/<timeframe>/<SYMBOL>/<YYYY>.parquet
type ParquetProvider struct {
	DataDir string
	logger  zerolog.Logger
}

// BarRecord is the on-disk schema of one bar
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// NewParquetProvider creates a provider rooted at dataDir
func NewParquetProvider(dataDir string) *ParquetProvider {
	return &ParquetProvider{
		DataDir: dataDir,
		logger:  logging.GetLogger("data"),
	}
}

// GetBars reads bars for symbol in [start, end] from every stored year the
// window touches. A zero end leaves the window open.
func (p *ParquetProvider) GetBars(ctx context.Context, symbol string, timeframe string, start time.Time, end time.Time) ([]strategy.Bar, error) {
	years, err := p.years(symbol, timeframe)
	if err != nil && !errors.Is(err, feed.ErrNoData) {
		return nil, err
	}

	var bars []strategy.Bar
	for _, year := range years {
		if year < start.UTC().Year() || (!end.IsZero() && year > end.UTC().Year()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := readParquetFile[BarRecord](p.barPath(symbol, timeframe, year))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading %s/%d: %w", symbol, year, err)
		}

		for _, r := range records {
			b := r.toBar(timeframe)
			if b.Timestamp.Before(start) || (!end.IsZero() && b.Timestamp.After(end)) {
				continue
			}
			bars = append(bars, b)
		}
	}

	p.logger.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("bars", len(bars)).
		Msg("Read parquet bars")

	return bars, nil
}

// GetLastBar returns the newest bar in the latest year file
func (p *ParquetProvider) GetLastBar(_ context.Context, symbol string, timeframe string) (*strategy.Bar, error) {
	years, err := p.years(symbol, timeframe)
	if err != nil {
		return nil, err
	}

	for i := len(years) - 1; i >= 0; i-- {
		records, err := readParquetFile[BarRecord](p.barPath(symbol, timeframe, years[i]))
		if err != nil {
			return nil, fmt.Errorf("reading %s/%d: %w", symbol, years[i], err)
		}
		if len(records) == 0 {
			continue
		}
		last := records[0]
		for _, r := range records[1:] {
			if r.Timestamp > last.Timestamp {
				last = r
			}
		}
		b := last.toBar(timeframe)
		return &b, nil
	}

	return nil, fmt.Errorf("symbol %s timeframe %s: %w", symbol, timeframe, feed.ErrNoData)
}

// WriteBars merges bars into the per-year files, replacing any bar with the
// same timestamp.
func (p *ParquetProvider) WriteBars(ctx context.Context, symbol string, timeframe string, bars []strategy.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	groups := make(map[int][]BarRecord)
	for _, b := range bars {
		year := b.Timestamp.UTC().Year()
		groups[year] = append(groups[year], BarRecord{
			Symbol:    symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for year, records := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := p.barPath(symbol, timeframe, year)
		existing, err := readParquetFile[BarRecord](path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading existing bars for %s/%d: %w", symbol, year, err)
		}

		if err := writeParquetFile(path, mergeBarRecords(existing, records)); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", symbol, year, err)
		}
	}

	p.logger.Info().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("bars", len(bars)).
		Msg("Wrote parquet bars")

	return nil
}

// ListSymbols lists the symbols stored for timeframe
func (p *ParquetProvider) ListSymbols(timeframe string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.DataDir, timeframe))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Close is a no-op; files are opened per call
func (p *ParquetProvider) Close() error {
	return nil
}

func (r BarRecord) toBar(timeframe string) strategy.Bar {
	return strategy.Bar{
		Symbol:    r.Symbol,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		Timeframe: timeframe,
	}
}

func (p *ParquetProvider) barPath(symbol, timeframe string, year int) string {
	return filepath.Join(p.DataDir, timeframe, strings.ToUpper(symbol), strconv.Itoa(year)+".parquet")
}

// years returns the stored years for symbol in ascending order
func (p *ParquetProvider) years(symbol, timeframe string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(p.DataDir, timeframe, strings.ToUpper(symbol)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("symbol %s timeframe %s: %w", symbol, timeframe, feed.ErrNoData)
		}
		return nil, err
	}

	var years []int
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".parquet")
		if e.IsDir() || name == e.Name() {
			continue
		}
		if y, err := strconv.Atoi(name); err == nil {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return parquet.ReadFile[T](path)
}

// mergeBarRecords deduplicates by timestamp, preferring incoming records
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	seen := make(map[int64]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
