package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/rs/zerolog"
)

// HistoricalFeed loads one instrument's bars for a backtest window
type HistoricalFeed struct {
	provider  HistoricalDataProvider
	symbol    string
	timeframe string
	startDate time.Time
	endDate   time.Time
	logger    zerolog.Logger

	bars []strategy.Bar
}

// NewHistoricalFeed creates a new historical data feed
func NewHistoricalFeed(provider HistoricalDataProvider, symbol string, timeframe string, start, end time.Time) *HistoricalFeed {
	return &HistoricalFeed{
		provider:  provider,
		symbol:    symbol,
		timeframe: timeframe,
		startDate: start,
		endDate:   end,
		logger:    logging.GetLogger("feed"),
	}
}

// Load fetches the bars and returns them in strict chronological order.
// Bars for other symbols or outside the window are dropped, and for a
// repeated timestamp the last bar returned by the provider wins.
func (hf *HistoricalFeed) Load(ctx context.Context) ([]strategy.Bar, error) {
	if !hf.startDate.IsZero() && !hf.endDate.IsZero() && hf.endDate.Before(hf.startDate) {
		return nil, fmt.Errorf("start date %s must be before end date %s",
			hf.startDate.Format("2006-01-02"), hf.endDate.Format("2006-01-02"))
	}

	raw, err := hf.provider.GetBars(ctx, hf.symbol, hf.timeframe, hf.startDate, hf.endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load data for symbol %s: %w", hf.symbol, err)
	}

	bars := make([]strategy.Bar, 0, len(raw))
	for _, b := range raw {
		if b.Symbol != "" && b.Symbol != hf.symbol {
			continue
		}
		if !hf.inWindow(b.Timestamp) {
			continue
		}
		if b.Symbol == "" {
			b.Symbol = hf.symbol
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	bars = dedupe(bars)

	if len(bars) == 0 {
		return nil, fmt.Errorf("symbol %s between %s and %s: %w", hf.symbol,
			hf.startDate.Format("2006-01-02"), hf.endDate.Format("2006-01-02"), ErrNoData)
	}

	hf.bars = bars
	first, last := hf.GetDateRange()
	hf.logger.Info().
		Str("symbol", hf.symbol).
		Int("bars", len(bars)).
		Int("dropped", len(raw)-len(bars)).
		Time("first", first).
		Time("last", last).
		Msg("Loaded historical bars")

	return bars, nil
}

func (hf *HistoricalFeed) inWindow(ts time.Time) bool {
	if !hf.startDate.IsZero() && ts.Before(hf.startDate) {
		return false
	}
	if !hf.endDate.IsZero() && ts.After(hf.endDate) {
		return false
	}
	return true
}

// dedupe keeps the last of any run of equal timestamps in sorted bars
func dedupe(bars []strategy.Bar) []strategy.Bar {
	out := bars[:0]
	for i, b := range bars {
		if i+1 < len(bars) && bars[i+1].Timestamp.Equal(b.Timestamp) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// GetSymbol returns the instrument of this feed
func (hf *HistoricalFeed) GetSymbol() string {
	return hf.symbol
}

// GetTimeframe returns the timeframe of the data
func (hf *HistoricalFeed) GetTimeframe() string {
	return hf.timeframe
}

// GetTotalBars returns the total number of bars loaded
func (hf *HistoricalFeed) GetTotalBars() int {
	return len(hf.bars)
}

// GetDateRange returns the actual date range of the loaded data
func (hf *HistoricalFeed) GetDateRange() (time.Time, time.Time) {
	if len(hf.bars) == 0 {
		return time.Time{}, time.Time{}
	}

	return hf.bars[0].Timestamp, hf.bars[len(hf.bars)-1].Timestamp
}
