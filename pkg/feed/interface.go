package feed

import (
	"context"
	"errors"
	"time"

	"github.com/ridopark/closebt/pkg/strategy"
)

// ErrNoData is returned when a provider has no bars for the request
var ErrNoData = errors.New("no data")

// HistoricalDataProvider defines the interface for historical data sources
type HistoricalDataProvider interface {
	// GetBars retrieves OHLCV bars for symbol in [start, end], oldest first
	GetBars(ctx context.Context, symbol string, timeframe string, start time.Time, end time.Time) ([]strategy.Bar, error)

	// GetLastBar gets the most recent bar for a symbol
	GetLastBar(ctx context.Context, symbol string, timeframe string) (*strategy.Bar, error)

	// Close releases the underlying connection or files
	Close() error
}

// BarWriter is implemented by providers that can also persist bars
type BarWriter interface {
	WriteBars(ctx context.Context, symbol string, timeframe string, bars []strategy.Bar) error
}
