package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/ridopark/closebt/pkg/feed"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/rs/zerolog"
)

const barColumns = `symbol, timestamp, open, high, low, close, volume, timeframe`

// TimescaleDBProvider provides historical data from TimescaleDB
type TimescaleDBProvider struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewTimescaleDBProvider creates a new TimescaleDB data provider
func NewTimescaleDBProvider(ctx context.Context, connectionString string) (*TimescaleDBProvider, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &TimescaleDBProvider{
		db:     db,
		logger: logging.GetLogger("data"),
	}, nil
}

// ConnectionString builds a lib/pq key/value DSN
func ConnectionString(host string, port int, user, password, dbname, sslmode string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// GetBars retrieves historical OHLCV data for the given parameters
func (p *TimescaleDBProvider) GetBars(ctx context.Context, symbol string, timeframe string, start time.Time, end time.Time) ([]strategy.Bar, error) {
	query := `
		SELECT ` + barColumns + `
		FROM ohlcv_data
		WHERE symbol = $1 AND timeframe = $2 AND timestamp >= $3 AND timestamp <= $4
		ORDER BY timestamp ASC
	`

	rows, err := p.db.QueryContext(ctx, query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query ohlcv_data: %w", err)
	}
	defer rows.Close()

	var bars []strategy.Bar
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		bars = append(bars, bar)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	p.logger.Debug().
		Str("symbol", symbol).
		Str("timeframe", timeframe).
		Int("bars", len(bars)).
		Msg("Queried ohlcv_data")

	return bars, nil
}

// GetLastBar gets the most recent bar for a symbol
func (p *TimescaleDBProvider) GetLastBar(ctx context.Context, symbol string, timeframe string) (*strategy.Bar, error) {
	query := `
		SELECT ` + barColumns + `
		FROM ohlcv_data
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY timestamp DESC
		LIMIT 1
	`

	bar, err := scanBar(p.db.QueryRowContext(ctx, query, symbol, timeframe))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("symbol %s timeframe %s: %w", symbol, timeframe, feed.ErrNoData)
		}
		return nil, fmt.Errorf("failed to get last bar: %w", err)
	}

	return &bar, nil
}

// Close closes the database connection
func (p *TimescaleDBProvider) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBar reads one ohlcv_data row. NULL prices become NaN so the engine
// skips the bar instead of trading at zero.
func scanBar(row rowScanner) (strategy.Bar, error) {
	var (
		bar        strategy.Bar
		o, h, l, c sql.NullFloat64
		volume     sql.NullFloat64
		timeframe  sql.NullString
	)
	if err := row.Scan(&bar.Symbol, &bar.Timestamp, &o, &h, &l, &c, &volume, &timeframe); err != nil {
		return strategy.Bar{}, err
	}

	bar.Open = nullToNaN(o)
	bar.High = nullToNaN(h)
	bar.Low = nullToNaN(l)
	bar.Close = nullToNaN(c)
	bar.Volume = volume.Float64
	bar.Timeframe = timeframe.String
	return bar, nil
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// Verify that TimescaleDBProvider implements the HistoricalDataProvider interface
var _ feed.HistoricalDataProvider = (*TimescaleDBProvider)(nil)
