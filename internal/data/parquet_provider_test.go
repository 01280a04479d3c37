package data

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ridopark/closebt/pkg/feed"
	"github.com/ridopark/closebt/pkg/strategy"
)

func bar(y int, m time.Month, d int, c float64) strategy.Bar {
	return strategy.Bar{
		Timestamp: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open:      c - 1,
		High:      c + 1,
		Low:       c - 2,
		Close:     c,
		Volume:    1000,
	}
}

func TestParquetProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())

	bars := []strategy.Bar{
		bar(2023, time.December, 28, 10),
		bar(2023, time.December, 29, 11),
		bar(2024, time.January, 2, 12),
		bar(2024, time.January, 3, 13),
	}
	if err := p.WriteBars(ctx, "spy", "1d", bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := p.GetBars(ctx, "SPY", "1d",
		time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 2 || got[0].Close != 11 || got[1].Close != 12 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Symbol != "spy" || got[0].Timeframe != "1d" || got[0].Volume != 1000 {
		t.Fatalf("bar fields = %+v", got[0])
	}

	last, err := p.GetLastBar(ctx, "SPY", "1d")
	if err != nil {
		t.Fatalf("GetLastBar: %v", err)
	}
	if last.Close != 13 {
		t.Fatalf("last close = %v, want 13", last.Close)
	}

	symbols, err := p.ListSymbols("1d")
	if err != nil || len(symbols) != 1 || symbols[0] != "SPY" {
		t.Fatalf("symbols = %v, err = %v", symbols, err)
	}
}

func TestParquetProviderMergeReplaces(t *testing.T) {
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())

	if err := p.WriteBars(ctx, "QQQ", "1d", []strategy.Bar{bar(2024, 3, 1, 1), bar(2024, 3, 4, 2)}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}
	if err := p.WriteBars(ctx, "QQQ", "1d", []strategy.Bar{bar(2024, 3, 4, 20), bar(2024, 3, 5, math.NaN())}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := p.GetBars(ctx, "QQQ", "1d", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 3 || got[1].Close != 20 || !math.IsNaN(got[2].Close) {
		t.Fatalf("got %+v", got)
	}
}

func TestParquetProviderMissing(t *testing.T) {
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())

	got, err := p.GetBars(ctx, "NONE", "1d", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, err %v", got, err)
	}
	if _, err := p.GetLastBar(ctx, "NONE", "1d"); !errors.Is(err, feed.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestHistoricalFeedOverParquet(t *testing.T) {
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())
	if err := p.WriteBars(ctx, "IWM", "1d", []strategy.Bar{bar(2024, 5, 2, 2), bar(2024, 5, 1, 1)}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	f := feed.NewHistoricalFeed(p, "IWM", "1d", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	bars, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(bars) != 2 || bars[0].Close != 1 {
		t.Fatalf("bars = %+v", bars)
	}
}

func TestParquetProviderOpenWindow(t *testing.T) {
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())
	bars := []strategy.Bar{bar(2019, time.June, 3, 1), bar(2022, time.June, 1, 2), bar(2024, time.June, 3, 3)}
	if err := p.WriteBars(ctx, "DIA", "1d", bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := p.GetBars(ctx, "DIA", "1d", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 3 || got[0].Close != 1 || got[2].Close != 3 {
		t.Fatalf("got %+v", got)
	}

	got, err = p.GetBars(ctx, "DIA", "1d", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	if err != nil || len(got) != 2 {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestParquetProviderYearFileIsUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ctx := context.Background()
	p := NewParquetProvider(t.TempDir())

	// 2023-12-31 23:30 in New York is already 2024 in UTC
	late := strategy.Bar{Timestamp: time.Date(2023, 12, 31, 23, 30, 0, 0, ny), Close: 42}
	if err := p.WriteBars(ctx, "EFA", "1d", []strategy.Bar{late}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := p.GetBars(ctx, "EFA", "1d",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetBars: %v", err)
	}
	if len(got) != 1 || got[0].Close != 42 || !got[0].Timestamp.Equal(late.Timestamp) {
		t.Fatalf("got %+v", got)
	}
}
