package batch

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/report"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/ridopark/closebt/pkg/strategy/examples"
)

func sineBars(n int) []strategy.Bar {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]strategy.Bar, n)
	for i := range bars {
		c := 100 + 10*math.Sin(float64(i)/5)
		bars[i] = strategy.Bar{Symbol: "SPY", Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func options() Options {
	return Options{
		Symbol:  "SPY",
		Config:  backtester.DefaultConfig(),
		Report:  report.DefaultOptions(),
		Workers: 3,
	}
}

func TestRunMatchesSequential(t *testing.T) {
	bars := sineBars(120)
	reg := examples.DefaultRegistry()
	variants, err := VariantsFromConfigs(reg, []strategy.StrategyConfig{
		{Name: "buy_and_hold"},
		{Name: "rsi", Parameters: map[string]interface{}{"period": 7}},
		{Name: "ma_crossover", Parameters: map[string]interface{}{"shortPeriod": 5, "longPeriod": 15}},
		{Name: "macd"},
	})
	if err != nil {
		t.Fatalf("VariantsFromConfigs: %v", err)
	}

	outcomes, err := Run(context.Background(), bars, variants, options())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != len(variants) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(variants))
	}

	engine := backtester.NewEngine(backtester.DefaultConfig())
	for i, o := range outcomes {
		if o.Variant != variants[i].Name {
			t.Fatalf("outcome %d is %s, want %s", i, o.Variant, variants[i].Name)
		}
		if o.Err != nil {
			t.Fatalf("%s: %v", o.Variant, o.Err)
		}
		prepared, err := examples.PrepareBars(bars, variants[i].Strategy)
		if err != nil {
			t.Fatalf("PrepareBars: %v", err)
		}
		want, err := engine.Run(prepared, variants[i].Strategy, "SPY")
		if err != nil {
			t.Fatalf("sequential run: %v", err)
		}
		if o.Results.FinalValue != want.FinalValue || len(o.Results.Trades) != len(want.Trades) {
			t.Fatalf("%s: parallel %v/%d, sequential %v/%d", o.Variant,
				o.Results.FinalValue, len(o.Results.Trades), want.FinalValue, len(want.Trades))
		}
		if o.Report == nil || o.Report.Status != report.StatusCompleted {
			t.Fatalf("%s: report = %+v", o.Variant, o.Report)
		}
	}

	if outcomes[0].Report.RunID == outcomes[1].Report.RunID {
		t.Fatal("variants share a run id")
	}
	if bars[0].Features != nil {
		t.Fatal("shared bars were annotated in place")
	}
}

func TestRunReportsPerVariantFailures(t *testing.T) {
	bars := []strategy.Bar{{Symbol: "SPY", Timestamp: time.Now(), Close: math.NaN()}}
	variants := []Variant{
		{Name: "hold", Strategy: examples.NewBuyAndHoldStrategy()},
		{Name: "empty"},
	}

	outcomes, err := Run(context.Background(), bars, variants, options())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(outcomes[0].Err, backtester.ErrNoTradesExecuted) {
		t.Fatalf("err = %v, want ErrNoTradesExecuted", outcomes[0].Err)
	}
	if outcomes[0].Report.Status != report.StatusFailed || outcomes[1].Err == nil {
		t.Fatalf("outcomes = %+v", outcomes)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	variants := []Variant{{Name: "hold", Strategy: examples.NewBuyAndHoldStrategy()}}
	if _, err := Run(ctx, sineBars(10), variants, options()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	opts := options()
	opts.Config.InitialCapital = 0
	if _, err := Run(context.Background(), sineBars(10), nil, opts); err == nil {
		t.Fatal("expected config error")
	}
}

func TestVariantsFromConfigsErrors(t *testing.T) {
	reg := examples.DefaultRegistry()
	if _, err := VariantsFromConfigs(reg, []strategy.StrategyConfig{{}}); err == nil {
		t.Fatal("expected error for unnamed config")
	}
	if _, err := VariantsFromConfigs(reg, []strategy.StrategyConfig{{Name: "nope"}}); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
