package examples

import (
	"testing"

	"github.com/ridopark/closebt/pkg/strategy"
)

func withFeatures(f map[string]float64) strategy.Bar {
	return strategy.Bar{Close: 100, Features: f}
}

func TestMovingAverageCrossover(t *testing.T) {
	s, err := NewMovingAverageCrossoverStrategy(5, 20)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	tests := []struct {
		name     string
		features map[string]float64
		want     strategy.Action
	}{
		{"fast above", map[string]float64{"sma_5": 11, "sma_20": 10}, strategy.ActionBuy},
		{"fast below", map[string]float64{"sma_5": 9, "sma_20": 10}, strategy.ActionSell},
		{"equal", map[string]float64{"sma_5": 10, "sma_20": 10}, strategy.ActionNone},
		{"warmup", map[string]float64{"sma_5": 10}, strategy.ActionNone},
	}
	for _, tt := range tests {
		if got := s.Evaluate(withFeatures(tt.features)); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}

	if _, err := NewMovingAverageCrossoverStrategy(20, 5); err == nil {
		t.Fatal("expected error when short >= long")
	}
}

func TestRSIStrategy(t *testing.T) {
	s, err := NewRSIStrategy(14, 30, 70)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := map[float64]strategy.Action{25: strategy.ActionBuy, 75: strategy.ActionSell, 50: strategy.ActionNone}
	for rsi, want := range cases {
		if got := s.Evaluate(withFeatures(map[string]float64{"rsi": rsi})); got != want {
			t.Fatalf("rsi %v: got %q, want %q", rsi, got, want)
		}
	}
	if _, err := NewRSIStrategy(14, 70, 30); err == nil {
		t.Fatal("expected error for inverted thresholds")
	}
}

func TestMACDStrategy(t *testing.T) {
	s, err := NewMACDStrategy(12, 26, 9)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Evaluate(withFeatures(map[string]float64{"macd": 1, "macd_signal": 0.5})); got != strategy.ActionBuy {
		t.Fatalf("got %q, want buy", got)
	}
	if got := s.Evaluate(withFeatures(map[string]float64{"macd": 0, "macd_signal": 0.5})); got != strategy.ActionSell {
		t.Fatalf("got %q, want sell", got)
	}
	if _, err := NewMACDStrategy(26, 12, 9); err == nil {
		t.Fatal("expected error when fast >= slow")
	}
}

func TestRSIMACDStrategy(t *testing.T) {
	s, err := NewRSIMACDStrategy(14, 30, 70, 12, 26, 9)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	tests := []struct {
		name     string
		features map[string]float64
		want     strategy.Action
	}{
		{"oversold and bullish", map[string]float64{"rsi": 25, "macd": 1, "macd_signal": 0.5}, strategy.ActionBuy},
		{"oversold but bearish", map[string]float64{"rsi": 25, "macd": 0, "macd_signal": 0.5}, strategy.ActionSell},
		{"neutral and bullish", map[string]float64{"rsi": 50, "macd": 1, "macd_signal": 0.5}, strategy.ActionNone},
		{"overbought and bullish", map[string]float64{"rsi": 75, "macd": 1, "macd_signal": 0.5}, strategy.ActionSell},
		{"lines equal", map[string]float64{"rsi": 25, "macd": 0.5, "macd_signal": 0.5}, strategy.ActionNone},
		{"missing macd", map[string]float64{"rsi": 25}, strategy.ActionNone},
	}
	for _, tt := range tests {
		if got := s.Evaluate(withFeatures(tt.features)); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}

	if got := s.RequiredFeatures(); len(got) != 3 {
		t.Fatalf("features = %v", got)
	}
	if got := s.Indicators(); len(got) != 2 {
		t.Fatalf("indicators = %v", got)
	}
	if _, err := NewRSIMACDStrategy(14, 30, 70, 26, 12, 9); err == nil {
		t.Fatal("expected error when fast >= slow")
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	names := reg.List()
	want := []string{"buy_and_hold", "ma_crossover", "macd", "rsi", "rsi_macd"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}

	s, err := reg.Build("rsi", map[string]interface{}{"period": 7.0, "oversold": 20})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	params := s.GetParameters()
	if params["period"] != 7 || params["oversold"] != 20.0 || params["overbought"] != 70.0 {
		t.Fatalf("params = %v", params)
	}

	if _, err := reg.Build("ma_crossover", map[string]interface{}{"shortPeriod": 50, "longPeriod": 10}); err == nil {
		t.Fatal("expected build error")
	}
}

func TestPrepareBars(t *testing.T) {
	bars := []strategy.Bar{{Close: 1}, {Close: 2}, {Close: 3}}

	hold := NewBuyAndHoldStrategy()
	out, err := PrepareBars(bars, hold)
	if err != nil || &out[0] != &bars[0] {
		t.Fatalf("buy and hold should reuse bars, err=%v", err)
	}

	ma, _ := NewMovingAverageCrossoverStrategy(1, 2)
	out, err = PrepareBars(bars, ma)
	if err != nil {
		t.Fatalf("PrepareBars: %v", err)
	}
	if v, ok := out[2].Feature("sma_2"); !ok || v != 2.5 {
		t.Fatalf("sma_2 = %v, %v", v, ok)
	}
}
