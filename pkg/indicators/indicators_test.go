package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/ridopark/closebt/pkg/strategy"
)

func near(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("sma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if SMA([]float64{1}, 0) != nil {
		t.Fatal("zero period should return nil")
	}
}

func TestSMANonFiniteWindow(t *testing.T) {
	got := SMA([]float64{1, math.NaN(), 3, 4, math.Inf(1), 6, 7}, 2)
	want := []float64{math.NaN(), math.NaN(), math.NaN(), 3.5, math.NaN(), math.NaN(), 6.5}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("sma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEMA(t *testing.T) {
	got := EMA([]float64{10, 20, math.NaN(), 20}, 3)
	// k = 0.5: 10, 15, 15 (carried), 17.5
	want := []float64{10, 15, 15, 17.5}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("ema[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRSI(t *testing.T) {
	got := RSI([]float64{1, 2, 3, 2, 2, 2, 2}, 2)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("warmup should be NaN: %v", got[:2])
	}
	if got[2] != 100 {
		t.Fatalf("rsi[2] = %v, want 100 with no losses", got[2])
	}
	// gains 1, losses 1 over the window
	if !near(got[3], 50) {
		t.Fatalf("rsi[3] = %v, want 50", got[3])
	}
	if got[4] != 0 {
		t.Fatalf("rsi[4] = %v, want 0 with only losses", got[4])
	}
	if !math.IsNaN(got[6]) {
		t.Fatalf("flat window should be NaN, got %v", got[6])
	}
}

func TestRSINonFiniteWindow(t *testing.T) {
	got := RSI([]float64{1, 2, math.NaN(), 3, 4, 5, math.Inf(-1), 6}, 2)
	for _, i := range []int{2, 3, 4, 6, 7} {
		if !math.IsNaN(got[i]) {
			t.Fatalf("rsi[%d] = %v, want NaN for a window with a missing close", i, got[i])
		}
	}
	if got[5] != 100 {
		t.Fatalf("rsi[5] = %v, want 100", got[5])
	}
}

func TestMACD(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	line, sig, hist := MACD(x, 2, 4, 3)
	for i := range x {
		if !near(hist[i], line[i]-sig[i]) {
			t.Fatalf("hist[%d] = %v, want %v", i, hist[i], line[i]-sig[i])
		}
	}
	if line[len(x)-1] <= 0 {
		t.Fatalf("rising series should have a positive macd, got %v", line[len(x)-1])
	}
	if l, _, _ := MACD(x, 0, 4, 3); l != nil {
		t.Fatal("invalid period should return nil")
	}
}

func TestAnnotate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]strategy.Bar, 5)
	for i := range bars {
		bars[i] = strategy.Bar{Timestamp: start.AddDate(0, 0, i), Close: float64(i + 1)}
	}
	bars[0].Features = map[string]float64{"custom": 7}

	out, err := Annotate(bars, SMASpec(2), RSISpec(2), MACDSpec(2, 3, 2))
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(bars[0].Features) != 1 {
		t.Fatal("input features were modified")
	}
	if v, ok := out[1].Feature("sma_2"); !ok || v != 1.5 {
		t.Fatalf("sma_2 = %v, %v", v, ok)
	}
	if _, ok := out[0].Feature("sma_2"); ok {
		t.Fatal("warmup value should read as missing")
	}
	if v, ok := out[0].Feature("custom"); !ok || v != 7 {
		t.Fatal("existing feature was dropped")
	}
	for _, name := range []string{"rsi", "macd", "macd_signal", "macd_histogram"} {
		if _, ok := out[4].Features[name]; !ok {
			t.Fatalf("missing feature %s", name)
		}
	}

	if _, err := Annotate(bars, Spec{Kind: "vwap"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := Annotate(bars, SMASpec(0)); err == nil {
		t.Fatal("expected error for zero period")
	}
}

func TestFeatureName(t *testing.T) {
	cases := map[string]Spec{
		"sma_20": SMASpec(20),
		"ema_9":  EMASpec(9),
		"rsi":    RSISpec(14),
		"macd":   MACDSpec(12, 26, 9),
	}
	for want, spec := range cases {
		if got := spec.FeatureName(); got != want {
			t.Fatalf("FeatureName = %q, want %q", got, want)
		}
	}
}
