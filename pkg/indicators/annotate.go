package indicators

import (
	"fmt"

	"github.com/ridopark/closebt/pkg/strategy"
)

// Spec names one derived column and how to compute it from closes.
type Spec struct {
	Kind   string // "sma", "ema", "rsi", "macd"
	Period int
	// MACD only
	Fast, Slow, Signal int
}

// SMASpec, EMASpec, RSISpec and MACDSpec build the common specs.
func SMASpec(p int) Spec { return Spec{Kind: "sma", Period: p} }
func EMASpec(p int) Spec { return Spec{Kind: "ema", Period: p} }
func RSISpec(p int) Spec { return Spec{Kind: "rsi", Period: p} }
func MACDSpec(fast, slow, sig int) Spec { return Spec{Kind: "macd", Fast: fast, Slow: slow, Signal: sig} }

// FeatureName returns the column name a spec writes, e.g. "sma_20".
// RSI writes "rsi" and MACD writes "macd", "macd_signal" and "macd_histogram".
func (s Spec) FeatureName() string {
	switch s.Kind {
	case "rsi", "macd":
		return s.Kind
	default:
		return fmt.Sprintf("%s_%d", s.Kind, s.Period)
	}
}

// Annotate returns copies of bars with the requested features added. The
// input bars and their feature maps are left untouched.
func Annotate(bars []strategy.Bar, specs ...Spec) ([]strategy.Bar, error) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	columns := make(map[string][]float64)
	for _, s := range specs {
		switch s.Kind {
		case "sma":
			columns[s.FeatureName()] = SMA(closes, s.Period)
		case "ema":
			columns[s.FeatureName()] = EMA(closes, s.Period)
		case "rsi":
			columns["rsi"] = RSI(closes, s.Period)
		case "macd":
			line, sig, hist := MACD(closes, s.Fast, s.Slow, s.Signal)
			columns["macd"] = line
			columns["macd_signal"] = sig
			columns["macd_histogram"] = hist
		default:
			return nil, fmt.Errorf("unsupported indicator kind: %s", s.Kind)
		}
	}
	for name, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("invalid period for feature %s", name)
		}
	}

	out := make([]strategy.Bar, len(bars))
	for i, b := range bars {
		features := make(map[string]float64, len(b.Features)+len(columns))
		for k, v := range b.Features {
			features[k] = v
		}
		for name, col := range columns {
			features[name] = col[i]
		}
		b.Features = features
		out[i] = b
	}
	return out, nil
}
