package examples

import (
	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// RSIMACDStrategy buys when RSI is oversold and MACD is above its signal
// line, and sells when either RSI is overbought or MACD is below its signal.
type RSIMACDStrategy struct {
	*strategy.BaseStrategy
	rsi  *RSIStrategy
	macd *MACDStrategy
}

// NewRSIMACDStrategy creates the combined strategy
func NewRSIMACDStrategy(rsiPeriod int, oversold, overbought float64, fast, slow, signal int) (*RSIMACDStrategy, error) {
	rsi, err := NewRSIStrategy(rsiPeriod, oversold, overbought)
	if err != nil {
		return nil, err
	}
	macd, err := NewMACDStrategy(fast, slow, signal)
	if err != nil {
		return nil, err
	}

	base := strategy.NewBaseStrategy("rsi_macd", map[string]interface{}{
		"rsi_period": rsiPeriod,
		"oversold":   oversold,
		"overbought": overbought,
		"fast":       fast,
		"slow":       slow,
		"signal":     signal,
	})

	return &RSIMACDStrategy{BaseStrategy: base, rsi: rsi, macd: macd}, nil
}

// Evaluate holds unless all three features are present
func (s *RSIMACDStrategy) Evaluate(bar strategy.Bar) strategy.Action {
	rsi, ok := bar.Feature("rsi")
	if !ok {
		return strategy.ActionNone
	}
	macd, ok := bar.Feature("macd")
	if !ok {
		return strategy.ActionNone
	}
	sig, ok := bar.Feature("macd_signal")
	if !ok {
		return strategy.ActionNone
	}

	switch {
	case rsi < s.rsi.oversold && macd > sig:
		return strategy.ActionBuy
	case rsi > s.rsi.overbought || macd < sig:
		return strategy.ActionSell
	default:
		return strategy.ActionNone
	}
}

// RequiredFeatures returns the rsi and macd columns
func (s *RSIMACDStrategy) RequiredFeatures() []string {
	return append(s.rsi.RequiredFeatures(), s.macd.RequiredFeatures()...)
}

// Indicators returns both specs
func (s *RSIMACDStrategy) Indicators() []indicators.Spec {
	return append(s.rsi.Indicators(), s.macd.Indicators()...)
}
