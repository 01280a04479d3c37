package examples

import (
	"fmt"

	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// RSIStrategy implements a simple RSI oversold/overbought strategy
type RSIStrategy struct {
	*strategy.BaseStrategy
	rsiPeriod  int
	oversold   float64 // RSI level to buy
	overbought float64 // RSI level to sell
}

// NewRSIStrategy creates a new RSI strategy
func NewRSIStrategy(rsiPeriod int, oversold, overbought float64) (*RSIStrategy, error) {
	if rsiPeriod <= 0 {
		return nil, fmt.Errorf("rsi period must be positive, got %d", rsiPeriod)
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("oversold (%.2f) must be below overbought (%.2f)", oversold, overbought)
	}

	base := strategy.NewBaseStrategy("rsi", map[string]interface{}{
		"period":     rsiPeriod,
		"oversold":   oversold,
		"overbought": overbought,
	})

	return &RSIStrategy{
		BaseStrategy: base,
		rsiPeriod:    rsiPeriod,
		oversold:     oversold,
		overbought:   overbought,
	}, nil
}

// Evaluate buys below the oversold level and sells above the overbought level
func (s *RSIStrategy) Evaluate(bar strategy.Bar) strategy.Action {
	rsi, ok := bar.Feature("rsi")
	if !ok {
		return strategy.ActionNone
	}

	if rsi < s.oversold {
		return strategy.ActionBuy
	}
	if rsi > s.overbought {
		return strategy.ActionSell
	}
	return strategy.ActionNone
}

// RequiredFeatures returns the rsi column
func (s *RSIStrategy) RequiredFeatures() []string {
	return []string{"rsi"}
}

// Indicators returns the RSI spec
func (s *RSIStrategy) Indicators() []indicators.Spec {
	return []indicators.Spec{indicators.RSISpec(s.rsiPeriod)}
}
