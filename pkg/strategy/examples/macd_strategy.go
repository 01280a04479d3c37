package examples

import (
	"fmt"

	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// MACDStrategy buys while the MACD line is above its signal line and sells
// while it is below.
type MACDStrategy struct {
	*strategy.BaseStrategy
	fast, slow, signal int
}

// NewMACDStrategy creates a new MACD strategy
func NewMACDStrategy(fast, slow, signal int) (*MACDStrategy, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, fmt.Errorf("macd periods must be positive (got %d/%d/%d)", fast, slow, signal)
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast period %d must be less than slow period %d", fast, slow)
	}

	base := strategy.NewBaseStrategy("macd", map[string]interface{}{
		"fast":   fast,
		"slow":   slow,
		"signal": signal,
	})

	return &MACDStrategy{
		BaseStrategy: base,
		fast:         fast,
		slow:         slow,
		signal:       signal,
	}, nil
}

// Evaluate compares the MACD line with its signal line
func (s *MACDStrategy) Evaluate(bar strategy.Bar) strategy.Action {
	macd, ok := bar.Feature("macd")
	if !ok {
		return strategy.ActionNone
	}
	sig, ok := bar.Feature("macd_signal")
	if !ok {
		return strategy.ActionNone
	}

	diff := macd - sig
	switch {
	case diff > 0:
		return strategy.ActionBuy
	case diff < 0:
		return strategy.ActionSell
	default:
		return strategy.ActionNone
	}
}

// RequiredFeatures returns the macd columns
func (s *MACDStrategy) RequiredFeatures() []string {
	return []string{"macd", "macd_signal"}
}

// Indicators returns the MACD spec
func (s *MACDStrategy) Indicators() []indicators.Spec {
	return []indicators.Spec{indicators.MACDSpec(s.fast, s.slow, s.signal)}
}
