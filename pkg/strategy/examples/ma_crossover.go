package examples

import (
	"fmt"

	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// MovingAverageCrossoverStrategy buys while the fast SMA is above the slow
// SMA and sells while it is below.
type MovingAverageCrossoverStrategy struct {
	*strategy.BaseStrategy
	shortPeriod int
	longPeriod  int
}

// NewMovingAverageCrossoverStrategy creates a new moving average crossover strategy
func NewMovingAverageCrossoverStrategy(shortPeriod, longPeriod int) (*MovingAverageCrossoverStrategy, error) {
	if shortPeriod <= 0 || shortPeriod >= longPeriod {
		return nil, fmt.Errorf("short period must be positive and less than long period (got %d, %d)", shortPeriod, longPeriod)
	}

	base := strategy.NewBaseStrategy("ma_crossover", map[string]interface{}{
		"shortPeriod": shortPeriod,
		"longPeriod":  longPeriod,
	})

	return &MovingAverageCrossoverStrategy{
		BaseStrategy: base,
		shortPeriod:  shortPeriod,
		longPeriod:   longPeriod,
	}, nil
}

// Evaluate compares the precomputed moving averages on the bar
func (s *MovingAverageCrossoverStrategy) Evaluate(bar strategy.Bar) strategy.Action {
	fast, ok := bar.Feature(s.shortFeature())
	if !ok {
		return strategy.ActionNone
	}
	slow, ok := bar.Feature(s.longFeature())
	if !ok {
		return strategy.ActionNone
	}

	switch {
	case fast > slow:
		return strategy.ActionBuy
	case fast < slow:
		return strategy.ActionSell
	default:
		return strategy.ActionNone
	}
}

// RequiredFeatures returns the two SMA columns
func (s *MovingAverageCrossoverStrategy) RequiredFeatures() []string {
	return []string{s.shortFeature(), s.longFeature()}
}

// Indicators returns the SMA specs Evaluate needs
func (s *MovingAverageCrossoverStrategy) Indicators() []indicators.Spec {
	return []indicators.Spec{indicators.SMASpec(s.shortPeriod), indicators.SMASpec(s.longPeriod)}
}

func (s *MovingAverageCrossoverStrategy) shortFeature() string {
	return indicators.SMASpec(s.shortPeriod).FeatureName()
}

func (s *MovingAverageCrossoverStrategy) longFeature() string {
	return indicators.SMASpec(s.longPeriod).FeatureName()
}
