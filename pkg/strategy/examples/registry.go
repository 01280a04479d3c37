package examples

import (
	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// IndicatorUser is implemented by strategies that read derived bar features.
type IndicatorUser interface {
	Indicators() []indicators.Spec
}

// DefaultRegistry returns a registry with every example strategy. Missing
// parameters fall back to the usual textbook defaults.
func DefaultRegistry() *strategy.Registry {
	r := strategy.NewRegistry()

	r.Register("buy_and_hold", func(map[string]interface{}) (strategy.Strategy, error) {
		return NewBuyAndHoldStrategy(), nil
	})
	r.Register("ma_crossover", func(p map[string]interface{}) (strategy.Strategy, error) {
		s, err := NewMovingAverageCrossoverStrategy(
			strategy.ParamIntOr(p, "shortPeriod", 20),
			strategy.ParamIntOr(p, "longPeriod", 50),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	r.Register("rsi", func(p map[string]interface{}) (strategy.Strategy, error) {
		s, err := NewRSIStrategy(
			strategy.ParamIntOr(p, "period", 14),
			strategy.ParamFloat64Or(p, "oversold", 30),
			strategy.ParamFloat64Or(p, "overbought", 70),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	r.Register("macd", func(p map[string]interface{}) (strategy.Strategy, error) {
		s, err := NewMACDStrategy(
			strategy.ParamIntOr(p, "fast", 12),
			strategy.ParamIntOr(p, "slow", 26),
			strategy.ParamIntOr(p, "signal", 9),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	r.Register("rsi_macd", func(p map[string]interface{}) (strategy.Strategy, error) {
		s, err := NewRSIMACDStrategy(
			strategy.ParamIntOr(p, "rsi_period", 14),
			strategy.ParamFloat64Or(p, "oversold", 30),
			strategy.ParamFloat64Or(p, "overbought", 70),
			strategy.ParamIntOr(p, "fast", 12),
			strategy.ParamIntOr(p, "slow", 26),
			strategy.ParamIntOr(p, "signal", 9),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	return r
}

// PrepareBars annotates bars with whatever features s needs.
func PrepareBars(bars []strategy.Bar, s strategy.Strategy) ([]strategy.Bar, error) {
	u, ok := s.(IndicatorUser)
	if !ok || len(u.Indicators()) == 0 {
		return bars, nil
	}
	return indicators.Annotate(bars, u.Indicators()...)
}
