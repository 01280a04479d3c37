package backtester

import (
	"errors"
	"fmt"
	"math"
)

// Config holds the simulation knobs. It is passed by value and never
// mutated by the engine.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate"` // fraction of notional
	SlippageRate   float64 `yaml:"slippage_rate" json:"slippage_rate"`     // fraction of price, against the trader
}

// DefaultConfig returns 100k capital, 0.1% commission and 0.2% slippage
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100000.0,
		CommissionRate: 0.001,
		SlippageRate:   0.002,
	}
}

// Validate checks that capital is positive and both rates are non-negative
func (c Config) Validate() error {
	var errs []error
	if !(c.InitialCapital > 0) || math.IsInf(c.InitialCapital, 0) {
		errs = append(errs, fmt.Errorf("initial capital must be > 0, got %v", c.InitialCapital))
	}
	if !(c.CommissionRate >= 0) || math.IsInf(c.CommissionRate, 0) {
		errs = append(errs, fmt.Errorf("commission rate must be >= 0, got %v", c.CommissionRate))
	}
	if !(c.SlippageRate >= 0) || math.IsInf(c.SlippageRate, 0) {
		errs = append(errs, fmt.Errorf("slippage rate must be >= 0, got %v", c.SlippageRate))
	}
	return errors.Join(errs...)
}

// SlippageFromBps converts basis points to a fraction (10 bps = 0.001)
func SlippageFromBps(bps float64) float64 {
	return bps / 10000.0
}
