package strategy

import (
	"math"
	"time"
)

// Bar represents one daily observation of a single instrument plus any
// derived indicator values a signal source may read.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timeframe string

	// Features holds derived columns such as "sma_20" or "rsi".
	Features map[string]float64
}

// Feature returns the named derived value. Missing or NaN values report false.
func (b Bar) Feature(name string) (float64, bool) {
	v, ok := b.Features[name]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// HasPrice reports whether the close is a finite number.
func (b Bar) HasPrice() bool {
	return !math.IsNaN(b.Close) && !math.IsInf(b.Close, 0)
}

// Action is the outcome of evaluating a signal source on one bar
type Action string

const (
	ActionNone Action = ""
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// SignalSource decides what to do on a bar. Implementations must be pure
// functions of the bar so that runs are reproducible.
type SignalSource interface {
	Evaluate(bar Bar) Action
}

// SignalFunc adapts a plain function to the SignalSource interface.
type SignalFunc func(bar Bar) Action

// Evaluate calls f(bar).
func (f SignalFunc) Evaluate(bar Bar) Action {
	return f(bar)
}

// Strategy is a named, parameterised SignalSource.
type Strategy interface {
	SignalSource

	// GetName returns the strategy name
	GetName() string

	// GetParameters returns the strategy parameters
	GetParameters() map[string]interface{}

	// RequiredFeatures lists the bar features Evaluate reads
	RequiredFeatures() []string
}

// StrategyConfig holds configuration for a strategy
type StrategyConfig struct {
	Name       string                 `yaml:"name" json:"name"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"`
}
