package examples

import (
	"github.com/ridopark/closebt/pkg/indicators"
	"github.com/ridopark/closebt/pkg/strategy"
)

// BuyAndHoldStrategy signals a buy on every priced bar and never sells.
// The engine only fills while cash can cover at least one share, so in
// practice the position is opened on the first bar.
type BuyAndHoldStrategy struct {
	*strategy.BaseStrategy
}

// NewBuyAndHoldStrategy creates a new buy-and-hold strategy
func NewBuyAndHoldStrategy() *BuyAndHoldStrategy {
	return &BuyAndHoldStrategy{
		BaseStrategy: strategy.NewBaseStrategy("buy_and_hold", nil),
	}
}

// Evaluate always returns buy
func (s *BuyAndHoldStrategy) Evaluate(bar strategy.Bar) strategy.Action {
	return strategy.ActionBuy
}

// RequiredFeatures returns nil; only the close is used
func (s *BuyAndHoldStrategy) RequiredFeatures() []string {
	return nil
}

// Indicators returns nil
func (s *BuyAndHoldStrategy) Indicators() []indicators.Spec {
	return nil
}
