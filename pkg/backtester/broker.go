package backtester

import (
	"math"
	"time"
)

// Broker prices market-on-close fills with slippage and commission
type Broker struct {
	commissionRate float64
	slippageRate   float64
}

// NewBroker creates a new simulated broker
func NewBroker(commissionRate, slippageRate float64) *Broker {
	return &Broker{
		commissionRate: commissionRate,
		slippageRate:   slippageRate,
	}
}

// BuyPrice returns the effective price paid for a buy at the quoted price
func (b *Broker) BuyPrice(price float64) float64 {
	return price * (1 + b.slippageRate)
}

// SellPrice returns the effective price received for a sell at the quoted price
func (b *Broker) SellPrice(price float64) float64 {
	return price * (1 - b.slippageRate)
}

// MaxAffordable returns the largest whole quantity cash can pay for,
// commission included, at the given effective price.
func (b *Broker) MaxAffordable(cash, effectivePrice float64) int64 {
	unitCost := effectivePrice * (1 + b.commissionRate)
	if !(unitCost > 0) || !(cash > 0) {
		return 0
	}
	q := math.Floor(cash / unitCost)
	if math.IsInf(q, 0) || q > math.MaxInt64 {
		return 0
	}
	return int64(q)
}

// Buy sizes and prices a buy using all available cash. It returns nil when
// not even one unit is affordable.
func (b *Broker) Buy(symbol string, ts time.Time, price, cash float64) *Trade {
	effectivePrice := b.BuyPrice(price)
	quantity := b.MaxAffordable(cash, effectivePrice)
	if quantity <= 0 {
		return nil
	}

	cost := float64(quantity) * effectivePrice
	commission := cost * b.commissionRate

	return &Trade{
		Timestamp:      ts,
		Symbol:         symbol,
		Action:         ActionBuy,
		Quantity:       quantity,
		Price:          price,
		EffectivePrice: effectivePrice,
		Commission:     commission,
		TotalCost:      cost + commission,
	}
}

// Sell prices a full liquidation of quantity units
func (b *Broker) Sell(symbol string, ts time.Time, price float64, quantity int64) *Trade {
	if quantity <= 0 {
		return nil
	}

	effectivePrice := b.SellPrice(price)
	proceeds := float64(quantity) * effectivePrice
	commission := proceeds * b.commissionRate

	return &Trade{
		Timestamp:      ts,
		Symbol:         symbol,
		Action:         ActionSell,
		Quantity:       quantity,
		Price:          price,
		EffectivePrice: effectivePrice,
		Commission:     commission,
		NetProceeds:    proceeds - commission,
	}
}
