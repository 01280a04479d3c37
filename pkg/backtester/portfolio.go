package backtester

import (
	"time"
)

// TradeAction is the side of an executed fill
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Trade is one executed fill. TotalCost is set on buys and NetProceeds on
// sells. Records are append-only.
type Trade struct {
	Timestamp      time.Time   `json:"date"`
	Symbol         string      `json:"ticker"`
	Action         TradeAction `json:"action"`
	Quantity       int64       `json:"quantity"`
	Price          float64     `json:"price"`
	EffectivePrice float64     `json:"effective_price"`
	Commission     float64     `json:"commission"`
	TotalCost      float64     `json:"total_cost,omitempty"`
	NetProceeds    float64     `json:"net_proceeds,omitempty"`
}

// Snapshot is the portfolio state recorded after each processed bar.
// Value is always Cash + HoldingsValue, HoldingsValue is Position*Price.
type Snapshot struct {
	Timestamp     time.Time `json:"date"`
	Value         float64   `json:"value"`
	Cash          float64   `json:"cash"`
	HoldingsValue float64   `json:"holdings_value"`
	Position      int64     `json:"position"`
	Price         float64   `json:"price"`
}

// Portfolio tracks cash, a single long position and the run's append-only
// trade and snapshot logs. One Portfolio belongs to exactly one run.
type Portfolio struct {
	cash        float64
	initialCash float64
	position    int64
	trades      []Trade
	snapshots   []Snapshot
}

// NewPortfolio creates a new portfolio with the given initial capital
func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		cash:        initialCapital,
		initialCash: initialCapital,
		trades:      make([]Trade, 0),
		snapshots:   make([]Snapshot, 0),
	}
}

// GetCash returns the current cash balance
func (p *Portfolio) GetCash() float64 {
	return p.cash
}

// GetPosition returns the quantity held
func (p *Portfolio) GetPosition() int64 {
	return p.position
}

// GetTrades returns all trades
func (p *Portfolio) GetTrades() []Trade {
	return p.trades
}

// GetSnapshots returns the equity trajectory
func (p *Portfolio) GetSnapshots() []Snapshot {
	return p.snapshots
}

// ValueAt returns cash plus the position marked at price
func (p *Portfolio) ValueAt(price float64) float64 {
	return p.cash + float64(p.position)*price
}

// ApplyBuy debits the buy's total cost and adds its quantity
func (p *Portfolio) ApplyBuy(trade Trade) {
	p.cash -= trade.TotalCost
	// float residue only; sizing never spends more than cash
	if p.cash < 0 {
		p.cash = 0
	}
	p.position += trade.Quantity
	p.trades = append(p.trades, trade)
}

// ApplySell credits net proceeds and flattens the position
func (p *Portfolio) ApplySell(trade Trade) {
	p.cash += trade.NetProceeds
	p.position = 0
	p.trades = append(p.trades, trade)
}

// Record appends a snapshot marked at price
func (p *Portfolio) Record(ts time.Time, price float64) Snapshot {
	// explicit conversion keeps the product rounded, never fused into the add
	holdings := float64(float64(p.position) * price)
	snap := Snapshot{
		Timestamp:     ts,
		Value:         p.cash + holdings,
		Cash:          p.cash,
		HoldingsValue: holdings,
		Position:      p.position,
		Price:         price,
	}
	p.snapshots = append(p.snapshots, snap)
	return snap
}
