package backtester

import (
	"fmt"
	"math"
	"time"
)

// Results is the outcome of one simulation run. Field names in the JSON
// form are consumed by downstream adapters and must stay stable.
type Results struct {
	Symbol         string     `json:"ticker"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	InitialCapital float64    `json:"initial_capital"`
	FinalValue     float64    `json:"final_value"`
	TotalReturn    float64    `json:"total_return"`
	TotalReturnPct float64    `json:"total_return_pct"`
	Trades         []Trade    `json:"trades"`
	Snapshots      []Snapshot `json:"portfolio_history"`

	NumTrades     int     `json:"num_trades"`
	NumBuyTrades  int     `json:"num_buy_trades"`
	NumSellTrades int     `json:"num_sell_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	TotalLoss     float64 `json:"total_loss"`

	BarsProcessed int `json:"bars_processed"`
	BarsSkipped   int `json:"bars_skipped"`
}

func newResults(symbol string, initialCapital float64, trades []Trade, snapshots []Snapshot) *Results {
	r := &Results{
		Symbol:         symbol,
		InitialCapital: initialCapital,
		Trades:         trades,
		Snapshots:      snapshots,
		BarsProcessed:  len(snapshots),
	}

	r.StartDate = snapshots[0].Timestamp
	r.EndDate = snapshots[len(snapshots)-1].Timestamp
	r.FinalValue = snapshots[len(snapshots)-1].Value
	if initialCapital != 0 {
		r.TotalReturn = (r.FinalValue - initialCapital) / initialCapital
	}
	r.TotalReturnPct = r.TotalReturn * 100

	buys, sells := SplitTrades(trades)
	r.NumTrades = len(trades)
	r.NumBuyTrades = len(buys)
	r.NumSellTrades = len(sells)

	profitable := 0
	for i, sell := range sells {
		if i >= len(buys) {
			break
		}
		profit := PairProfit(buys[i], sell)
		if profit > 0 {
			profitable++
			r.TotalProfit += profit
		} else {
			r.TotalLoss += math.Abs(profit)
		}
	}
	if len(sells) > 0 {
		r.WinRate = float64(profitable) / float64(len(sells)) * 100
	}

	return r
}

// SplitTrades separates buys and sells, preserving chronological order
func SplitTrades(trades []Trade) (buys, sells []Trade) {
	for _, t := range trades {
		switch t.Action {
		case ActionBuy:
			buys = append(buys, t)
		case ActionSell:
			sells = append(sells, t)
		}
	}
	return buys, sells
}

// PairProfit is the effective-price P&L of a positionally paired buy and sell,
// sized by the sell quantity.
//
// Pairing buy[i] with sell[i] is only sound while every sell fully
// liquidates, which keeps the two lists alternating one to one.
func PairProfit(buy, sell Trade) float64 {
	return (sell.EffectivePrice - buy.EffectivePrice) * float64(sell.Quantity)
}

// Values returns the snapshot values in order
func (r *Results) Values() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Value
	}
	return out
}

// Summary returns a human-readable summary of the results
func (r *Results) Summary() string {
	return fmt.Sprintf(`
Backtest Results for %s
=======================
Period: %s to %s (%d bars, %d skipped)
Initial Capital: $%.2f
Final Value: $%.2f
Total Return: %.2f%%

Trade Statistics:
- Total Trades: %d (%d buys, %d sells)
- Win Rate: %.1f%%
- Total Profit: $%.2f
- Total Loss: $%.2f
`,
		r.Symbol,
		r.StartDate.Format("2006-01-02"),
		r.EndDate.Format("2006-01-02"),
		r.BarsProcessed,
		r.BarsSkipped,
		r.InitialCapital,
		r.FinalValue,
		r.TotalReturnPct,
		r.NumTrades,
		r.NumBuyTrades,
		r.NumSellTrades,
		r.WinRate,
		r.TotalProfit,
		r.TotalLoss,
	)
}
