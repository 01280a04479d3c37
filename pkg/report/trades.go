package report

import (
	"github.com/ridopark/closebt/pkg/backtester"
)

// RoundTrip is a completed entry/exit pair. Prices are quoted prices and
// the P&L is net of both commissions. Timestamps are null when the fill
// time could not be rendered.
type RoundTrip struct {
	TradeNo        int     `json:"trade_no"`
	Side           string  `json:"side"`
	Size           int64   `json:"size"`
	EntryTimestamp *string `json:"entry_timestamp"`
	EntryPrice     float64 `json:"entry_price"`
	EntryFees      float64 `json:"entry_fees"`
	ExitTimestamp  *string `json:"exit_timestamp"`
	ExitPrice      float64 `json:"exit_price"`
	ExitFees       float64 `json:"exit_fees"`
	PnLAbs         float64 `json:"pnl_abs"`
	PnLPct         float64 `json:"pnl_pct"`
	HoldingPeriod  float64 `json:"holding_period"` // days
}

// NormalizeTrades pairs the i-th buy with the i-th sell. A buy without a
// matching sell is an open position and is left out.
//
// Positional pairing relies on the engine always liquidating in full.
func NormalizeTrades(trades []backtester.Trade) []RoundTrip {
	buys, sells := backtester.SplitTrades(trades)

	n := len(buys)
	if len(sells) < n {
		n = len(sells)
	}

	out := make([]RoundTrip, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, newRoundTrip(i, buys[i], sells[i]))
	}
	return out
}

func newRoundTrip(no int, buy, sell backtester.Trade) RoundTrip {
	size := sell.Quantity
	if size == 0 {
		size = buy.Quantity
	}

	pnl := (sell.Price-buy.Price)*float64(size) - buy.Commission - sell.Commission
	pnlPct := 0.0
	if entryCost := buy.Price * float64(size); entryCost > 0 {
		pnlPct = pnl / entryCost * 100
	}

	holding := 0.0
	if !buy.Timestamp.IsZero() && !sell.Timestamp.IsZero() {
		holding = sell.Timestamp.Sub(buy.Timestamp).Seconds() / 86400
	}

	return RoundTrip{
		TradeNo:        no,
		Side:           "BUY",
		Size:           size,
		EntryTimestamp: SafeISO8601UTC(buy.Timestamp),
		EntryPrice:     round(buy.Price, 2),
		EntryFees:      round(buy.Commission, 2),
		ExitTimestamp:  SafeISO8601UTC(sell.Timestamp),
		ExitPrice:      round(sell.Price, 2),
		ExitFees:       round(sell.Commission, 2),
		PnLAbs:         round(pnl, 2),
		PnLPct:         round(pnlPct, 2),
		HoldingPeriod:  round(holding, 1),
	}
}
