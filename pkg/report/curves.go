package report

import (
	"math"

	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/shopspring/decimal"
)

// EquityPoint is one day of account value
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// DrawdownPoint is the percentage below the running peak on one day. It is
// never positive.
type DrawdownPoint struct {
	Date        string  `json:"date"`
	DrawdownPct float64 `json:"drawdown_pct"`
}

// PortfolioPoint splits one day of account value into cash and position
type PortfolioPoint struct {
	Date     string  `json:"date"`
	Cash     float64 `json:"cash"`
	Position float64 `json:"position"`
	Total    float64 `json:"total"`
}

// BuildEquityCurve maps snapshots to dated equity values rounded to cents
func BuildEquityCurve(snapshots []backtester.Snapshot) []EquityPoint {
	curve := make([]EquityPoint, 0, len(snapshots))
	for _, s := range snapshots {
		curve = append(curve, EquityPoint{
			Date:   dateKey(s.Timestamp),
			Equity: round(s.Value, 2),
		})
	}
	return curve
}

// DrawdownSeries returns the unrounded drawdown percentage of each value.
// The peak starts at 0 and only a positive peak produces a drawdown, so a
// value at its running maximum is exactly 0.
func DrawdownSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := 0.0
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak * 100
		} else {
			out[i] = 0.0
		}
	}
	return out
}

// DeriveDrawdownCurve derives a same-length drawdown curve from equity
func DeriveDrawdownCurve(equity []EquityPoint) []DrawdownPoint {
	values := make([]float64, len(equity))
	for i, p := range equity {
		values[i] = p.Equity
	}

	series := DrawdownSeries(values)
	curve := make([]DrawdownPoint, len(equity))
	for i, p := range equity {
		curve[i] = DrawdownPoint{
			Date:        p.Date,
			DrawdownPct: round(series[i], 2),
		}
	}
	return curve
}

// DerivePortfolioCurve reports cash, holdings value and total per snapshot
func DerivePortfolioCurve(snapshots []backtester.Snapshot) []PortfolioPoint {
	curve := make([]PortfolioPoint, 0, len(snapshots))
	for _, s := range snapshots {
		curve = append(curve, PortfolioPoint{
			Date:     dateKey(s.Timestamp),
			Cash:     round(s.Cash, 2),
			Position: round(s.HoldingsValue, 2),
			Total:    round(s.Value, 2),
		})
	}
	return curve
}

// round rounds half away from zero. Non-finite input becomes 0 and a
// negative zero result is normalised to 0.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := decimal.NewFromFloat(v).Round(places).InexactFloat64()
	if r == 0 {
		return 0
	}
	return r
}
