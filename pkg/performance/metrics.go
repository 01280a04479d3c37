package performance

import (
	"math"

	"github.com/ridopark/closebt/pkg/backtester"
)

// DrawdownStats describes the deepest peak-to-trough decline of a value series
type DrawdownStats struct {
	MaxDrawdown         float64 `json:"max_drawdown"`          // non-negative fraction
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`      // MaxDrawdown * 100
	MaxDrawdownDuration int     `json:"max_drawdown_duration"` // longest run of points below the running max
}

// TradeStats summarises positionally paired buy/sell trades
type TradeStats struct {
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
}

// PeriodicReturns returns simple percent changes between consecutive values.
// The first value yields no return. A zero previous value yields 0.
func PeriodicReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (values[i]-prev)/prev)
	}
	return out
}

// SharpeRatio annualises mean excess return over its sample standard
// deviation. Empty or zero-variance input returns 0.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}
	excess := excessReturns(returns, riskFreeRate, periodsPerYear)
	sd := sampleStdDev(excess)
	if sd == 0 {
		return 0
	}
	return finiteOrZero(math.Sqrt(float64(periodsPerYear)) * mean(excess) / sd)
}

// SortinoRatio is SharpeRatio with the denominator replaced by the sample
// standard deviation of the negative raw returns.
func SortinoRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	sd := sampleStdDev(downside)
	if sd == 0 {
		return 0
	}
	excess := excessReturns(returns, riskFreeRate, periodsPerYear)
	return finiteOrZero(math.Sqrt(float64(periodsPerYear)) * mean(excess) / sd)
}

// MaxDrawdown measures drawdown against the running maximum of values
func MaxDrawdown(values []float64) DrawdownStats {
	if len(values) == 0 {
		return DrawdownStats{}
	}

	peak := math.Inf(-1)
	worst := 0.0
	run, longest := 0, 0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		dd := 0.0
		if peak != 0 {
			dd = (v - peak) / peak
		}
		if dd < worst {
			worst = dd
		}
		if dd < 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	mdd := math.Abs(worst)
	return DrawdownStats{
		MaxDrawdown:         mdd,
		MaxDrawdownPct:      mdd * 100,
		MaxDrawdownDuration: longest,
	}
}

// CalmarRatio divides the annualised return by the max drawdown fraction.
// It returns 0 when there was no drawdown.
func CalmarRatio(totalReturn, maxDrawdown, years float64) float64 {
	if maxDrawdown == 0 || years <= 0 {
		return 0
	}
	annualized := math.Pow(1+totalReturn, 1/years) - 1
	return finiteOrZero(annualized / math.Abs(maxDrawdown))
}

// WinRate pairs the i-th buy with the i-th sell and scores each pair by
// effective-price P&L. A pair that does not make money counts as a loss.
// Profit factor is 0 when nothing was lost.
func WinRate(trades []backtester.Trade) TradeStats {
	buys, sells := backtester.SplitTrades(trades)

	var wins, losses []float64
	for i, sell := range sells {
		if i >= len(buys) {
			break
		}
		profit := backtester.PairProfit(buys[i], sell)
		if profit > 0 {
			wins = append(wins, profit)
		} else {
			losses = append(losses, math.Abs(profit))
		}
	}

	stats := TradeStats{Wins: len(wins), Losses: len(losses)}
	if n := len(wins) + len(losses); n > 0 {
		stats.WinRate = float64(len(wins)) / float64(n) * 100
	}
	stats.AvgWin = mean(wins)
	stats.AvgLoss = mean(losses)
	if totalLoss := sum(losses); totalLoss > 0 {
		stats.ProfitFactor = sum(wins) / totalLoss
	}
	return stats
}

func excessReturns(returns []float64, riskFreeRate float64, periodsPerYear int) []float64 {
	perPeriod := riskFreeRate / float64(periodsPerYear)
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - perPeriod
	}
	return out
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return sum(xs) / float64(len(xs))
}

// sampleStdDev uses n-1 in the denominator; fewer than two points give 0.
// A constant series is exactly 0 even when the mean does not round-trip.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	constant := true
	for _, x := range xs[1:] {
		if x != xs[0] {
			constant = false
			break
		}
	}
	if constant {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
