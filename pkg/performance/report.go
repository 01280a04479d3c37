package performance

import (
	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/logging"
)

// TradingDaysPerYear converts a snapshot count into years
const TradingDaysPerYear = 252

// ReportOptions controls the annualisation of return-based ratios
type ReportOptions struct {
	RiskFreeRate   float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	PeriodsPerYear int     `yaml:"periods_per_year" json:"periods_per_year"`
}

// DefaultReportOptions returns a 2% annual risk-free rate over 252 periods
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		RiskFreeRate:   0.02,
		PeriodsPerYear: TradingDaysPerYear,
	}
}

// BasicMetrics echoes the headline numbers of a run
type BasicMetrics struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	TotalReturnPct float64 `json:"total_return_pct"`
	NumTrades      int     `json:"num_trades"`
}

// RiskMetrics holds the return- and drawdown-based ratios
type RiskMetrics struct {
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration"`
	CalmarRatio         float64 `json:"calmar_ratio"`
}

// TradingMetrics holds trade-pair statistics
type TradingMetrics struct {
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"`
}

// Period is the length of the run in snapshots and in years
type Period struct {
	Days  int     `json:"days"`
	Years float64 `json:"years"`
}

// FullReport is the nested performance summary of one run
type FullReport struct {
	BasicMetrics   BasicMetrics   `json:"basic_metrics"`
	RiskMetrics    RiskMetrics    `json:"risk_metrics"`
	TradingMetrics TradingMetrics `json:"trading_metrics"`
	Period         Period         `json:"period"`
}

// GenerateFullReport computes every statistic for results. With fewer than
// two snapshots the return series is a single zero, so Sharpe and Sortino
// come back as 0.
func GenerateFullReport(results *backtester.Results, opts ReportOptions) *FullReport {
	logger := logging.GetLogger("performance")

	if results == nil {
		return &FullReport{}
	}
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = TradingDaysPerYear
	}

	values := results.Values()
	returns := PeriodicReturns(values)
	if len(returns) == 0 || len(values) < 2 {
		returns = []float64{0.0}
	}

	sharpe := SharpeRatio(returns, opts.RiskFreeRate, opts.PeriodsPerYear)
	sortino := SortinoRatio(returns, opts.RiskFreeRate, opts.PeriodsPerYear)
	drawdown := MaxDrawdown(values)
	trades := WinRate(results.Trades)

	days := len(values)
	years := float64(days) / TradingDaysPerYear
	calmar := CalmarRatio(results.TotalReturn, drawdown.MaxDrawdown, years)

	report := &FullReport{
		BasicMetrics: BasicMetrics{
			InitialCapital: results.InitialCapital,
			FinalValue:     results.FinalValue,
			TotalReturnPct: results.TotalReturnPct,
			NumTrades:      results.NumTrades,
		},
		RiskMetrics: RiskMetrics{
			SharpeRatio:         sharpe,
			SortinoRatio:        sortino,
			MaxDrawdownPct:      drawdown.MaxDrawdownPct,
			MaxDrawdownDuration: drawdown.MaxDrawdownDuration,
			CalmarRatio:         calmar,
		},
		TradingMetrics: TradingMetrics{
			WinRate:      trades.WinRate,
			AvgWin:       trades.AvgWin,
			AvgLoss:      trades.AvgLoss,
			ProfitFactor: trades.ProfitFactor,
		},
		Period: Period{
			Days:  days,
			Years: years,
		},
	}

	logger.Info().
		Str("symbol", results.Symbol).
		Float64("sharpe", sharpe).
		Float64("sortino", sortino).
		Float64("max_drawdown_pct", drawdown.MaxDrawdownPct).
		Msg("Performance report generated")

	return report
}
