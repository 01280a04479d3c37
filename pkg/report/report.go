package report

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/performance"
)

// Run status values
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Metrics are the headline figures of a run, rounded for display
type Metrics struct {
	TotalReturnPct float64 `json:"total_return_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	NumTrades      int     `json:"num_trades"` // completed round trips
	Ticker         string  `json:"ticker"`
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	WinRate        float64 `json:"win_rate"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	CalmarRatio    float64 `json:"calmar_ratio"`
	ProfitFactor   float64 `json:"profit_factor"`
}

// Report is the canonical response for one run. Every key is present in
// both the completed and the failed shape.
type Report struct {
	RunID          string                  `json:"run_id"`
	Status         string                  `json:"status"`
	ErrorMessage   *string                 `json:"error_message"`
	Metrics        Metrics                 `json:"metrics"`
	EquityCurve    []EquityPoint           `json:"equity_curve"`
	DrawdownCurve  []DrawdownPoint         `json:"drawdown_curve"`
	PortfolioCurve []PortfolioPoint        `json:"portfolio_curve"`
	Trades         []RoundTrip             `json:"trades"`
	Performance    *performance.FullReport `json:"performance"`
}

// Options controls report assembly
type Options struct {
	// RunID is generated when empty
	RunID       string
	Performance performance.ReportOptions
}

// DefaultOptions uses a zero risk-free rate for the headline ratios
func DefaultOptions() Options {
	return Options{
		Performance: performance.ReportOptions{
			RiskFreeRate:   0.0,
			PeriodsPerYear: performance.TradingDaysPerYear,
		},
	}
}

// NewRunID returns a random run identifier
func NewRunID() string {
	return uuid.New().String()
}

// Assemble builds the completed report for results. Only this layer rounds.
func Assemble(results *backtester.Results, opts Options) (*Report, error) {
	if results == nil {
		return nil, errors.New("report: nil results")
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	logger := logging.GetLogger("report").With().Str("run_id", runID).Logger()

	full := performance.GenerateFullReport(results, opts.Performance)
	trades := NormalizeTrades(results.Trades)
	equity := BuildEquityCurve(results.Snapshots)

	r := &Report{
		RunID:  runID,
		Status: StatusCompleted,
		Metrics: Metrics{
			TotalReturnPct: round(results.TotalReturnPct, 2),
			SharpeRatio:    round(full.RiskMetrics.SharpeRatio, 2),
			MaxDrawdownPct: round(full.RiskMetrics.MaxDrawdownPct, 2),
			NumTrades:      len(trades),
			Ticker:         results.Symbol,
			InitialCapital: results.InitialCapital,
			FinalValue:     round(results.FinalValue, 2),
			WinRate:        round(full.TradingMetrics.WinRate, 1),
			SortinoRatio:   round(full.RiskMetrics.SortinoRatio, 2),
			CalmarRatio:    round(full.RiskMetrics.CalmarRatio, 2),
			ProfitFactor:   round(full.TradingMetrics.ProfitFactor, 2),
		},
		EquityCurve:    equity,
		DrawdownCurve:  DeriveDrawdownCurve(equity),
		PortfolioCurve: DerivePortfolioCurve(results.Snapshots),
		Trades:         trades,
		Performance:    full,
	}

	logger.Info().
		Str("ticker", results.Symbol).
		Float64("total_return_pct", r.Metrics.TotalReturnPct).
		Int("round_trips", len(trades)).
		Msg("Report assembled")

	return r, nil
}

// Failed builds the error shape: zeroed metrics, empty curves and the message
func Failed(runID, message string) *Report {
	if runID == "" {
		runID = NewRunID()
	}
	logger := logging.GetLogger("report")
	logger.Warn().Str("run_id", runID).Str("error", message).Msg("Run failed")

	return &Report{
		RunID:          runID,
		Status:         StatusFailed,
		ErrorMessage:   &message,
		EquityCurve:    []EquityPoint{},
		DrawdownCurve:  []DrawdownPoint{},
		PortfolioCurve: []PortfolioPoint{},
		Trades:         []RoundTrip{},
	}
}
