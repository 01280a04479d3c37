package backtester

import (
	"errors"

	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/rs/zerolog"
)

// ErrNoTradesExecuted is returned when a run recorded no snapshots at all,
// i.e. the bar sequence was empty or every close was missing.
var ErrNoTradesExecuted = errors.New("No trades executed")

// Engine runs single-instrument simulations. It holds only read-only
// configuration, so one Engine may serve concurrent runs.
type Engine struct {
	config Config
	broker *Broker
	logger zerolog.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg Config) *Engine {
	return &Engine{
		config: cfg,
		broker: NewBroker(cfg.CommissionRate, cfg.SlippageRate),
		logger: logging.GetLogger("backtester"),
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run walks bars in order and applies the source's signals.
//
// Execution is market-on-close: the signal for bar T may read T's own close
// and fills at that same close. This look-ahead is intentional.
//
// Bars without a finite close are skipped entirely. A buy spends all cash
// on whole units, a sell liquidates the full position, and every other
// combination is a no-op. One snapshot is recorded per processed bar.
func (e *Engine) Run(bars []strategy.Bar, source strategy.SignalSource, symbol string) (*Results, error) {
	e.logger.Info().
		Str("symbol", symbol).
		Int("bars", len(bars)).
		Float64("initial_capital", e.config.InitialCapital).
		Msg("Running backtest")

	portfolio := NewPortfolio(e.config.InitialCapital)
	skipped := 0

	for _, bar := range bars {
		if !bar.HasPrice() {
			skipped++
			continue
		}
		price := bar.Close

		switch source.Evaluate(bar) {
		case strategy.ActionBuy:
			if portfolio.GetCash() > 0 {
				if trade := e.broker.Buy(symbol, bar.Timestamp, price, portfolio.GetCash()); trade != nil {
					portfolio.ApplyBuy(*trade)
					e.logger.Debug().
						Time("date", bar.Timestamp).
						Int64("quantity", trade.Quantity).
						Float64("effective_price", trade.EffectivePrice).
						Msg("BUY")
				}
			}
		case strategy.ActionSell:
			if portfolio.GetPosition() > 0 {
				trade := e.broker.Sell(symbol, bar.Timestamp, price, portfolio.GetPosition())
				portfolio.ApplySell(*trade)
				e.logger.Debug().
					Time("date", bar.Timestamp).
					Int64("quantity", trade.Quantity).
					Float64("effective_price", trade.EffectivePrice).
					Msg("SELL")
			}
		}

		portfolio.Record(bar.Timestamp, price)
	}

	if len(portfolio.GetSnapshots()) == 0 {
		e.logger.Warn().Str("symbol", symbol).Int("skipped", skipped).Msg("No bars with a valid price")
		return nil, ErrNoTradesExecuted
	}

	results := newResults(symbol, e.config.InitialCapital, portfolio.GetTrades(), portfolio.GetSnapshots())
	results.BarsSkipped = skipped

	e.logger.Info().
		Str("symbol", symbol).
		Float64("total_return_pct", results.TotalReturnPct).
		Int("trades", results.NumTrades).
		Float64("win_rate", results.WinRate).
		Msg("Backtest complete")

	return results, nil
}
