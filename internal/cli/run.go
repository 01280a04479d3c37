package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/report"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/ridopark/closebt/pkg/strategy/examples"
	"github.com/spf13/cobra"
)

type runOptions struct {
	window      barWindow
	strategy    string
	params      map[string]string
	runID       string
	capital     float64
	commission  float64
	slippageBps float64
	asJSON      bool
}

// newRunCmd creates the run command
func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest one strategy over one symbol",
		Long: `Backtest one strategy over the daily bars of one symbol.
Example: closebt run --symbol AAPL --strategy ma_crossover --param shortPeriod=10 --start 2023-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.EngineConfig()
			if cmd.Flags().Changed("capital") {
				cfg.InitialCapital = opts.capital
			}
			if cmd.Flags().Changed("commission") {
				cfg.CommissionRate = opts.commission
			}
			if cmd.Flags().Changed("slippage-bps") {
				cfg.SlippageRate = backtester.SlippageFromBps(opts.slippageBps)
			}
			return a.runOnce(cmd.Context(), cmd.OutOrStdout(), opts, cfg)
		},
	}

	opts.window.register(cmd)
	cmd.Flags().StringVar(&opts.strategy, "strategy", "buy_and_hold", "Strategy name (see `closebt strategies`)")
	cmd.Flags().StringToStringVar(&opts.params, "param", nil, "Strategy parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.runID, "run-id", "", "Run identifier (random when empty)")
	cmd.Flags().Float64Var(&opts.capital, "capital", 0, "Initial capital (default from config)")
	cmd.Flags().Float64Var(&opts.commission, "commission", 0, "Commission rate as a fraction of notional (default from config)")
	cmd.Flags().Float64Var(&opts.slippageBps, "slippage-bps", 0, "Slippage in basis points (default from config)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full report as JSON")

	return cmd
}

func (a *app) runOnce(ctx context.Context, out io.Writer, opts *runOptions, cfg backtester.Config) error {
	logger := logging.GetLogger("cli")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}
	s, err := examples.DefaultRegistry().Build(opts.strategy, parseParams(opts.params))
	if err != nil {
		return err
	}
	bars, err := a.loadBars(ctx, &opts.window)
	if err != nil {
		return err
	}

	runID := opts.runID
	if runID == "" {
		runID = report.NewRunID()
	}
	rep := a.execute(bars, s, opts.window.ticker(), cfg, runID)

	archive, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
		if err := archive.SaveReport(ctx, opts.strategy, rep); err != nil {
			logger.Error().Err(err).Str("run_id", rep.RunID).Msg("Failed to archive run")
		}
	}

	if opts.asJSON {
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, renderReport(opts.strategy, rep))
	}

	if rep.Status == report.StatusFailed {
		return fmt.Errorf("%w: %s", errRunFailed, *rep.ErrorMessage)
	}
	return nil
}

// execute runs the engine and always returns a report, failed or completed
func (a *app) execute(bars []strategy.Bar, s strategy.Strategy, symbol string, cfg backtester.Config, runID string) *report.Report {
	prepared, err := examples.PrepareBars(bars, s)
	if err != nil {
		return report.Failed(runID, err.Error())
	}

	results, err := backtester.NewEngine(cfg).Run(prepared, s, symbol)
	if err != nil {
		return report.Failed(runID, err.Error())
	}

	rep, err := report.Assemble(results, report.Options{RunID: runID, Performance: a.cfg.ReportOptions()})
	if err != nil {
		return report.Failed(runID, err.Error())
	}
	return rep
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
