package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/report"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/ridopark/closebt/pkg/strategy/examples"
	"golang.org/x/sync/errgroup"
)

// Variant is one strategy configuration to run over the shared bars
type Variant struct {
	Name     string
	Strategy strategy.Strategy
}

// Outcome is the result of one variant. Err is set, and Report has the
// failed shape, when the run itself could not produce results.
type Outcome struct {
	Variant string
	Results *backtester.Results
	Report  *report.Report
	Err     error
}

// Options configures a batch
type Options struct {
	Symbol  string
	Config  backtester.Config
	Report  report.Options
	Workers int // defaults to GOMAXPROCS
}

// Run executes every variant over bars in parallel. Each run owns its own
// portfolio and bars is only read, so variants never share mutable state.
// Outcomes are returned in variant order. Only cancellation of ctx fails
// the batch as a whole; cancellation is observed between runs.
func Run(ctx context.Context, bars []strategy.Bar, variants []Variant, opts Options) ([]Outcome, error) {
	logger := logging.GetLogger("batch")

	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	engine := backtester.NewEngine(opts.Config)
	outcomes := make([]Outcome, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range variants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = runVariant(engine, bars, v, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	logger.Info().
		Str("symbol", opts.Symbol).
		Int("variants", len(variants)).
		Int("failed", failed).
		Int("workers", workers).
		Msg("Batch complete")

	return outcomes, nil
}

func runVariant(engine *backtester.Engine, bars []strategy.Bar, v Variant, opts Options) Outcome {
	out := Outcome{Variant: v.Name}
	reportOpts := opts.Report
	reportOpts.RunID = ""

	if v.Strategy == nil {
		out.Err = errors.New("variant has no strategy")
		out.Report = report.Failed("", out.Err.Error())
		return out
	}

	prepared, err := examples.PrepareBars(bars, v.Strategy)
	if err != nil {
		out.Err = fmt.Errorf("preparing bars for %s: %w", v.Name, err)
		out.Report = report.Failed("", out.Err.Error())
		return out
	}

	res, err := engine.Run(prepared, v.Strategy, opts.Symbol)
	if err != nil {
		out.Err = err
		out.Report = report.Failed("", err.Error())
		return out
	}
	out.Results = res

	rep, err := report.Assemble(res, reportOpts)
	if err != nil {
		out.Err = err
		out.Report = report.Failed("", err.Error())
		return out
	}
	out.Report = rep
	return out
}

// VariantsFromConfigs builds variants from strategy configs through reg.
// A config without a name is rejected.
func VariantsFromConfigs(reg *strategy.Registry, configs []strategy.StrategyConfig) ([]Variant, error) {
	variants := make([]Variant, 0, len(configs))
	for i, c := range configs {
		if c.Name == "" {
			return nil, fmt.Errorf("strategy config %d has no name", i)
		}
		s, err := reg.Build(c.Name, c.Parameters)
		if err != nil {
			return nil, err
		}
		variants = append(variants, Variant{
			Name:     fmt.Sprintf("%s#%d", c.Name, i),
			Strategy: s,
		})
	}
	return variants, nil
}
