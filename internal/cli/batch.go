package cli

import (
	"fmt"
	"os"

	"github.com/ridopark/closebt/pkg/batch"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/report"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/ridopark/closebt/pkg/strategy/examples"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newBatchCmd creates the batch command
func newBatchCmd(a *app) *cobra.Command {
	var (
		window   barWindow
		variants string
		workers  int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Backtest many strategy variants over one symbol in parallel",
		Long: `Backtest every strategy variant listed under batch.strategies in the
configuration, or in a separate YAML list given with --variants.
Example: closebt batch --symbol AAPL --variants grid.yaml --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.GetLogger("cli")

			configs := a.cfg.Batch.Strategies
			if variants != "" {
				loaded, err := loadVariantFile(variants)
				if err != nil {
					return err
				}
				configs = loaded
			}
			if len(configs) == 0 {
				return fmt.Errorf("no strategy variants configured")
			}
			vs, err := batch.VariantsFromConfigs(examples.DefaultRegistry(), configs)
			if err != nil {
				return err
			}

			bars, err := a.loadBars(ctx, &window)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Batch.Workers
			}
			outcomes, err := batch.Run(ctx, bars, vs, batch.Options{
				Symbol:  window.ticker(),
				Config:  a.cfg.EngineConfig(),
				Report:  report.Options{Performance: a.cfg.ReportOptions()},
				Workers: workers,
			})
			if err != nil {
				return err
			}

			archive, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if archive != nil {
				defer archive.Close()
				for i, o := range outcomes {
					if err := archive.SaveReport(ctx, configs[i].Name, o.Report); err != nil {
						logger.Error().Err(err).Str("variant", o.Variant).Msg("Failed to archive run")
					}
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				reports := make(map[string]any, len(outcomes))
				for _, o := range outcomes {
					reports[o.Variant] = o.Report
				}
				return writeJSON(out, reports)
			}
			fmt.Fprintln(out, renderBatch(window.ticker(), outcomes))
			return nil
		},
	}

	window.register(cmd)
	cmd.Flags().StringVar(&variants, "variants", "", "YAML file with a list of {name, parameters} strategy configs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel runs (default from config, then GOMAXPROCS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print every report as JSON keyed by variant")

	return cmd
}

func loadVariantFile(path string) ([]strategy.StrategyConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variants %s: %w", path, err)
	}
	var configs []strategy.StrategyConfig
	if err := yaml.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse variants %s: %w", path, err)
	}
	return configs, nil
}
