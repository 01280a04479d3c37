package cli

import (
	"fmt"

	"github.com/ridopark/closebt/internal/data"
	"github.com/ridopark/closebt/pkg/config"
	"github.com/ridopark/closebt/pkg/feed"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/spf13/cobra"
)

// newImportCmd copies bars from TimescaleDB into the parquet store
func newImportCmd(a *app) *cobra.Command {
	var window barWindow

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy bars from TimescaleDB into the local parquet store",
		Long: `Copy the bars of one symbol from TimescaleDB into data.parquet_dir so
later runs can use --source parquet without a database.
Example: closebt import --symbol AAPL --start 2020-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.GetLogger("cli")

			if window.source == "" {
				window.source = config.SourceTimescaleDB
			}
			if window.source == config.SourceParquet {
				return fmt.Errorf("import source must not be the parquet store itself")
			}
			bars, err := a.loadBars(ctx, &window)
			if err != nil {
				return err
			}

			timeframe := window.timeframe
			if timeframe == "" {
				timeframe = a.cfg.Data.Timeframe
			}
			var w feed.BarWriter = data.NewParquetProvider(a.cfg.Data.ParquetDir)
			if err := w.WriteBars(ctx, window.ticker(), timeframe, bars); err != nil {
				return err
			}

			logger.Info().
				Str("symbol", window.ticker()).
				Str("timeframe", timeframe).
				Int("bars", len(bars)).
				Str("dir", a.cfg.Data.ParquetDir).
				Msg("Imported bars")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s bars for %s\n", len(bars), timeframe, window.ticker())
			return nil
		},
	}

	window.register(cmd)
	return cmd
}
