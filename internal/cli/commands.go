package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ridopark/closebt/internal/data"
	"github.com/ridopark/closebt/internal/store"
	"github.com/ridopark/closebt/pkg/config"
	"github.com/ridopark/closebt/pkg/feed"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/strategy"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// errRunFailed marks a run whose failed report was already rendered
var errRunFailed = errors.New("backtest failed")

// app carries the configuration resolved by the root command
type app struct {
	configPath string
	envFiles   []string
	cfg        *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "closebt",
		Short: "closebt - market-on-close daily backtester",
		Long: `closebt replays daily bars through a long-only strategy, filling every
signal at the closing price of the bar that produced it, and reports
returns, risk ratios, curves and round-trip trades.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newBatchCmd(a))
	rootCmd.AddCommand(newStrategiesCmd())
	rootCmd.AddCommand(newRunsCmd(a))
	rootCmd.AddCommand(newImportCmd(a))

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().StringSliceVar(&a.envFiles, "env", nil, "Environment files to load (default .env)")

	return rootCmd
}

// init loads env files and configuration, then sets up logging
func (a *app) init() error {
	envErr := config.LoadDotEnv(a.envFiles...)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logging.Initialize(cfg.Logging)
	logger := logging.GetLogger("cli")
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("Could not load .env file, using system environment variables")
	} else {
		logger.Debug().Msg("Successfully loaded .env file")
	}
	return nil
}

// openProvider connects to the configured bar source
func (a *app) openProvider(ctx context.Context, source string) (feed.HistoricalDataProvider, error) {
	switch source {
	case config.SourceParquet:
		return data.NewParquetProvider(a.cfg.Data.ParquetDir), nil
	case config.SourceTimescaleDB:
		pg := a.cfg.Postgres
		connStr := data.ConnectionString(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode)
		provider, err := data.NewTimescaleDBProvider(ctx, connStr)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", source)
	}
}

// openStore opens the run archive, or returns nil when archiving is off
func (a *app) openStore(ctx context.Context) (*store.RunStore, error) {
	if a.cfg.Storage.SQLitePath == "" {
		return nil, nil
	}
	return store.NewRunStore(ctx, a.cfg.Storage.SQLitePath)
}

// barWindow holds the shared bar selection flags
type barWindow struct {
	symbol    string
	start     string
	end       string
	source    string
	timeframe string
}

func (w *barWindow) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.symbol, "symbol", "", "Instrument to backtest, e.g. AAPL")
	cmd.Flags().StringVar(&w.start, "start", "", "First date (YYYY-MM-DD), open when empty")
	cmd.Flags().StringVar(&w.end, "end", "", "Last date (YYYY-MM-DD, inclusive), today when empty")
	cmd.Flags().StringVar(&w.source, "source", "", "Bar source: parquet or timescaledb (default from config)")
	cmd.Flags().StringVar(&w.timeframe, "timeframe", "", "Bar timeframe (default from config)")
	_ = cmd.MarkFlagRequired("symbol")
}

// ticker returns the normalised symbol
func (w *barWindow) ticker() string {
	return strings.ToUpper(strings.TrimSpace(w.symbol))
}

// dates parses the window. The end date includes its whole day and
// defaults to now.
func (w *barWindow) dates() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if w.start != "" {
		if start, err = time.Parse(dateLayout, w.start); err != nil {
			return start, end, fmt.Errorf("invalid start date, use YYYY-MM-DD: %w", err)
		}
	}
	if w.end != "" {
		if end, err = time.Parse(dateLayout, w.end); err != nil {
			return start, end, fmt.Errorf("invalid end date, use YYYY-MM-DD: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	} else {
		end = time.Now().UTC()
	}
	return start, end, nil
}

// loadBars reads the window from the configured (or overridden) source
func (a *app) loadBars(ctx context.Context, w *barWindow) ([]strategy.Bar, error) {
	start, end, err := w.dates()
	if err != nil {
		return nil, err
	}
	source := w.source
	if source == "" {
		source = a.cfg.Data.Source
	}
	timeframe := w.timeframe
	if timeframe == "" {
		timeframe = a.cfg.Data.Timeframe
	}
	provider, err := a.openProvider(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to create data provider: %w", err)
	}
	defer provider.Close()

	return feed.NewHistoricalFeed(provider, w.ticker(), timeframe, start, end).Load(ctx)
}

// parseParams turns key=value flags into strategy parameters. Numbers are
// decoded so the registry factories can read them.
func parseParams(raw map[string]string) map[string]interface{} {
	params := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if i, err := strconv.Atoi(v); err == nil {
			params[k] = i
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = f
		} else {
			params[k] = v
		}
	}
	return params
}
