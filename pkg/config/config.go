package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/ridopark/closebt/pkg/backtester"
	"github.com/ridopark/closebt/pkg/logging"
	"github.com/ridopark/closebt/pkg/performance"
	"github.com/ridopark/closebt/pkg/strategy"
	"gopkg.in/yaml.v3"
)

// Data sources
const (
	SourceParquet     = "parquet"
	SourceTimescaleDB = "timescaledb"
)

// Config is the top-level configuration of the backtester
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Report   ReportConfig   `yaml:"report"`
	Data     DataConfig     `yaml:"data"`
	Postgres PostgresConfig `yaml:"postgres"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  logging.Config `yaml:"logging"`
	Batch    BatchConfig    `yaml:"batch"`
}

// BacktestConfig holds the simulation knobs. SlippageBps, when set, wins
// over SlippageRate.
type BacktestConfig struct {
	InitialCapital float64  `yaml:"initial_capital"`
	CommissionRate float64  `yaml:"commission_rate"`
	SlippageRate   float64  `yaml:"slippage_rate"`
	SlippageBps    *float64 `yaml:"slippage_bps"`
}

// ReportConfig controls ratio annualisation in reports
type ReportConfig struct {
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
	PeriodsPerYear int     `yaml:"periods_per_year"`
}

// DataConfig selects where bars come from
type DataConfig struct {
	Source     string `yaml:"source"`
	ParquetDir string `yaml:"parquet_dir"`
	Timeframe  string `yaml:"timeframe"`
}

// PostgresConfig holds the TimescaleDB connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// StorageConfig holds the run archive location. An empty path disables it.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// BatchConfig lists the variants of a batch run
type BatchConfig struct {
	Workers    int                       `yaml:"workers"`
	Strategies []strategy.StrategyConfig `yaml:"strategies"`
}

// Default returns the configuration used when no file is given. Runs
// started from configuration carry no slippage unless slippage_rate or
// slippage_bps is set.
func Default() *Config {
	bt := backtester.DefaultConfig()
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: bt.InitialCapital,
			CommissionRate: bt.CommissionRate,
			SlippageRate:   0.0,
		},
		Report: ReportConfig{
			RiskFreeRate:   0.0,
			PeriodsPerYear: performance.TradingDaysPerYear,
		},
		Data: DataConfig{
			Source:     SourceParquet,
			ParquetDir: "data",
			Timeframe:  "1d",
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "trading_data",
			SSLMode: "disable",
		},
		Logging: logging.DefaultConfig(),
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are reported but leave the environment untouched.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and finally environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	setFloat := func(key string, dst *float64) {
		if v, ok, err := getEnvFloat(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok, err := getEnvInt(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok, err := getEnvBool(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setFloat("INITIAL_CAPITAL", &cfg.Backtest.InitialCapital)
	setFloat("COMMISSION_RATE", &cfg.Backtest.CommissionRate)
	setFloat("SLIPPAGE_RATE", &cfg.Backtest.SlippageRate)
	if v, ok, err := getEnvFloat("SLIPPAGE_BPS"); err != nil {
		errs = append(errs, err)
	} else if ok {
		cfg.Backtest.SlippageBps = &v
	}
	setFloat("RISK_FREE_RATE", &cfg.Report.RiskFreeRate)

	setString("DATA_SOURCE", &cfg.Data.Source)
	setString("PARQUET_DIR", &cfg.Data.ParquetDir)
	setString("TIMEFRAME", &cfg.Data.Timeframe)

	setString("POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("POSTGRES_PORT", &cfg.Postgres.Port)
	setString("POSTGRES_USER", &cfg.Postgres.User)
	setString("POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("POSTGRES_DB", &cfg.Postgres.DBName)
	setString("POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)

	setString("SQLITE_PATH", &cfg.Storage.SQLitePath)
	setInt("BATCH_WORKERS", &cfg.Batch.Workers)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = logging.LogLevel(v)
	}
	setBool("LOG_PRETTY", &cfg.Logging.Pretty)
	setBool("LOG_TO_FILE", &cfg.Logging.EnableFile)
	setString("LOG_DIR", &cfg.Logging.LogDir)
	setString("LOG_FILE", &cfg.Logging.LogFileName)

	return errors.Join(errs...)
}

// EngineConfig returns the immutable engine configuration
func (c *Config) EngineConfig() backtester.Config {
	slippage := c.Backtest.SlippageRate
	if c.Backtest.SlippageBps != nil {
		slippage = backtester.SlippageFromBps(*c.Backtest.SlippageBps)
	}
	return backtester.Config{
		InitialCapital: c.Backtest.InitialCapital,
		CommissionRate: c.Backtest.CommissionRate,
		SlippageRate:   slippage,
	}
}

// ReportOptions returns the analyzer options for reports
func (c *Config) ReportOptions() performance.ReportOptions {
	return performance.ReportOptions{
		RiskFreeRate:   c.Report.RiskFreeRate,
		PeriodsPerYear: c.Report.PeriodsPerYear,
	}
}

// Validate reports every invalid field at once
func (c *Config) Validate() error {
	errs := []error{c.EngineConfig().Validate()}

	if c.Backtest.SlippageBps != nil && *c.Backtest.SlippageBps < 0 {
		errs = append(errs, fmt.Errorf("slippage_bps must be >= 0, got %v", *c.Backtest.SlippageBps))
	}
	if c.Report.PeriodsPerYear <= 0 {
		errs = append(errs, fmt.Errorf("periods_per_year must be > 0, got %d", c.Report.PeriodsPerYear))
	}
	switch c.Data.Source {
	case SourceParquet:
		if c.Data.ParquetDir == "" {
			errs = append(errs, errors.New("parquet_dir is required for the parquet source"))
		}
	case SourceTimescaleDB:
		if c.Postgres.Host == "" || c.Postgres.DBName == "" {
			errs = append(errs, errors.New("postgres host and dbname are required for the timescaledb source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown data source %q", c.Data.Source))
	}
	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Errorf("batch workers must be >= 0, got %d", c.Batch.Workers))
	}

	return errors.Join(errs...)
}

func getEnvFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

func getEnvInt(key string) (int, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}
