package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bph/rate-engine/config"
	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
	"github.com/bph/rate-engine/fixtures"
	"github.com/bph/rate-engine/store/postgres"
	"github.com/bph/rate-engine/store/sqlite"
)

var (
	cfg     config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "ratesd",
	Short: "Workers' compensation rate resolution engine",
	Long: "Resolves payment rates for medical procedures: Medicare allowed amounts " +
		"(ZIP locality, GPCI, RVU, conversion factor) and state fee-schedule rates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		// Flags set on the command line win over the file.
		fileCfg := config.Default()
		if err := fileCfg.LoadFromFile(cfgFile); err != nil {
			return err
		}
		applyUnlessSet(cmd, &fileCfg)
		return nil
	},
}

func init() {
	cfg = config.Default()
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DSN = dsn
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to YAML config file")
	pf.StringVar(&cfg.Driver, "driver", cfg.Driver, "Store driver: sqlite or postgres")
	pf.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	pf.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
}

// applyUnlessSet copies file values into cfg for every field whose flag
// the user did not set explicitly.
func applyUnlessSet(cmd *cobra.Command, fileCfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("driver") {
		cfg.Driver = fileCfg.Driver
	}
	if !flags.Changed("db") {
		cfg.DBPath = fileCfg.DBPath
	}
	if !flags.Changed("dsn") {
		cfg.DSN = fileCfg.DSN
	}
	if !flags.Changed("log-format") {
		cfg.LogFormat = fileCfg.LogFormat
	}
	if !flags.Changed("addr") {
		cfg.Addr = fileCfg.Addr
	}
	cfg.ShutdownTimeout = fileCfg.ShutdownTimeout
	cfg.SeedDemo = cfg.SeedDemo || fileCfg.SeedDemo
}

// dataStore is the full surface both store backends provide.
type dataStore interface {
	engine.ReferenceStore
	feeschedule.RateStore
	feeschedule.Catalog
	fixtures.Loader
}

// openStore connects the configured backend.
func openStore(ctx context.Context) (dataStore, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Driver {
	case "postgres":
		st, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		st, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
