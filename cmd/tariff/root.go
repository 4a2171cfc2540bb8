package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gyeh/clinictariff/internal/config"
	"github.com/gyeh/clinictariff/internal/logging"
)

var (
	cfg     = config.Default()
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Clinic tariff pricing toolkit",
	Long: "Prices clinic services from the tariff catalog, builds invoices, keeps patient history, " +
		"and loads priced catalogs into Postgres.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// stringSettings maps persistent flag names to the config fields they set.
var stringSettings = map[string]*string{
	"dsn":          &cfg.DSN,
	"log-format":   &cfg.LogFormat,
	"log-level":    &cfg.LogLevel,
	"catalog":      &cfg.CatalogPath,
	"coefficients": &cfg.CoefficientsPath,
	"history":      &cfg.HistoryPath,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML settings file (or set TARIFF_CONFIG)")
	pf.StringVar(&cfg.DSN, "dsn", cfg.DSN, "Postgres connection string (or set TARIFF_DSN)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn, error")
	pf.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Catalog Parquet file")
	pf.StringVar(&cfg.CoefficientsPath, "coefficients", cfg.CoefficientsPath, "Coefficient settings file")
	pf.StringVar(&cfg.HistoryPath, "history", cfg.HistoryPath, "Patient history JSON file")
	pf.BoolVar(&cfg.FromDB, "from-db", cfg.FromDB, "Load the catalog from the active Postgres version")

	v.SetEnvPrefix("TARIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(pf)
}

// loadConfig layers settings: defaults, then the YAML file, then environment
// (including .env), then explicit flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()

	// Capture env and flag values before the file overwrites the bound fields.
	overrides := make(map[string]string)
	for name := range stringSettings {
		if v.IsSet(name) {
			overrides[name] = v.GetString(name)
		}
	}
	fromDB, fromDBSet := v.GetBool("from-db"), v.IsSet("from-db")

	if cfgFile == "" {
		cfgFile = v.GetString("config")
	}
	if cfgFile != "" {
		if err := cfg.LoadFromFile(cfgFile); err != nil {
			return fmt.Errorf("load %s: %w", cfgFile, err)
		}
	}

	for name, val := range overrides {
		*stringSettings[name] = val
	}
	if fromDBSet {
		cfg.FromDB = fromDB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return logging.SetLevel(cfg.LogLevel)
}
