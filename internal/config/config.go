package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tariff type names accepted as the default billing mode.
var tariffTypes = []string{"insured", "private", "government"}

// Clinic is the practice profile printed on invoices.
type Clinic struct {
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	Phone   string `yaml:"phone" json:"phone"`
	Doctor  string `yaml:"doctor" json:"doctor"`
}

// Config holds all runtime configuration for a tariff run.
type Config struct {
	DSN              string
	LogFormat        string // "text" or "json"
	LogLevel         string
	Listen           string
	CatalogPath      string
	CoefficientsPath string
	HistoryPath      string
	BackupDir        string
	OutputPath       string
	DefaultTariff    string
	Clinic           Clinic

	// FromDB loads the catalog from the active Postgres version instead of
	// CatalogPath.
	FromDB bool

	// Catalog import switches.
	ActivateVersion bool
	Force           bool
	DryRun          bool
}

// Default returns the configuration used when nothing else is given.
func Default() Config {
	return Config{
		LogFormat:        "text",
		LogLevel:         "info",
		Listen:           ":8080",
		CatalogPath:      "tariff.parquet",
		CoefficientsPath: "coefficients.yaml",
		HistoryPath:      "patient_records.json",
		BackupDir:        "backups",
		DefaultTariff:    "insured",
		ActivateVersion:  true,
	}
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	DSN           string `yaml:"dsn"`
	LogFormat     string `yaml:"log_format"`
	LogLevel      string `yaml:"log_level"`
	Listen        string `yaml:"listen"`
	Catalog       string `yaml:"catalog"`
	Coefficients  string `yaml:"coefficients"`
	History       string `yaml:"history"`
	BackupDir     string `yaml:"backup_dir"`
	DefaultTariff string `yaml:"default_tariff"`
	Clinic        Clinic `yaml:"clinic"`
}

// LoadFromFile reads a YAML settings file and merges its non-empty values
// into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	merge(&c.DSN, yc.DSN)
	merge(&c.LogFormat, yc.LogFormat)
	merge(&c.LogLevel, yc.LogLevel)
	merge(&c.Listen, yc.Listen)
	merge(&c.CatalogPath, yc.Catalog)
	merge(&c.CoefficientsPath, yc.Coefficients)
	merge(&c.HistoryPath, yc.History)
	merge(&c.BackupDir, yc.BackupDir)
	merge(&c.DefaultTariff, yc.DefaultTariff)
	merge(&c.Clinic.Name, yc.Clinic.Name)
	merge(&c.Clinic.Address, yc.Clinic.Address)
	merge(&c.Clinic.Phone, yc.Clinic.Phone)
	merge(&c.Clinic.Doctor, yc.Clinic.Doctor)
	return c.Validate()
}

func merge(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	for _, t := range tariffTypes {
		if c.DefaultTariff == t {
			return nil
		}
	}
	return fmt.Errorf("unknown default tariff %q (want one of %s)", c.DefaultTariff, strings.Join(tariffTypes, ", "))
}

// ValidateCatalog checks that the catalog file is set and readable.
func (c *Config) ValidateCatalog() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("--catalog is required")
	}
	if _, err := os.Stat(c.CatalogPath); err != nil {
		return fmt.Errorf("catalog not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks both catalog and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.ValidateCatalog(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or TARIFF_DSN is required")
	}
	return nil
}
