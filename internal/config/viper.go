// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/card-recon/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECON_LOG_LEVEL or RECON_INGEST_ROWS_TO_SKIP.
const EnvPrefix = "RECON"

// Columns maps canonical fields to 0-based raw column positions.
type Columns struct {
	Date          int `mapstructure:"date" yaml:"date"`
	CardType      int `mapstructure:"card_type" yaml:"card_type"`
	Description   int `mapstructure:"description" yaml:"description"`
	City          int `mapstructure:"city" yaml:"city"`
	Installments  int `mapstructure:"installments" yaml:"installments"`
	Installments2 int `mapstructure:"installments_2" yaml:"installments_2"`
	Amount        int `mapstructure:"amount" yaml:"amount"`
}

// Max returns the highest configured column index.
func (c Columns) Max() int {
	return max(c.Date, c.CardType, c.Description, c.City, c.Installments, c.Installments2, c.Amount)
}

func (c Columns) indexes() map[string]int {
	return map[string]int{
		"date":           c.Date,
		"card_type":      c.CardType,
		"description":    c.Description,
		"city":           c.City,
		"installments":   c.Installments,
		"installments_2": c.Installments2,
		"amount":         c.Amount,
	}
}

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Ingest struct {
		RowsToSkip int     `mapstructure:"rows_to_skip" yaml:"rows_to_skip"`
		Columns    Columns `mapstructure:"columns" yaml:"columns"`
	} `mapstructure:"ingest" yaml:"ingest"`

	Analysis struct {
		PaymentDescriptions    []string `mapstructure:"payment_descriptions" yaml:"payment_descriptions"`
		SingleInstallmentToken string   `mapstructure:"single_installment_token" yaml:"single_installment_token"`
	} `mapstructure:"analysis" yaml:"analysis"`

	Output struct {
		Directory        string `mapstructure:"directory" yaml:"directory"`
		ArchiveDirectory string `mapstructure:"archive_directory" yaml:"archive_directory"`
		Prefix           string `mapstructure:"prefix" yaml:"prefix"`
		Format           string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"output" yaml:"output"`

	Report struct {
		Format             string `mapstructure:"format" yaml:"format"`
		CurrencySymbol     string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
		ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	} `mapstructure:"report" yaml:"report"`

	Batch struct {
		Workers int `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"batch" yaml:"batch"`
}

// DelimiterRune returns the CSV delimiter as a rune, ',' when unset.
func (c *Config) DelimiterRune() rune {
	if c.CSV.Delimiter == "" {
		return ','
	}
	return []rune(c.CSV.Delimiter)[0]
}

// LoadConfig loads configuration with the precedence
// defaults < config file < RECON_* environment variables.
//
// An empty configFile searches $HOME/.card-recon, .card-recon and the working
// directory for config.yaml, and a missing file is not an error there. An
// explicit configFile must exist and parse.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.card-recon")
		v.AddConfigPath(".card-recon")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	// Layout of the bank's movements export: 18 banner rows, then the table.
	v.SetDefault("ingest.rows_to_skip", 18)
	v.SetDefault("ingest.columns.date", 1)
	v.SetDefault("ingest.columns.card_type", 2)
	v.SetDefault("ingest.columns.description", 4)
	v.SetDefault("ingest.columns.city", 6)
	v.SetDefault("ingest.columns.installments", 7)
	v.SetDefault("ingest.columns.installments_2", 8)
	v.SetDefault("ingest.columns.amount", 10)

	v.SetDefault("analysis.payment_descriptions", []string{"Pago Pesos TAR", "Pago Pesos TEF PAGO NORMAL"})
	v.SetDefault("analysis.single_installment_token", "01/01")

	v.SetDefault("output.directory", "data")
	v.SetDefault("output.archive_directory", "processed-archive")
	v.SetDefault("output.prefix", "cleaned-movements")
	v.SetDefault("output.format", "xlsx")

	v.SetDefault("report.format", "text")
	v.SetDefault("report.currency_symbol", "$")
	v.SetDefault("report.thousands_separator", ".")

	v.SetDefault("batch.workers", 4)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if config.Ingest.RowsToSkip < 0 {
		return fmt.Errorf("ingest.rows_to_skip must not be negative, got: %d", config.Ingest.RowsToSkip)
	}

	for name, idx := range config.Ingest.Columns.indexes() {
		if idx < 0 {
			return fmt.Errorf("ingest.columns.%s must not be negative, got: %d", name, idx)
		}
	}

	if len(config.Analysis.PaymentDescriptions) == 0 {
		return fmt.Errorf("analysis.payment_descriptions must list at least one description")
	}

	if config.Analysis.SingleInstallmentToken == "" {
		return fmt.Errorf("analysis.single_installment_token must not be empty")
	}

	switch config.Output.Format {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("invalid output format: %s (must be 'xlsx' or 'csv')", config.Output.Format)
	}

	switch config.Report.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid report format: %s (must be 'text', 'json' or 'yaml')", config.Report.Format)
	}

	if config.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got: %d", config.Batch.Workers)
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from config.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}
