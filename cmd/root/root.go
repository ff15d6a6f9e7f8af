// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/card-recon/internal/config"
	"fjacquet/card-recon/internal/container"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/validation"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands. It is replaced by the
	// configured logger once the root command has initialized.
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the configuration loaded for the running command.
	AppConfig *config.Config

	appContainer *container.Container

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Configuration flags
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	ReportFormat string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "card-recon",
		Short: "Reconcile credit card purchases against the payments that settle them.",
		Long: `card-recon cleans a credit card statement export and lists the single-installment
purchases that no payment of the same amount settles, together with the totals
of payments and purchases.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: initialize,
	}
)

func init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file, prefix or directory")

	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default searches $HOME/.card-recon, .card-recon and .)")
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "Log format (text, json)")
	Cmd.PersistentFlags().StringVar(&ReportFormat, "report-format", "", "Report format (text, json, yaml)")
}

// initialize loads the configuration, applies flag overrides and wires the
// container used by the subcommands.
func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Log.Format = LogFormat
	}
	if ReportFormat != "" {
		if err := validation.IsValidReportFormat(ReportFormat); err != nil {
			return err
		}
		cfg.Report.Format = ReportFormat
	}

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	appContainer = c
	Log = c.GetLogger()
	Log.Debug("Configuration loaded",
		logging.F("command", cmd.Name()),
		logging.F(logging.FieldFormat, cfg.Report.Format))
	return nil
}

// GetContainer returns the container built for the running command, or nil
// before initialization.
func GetContainer() *container.Container {
	return appContainer
}
