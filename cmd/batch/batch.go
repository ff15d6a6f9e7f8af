// Package batch handles batch reconciliation of statement directories
package batch

import (
	"errors"
	"fmt"

	"fjacquet/card-recon/cmd/root"
	"fjacquet/card-recon/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Reconcile every statement in a directory",
	Long: `Reconcile every supported statement (.xls, .xlsx, .csv, .ofx, .qfx) found directly
in the input directory and write one report per statement to the output
directory. Statements are processed concurrently, up to batch.workers at a time.
A statement that fails does not stop the others.

Example:
  card-recon batch -i statements/ -o reports/`,
	RunE: batchFunc,
}

func init() {
	// Override the usage text for the input/output flags in batch context
	Cmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags (for batch, -i/-o refer to directories):
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`)
}

func batchFunc(cmd *cobra.Command, args []string) error {
	inputDir := root.SharedFlags.Input
	if err := validation.ValidateInputDir(inputDir); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return errors.New("container not initialized")
	}

	outputDir := root.SharedFlags.Output
	if outputDir == "" {
		outputDir = appContainer.GetConfig().Output.Directory
	}

	summary, err := appContainer.GetBatchRunner().Run(cmd.Context(), inputDir, outputDir)
	if _, werr := fmt.Fprint(cmd.OutOrStdout(), summary.Text()); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return fmt.Errorf("error during batch reconciliation: %w", err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d statements failed", summary.Failed, len(summary.Files))
	}
	return nil
}
