// Package analyze reconciles an existing cleaned movements file.
package analyze

import (
	"errors"
	"fmt"

	"fjacquet/card-recon/cmd/common"
	"fjacquet/card-recon/cmd/root"
	"fjacquet/card-recon/internal/validation"

	"github.com/spf13/cobra"
)

var reportFile string

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconcile a cleaned movements file",
	Long: `Reconcile a cleaned movements file (.xlsx or .csv, as written by normalize or
reconcile) and print the report.

Example:
  card-recon analyze -i data/cleaned-movements_2025-02-03_140509.xlsx`,
	RunE: analyzeFunc,
}

func init() {
	Cmd.Flags().StringVar(&reportFile, "report-file", "", "Write the report to this file instead of stdout")
}

func analyzeFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if err := validation.ValidateInputFile(input, validation.CleanExtensions); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return errors.New("container not initialized")
	}

	w, err := common.OpenReportWriter(reportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			root.Log.WithError(cerr).Warn("Failed to close report file")
		}
	}()

	if _, err := common.NewPipeline(appContainer).Analyze(input, appContainer.GetConfig().Report.Format, w); err != nil {
		return fmt.Errorf("error analyzing %s: %w", input, err)
	}
	return nil
}
