// Package reconcile runs the full statement workflow: clean, archive,
// reconcile and report.
package reconcile

import (
	"errors"
	"fmt"

	"fjacquet/card-recon/cmd/common"
	"fjacquet/card-recon/cmd/root"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/validation"

	"github.com/spf13/cobra"
)

var (
	reportFile string
	noArchive  bool
)

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Clean a raw statement and report purchases without a matching payment",
	Long: `Clean a raw card statement (.xls, .xlsx, .csv, .ofx, .qfx) into a timestamped
movements file, archive the raw file and print the reconciliation report.

The -o flag sets the prefix of the cleaned file name.

Example:
  card-recon reconcile -i Estado_de_Cuenta.xls
  card-recon reconcile -i statement.xlsx -o march --report-file march.txt`,
	RunE: reconcileFunc,
}

func init() {
	Cmd.Flags().StringVar(&reportFile, "report-file", "", "Write the report to this file instead of stdout")
	Cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Leave the raw statement in place")
}

func reconcileFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if err := validation.ValidateInputFile(input, validation.StatementExtensions); err != nil {
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

	opts := common.ReconcileOptionsFromConfig(appContainer.GetConfig(), input, root.SharedFlags.Output, noArchive)
	outcome, err := common.NewPipeline(appContainer).Reconcile(opts, w)
	if err != nil {
		return fmt.Errorf("error reconciling %s: %w", input, err)
	}

	root.Log.Info("Reconciliation completed",
		logging.F(logging.FieldRunID, outcome.Report.RunID),
		logging.F(logging.FieldOutputFile, outcome.CleanFile),
		logging.F(logging.FieldArchiveFile, outcome.ArchiveFile))
	return nil
}
