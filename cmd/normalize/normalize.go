// Package normalize converts a raw statement into a cleaned movements file.
package normalize

import (
	"errors"
	"fmt"
	"time"

	"fjacquet/card-recon/cmd/common"
	"fjacquet/card-recon/cmd/root"
	"fjacquet/card-recon/internal/fileutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:   "normalize",
	Short: "Convert a raw statement into a cleaned movements file",
	Long: `Convert a raw card statement into the cleaned movements layout without
reconciling it. The extension of -o (.xlsx or .csv) selects the output format;
without -o a timestamped file is written to the configured output directory.

Example:
  card-recon normalize -i Estado_de_Cuenta.xls -o movements.csv`,
	RunE: normalizeFunc,
}

func normalizeFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if err := validation.ValidateInputFile(input, validation.StatementExtensions); err != nil {
		return err
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		return errors.New("container not initialized")
	}
	cfg := appContainer.GetConfig()

	output := root.SharedFlags.Output
	if output == "" {
		output = fileutils.CleanOutputPath(cfg.Output.Directory, "", cfg.Output.Prefix, cfg.Output.Format, fileutils.Timestamp(time.Now()))
	} else if !validation.HasExtension(output, validation.CleanExtensions) {
		return fmt.Errorf("output file %s must end in .xlsx or .csv", output)
	}

	stats, err := common.NewPipeline(appContainer).Normalize(input, output)
	if err != nil {
		return fmt.Errorf("error normalizing %s: %w", input, err)
	}

	root.Log.Info("Normalization completed",
		logging.F(logging.FieldOutputFile, output),
		logging.F(logging.FieldCount, stats.RowsKept))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}
