package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	compilererrors "github.com/metac-lang/metac/compiler/errors"
	"github.com/metac-lang/metac/internal/cli/config"
	"github.com/metac-lang/metac/internal/cli/ui"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var jsonOutput bool
	var modelPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the meta-model",
		Long: `Load the meta-model, parse all the invariants and infer the constraints
without generating anything. All the problems are reported at once.

Examples:
  metac check
  metac check --model model.yml
  metac check --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := modelPath
			if path == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load the configuration: %w", err)
				}
				path = cfg.Model.Path
			}

			result := compileModel(path)

			if jsonOutput {
				encoded, err := json.MarshalIndent(result.Diagnostics, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				if !result.ok() {
					return fmt.Errorf("the meta-model is invalid")
				}
				return nil
			}

			for _, diagnostic := range result.Diagnostics {
				fmt.Fprint(cmd.OutOrStdout(), diagnostic.FormatForTerminal())
			}

			errorCount, warningCount := compilererrors.CountErrors(result.Diagnostics)
			if errorCount > 0 {
				fmt.Fprint(cmd.OutOrStdout(),
					compilererrors.FormatSummary(errorCount, warningCount))
				return fmt.Errorf("the meta-model is invalid")
			}

			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("%s is valid (%d classes, %d constrained primitives)",
					path,
					len(result.SymbolTable.Classes()),
					len(result.SymbolTable.ConstrainedPrimitives())),
				color.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the meta-model (defaults to model.path from metac.yml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the diagnostics as JSON")

	return cmd
}
