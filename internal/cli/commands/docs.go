package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/metac-lang/metac/internal/cli/config"
	"github.com/metac-lang/metac/internal/cli/ui"
	"github.com/metac-lang/metac/internal/compiler/codegen"
)

// NewDocsCommand creates the docs command
func NewDocsCommand() *cobra.Command {
	var modelPath string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate a Markdown reference of the meta-model",
		Long: `Load the meta-model, infer the constraints and render a Markdown
reference of the enumerations, constrained primitives and classes.

Examples:
  metac docs
  metac docs --model model.yml --output generated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load the configuration: %w", err)
			}

			if modelPath == "" {
				modelPath = cfg.Model.Path
			}
			if outputDir == "" {
				outputDir = cfg.Generate.OutputDir
			}

			result := compileModel(modelPath)
			if !result.ok() {
				for _, diagnostic := range result.Diagnostics {
					fmt.Fprint(cmd.OutOrStdout(), diagnostic.FormatForTerminal())
				}
				return fmt.Errorf("the meta-model is invalid; run 'metac check' for details")
			}

			generator := codegen.NewMarkdownGenerator(
				result.SymbolTable, result.ConstraintsByClass)
			document := generator.Generate(cfg.Generate.Schema.Title)

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create the output directory: %w", err)
			}

			target := filepath.Join(outputDir, "model.md")
			if err := os.WriteFile(target, document, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}

			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Generated %s", target), color.NoColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the meta-model (defaults to model.path from metac.yml)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to generate.output_dir from metac.yml)")

	return cmd
}
