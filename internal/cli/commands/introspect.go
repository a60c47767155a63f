package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/metac-lang/metac/internal/cli/config"
	"github.com/metac-lang/metac/internal/cli/ui"
	"github.com/metac-lang/metac/internal/compiler/infer"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// NewIntrospectCommand creates the introspect command
func NewIntrospectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Inspect the meta-model and its inferred constraints",
		Long: `Inspect the loaded meta-model: list its classes or print the
constraints inferred for a single class.

Examples:
  metac introspect classes
  metac introspect constraints Environment`,
	}

	cmd.AddCommand(newIntrospectClassesCommand())
	cmd.AddCommand(newIntrospectConstraintsCommand())

	return cmd
}

func newIntrospectClassesCommand() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the classes of the meta-model",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := introspectCompile(modelPath, cmd)
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(),
				[]string{"CLASS", "PROPERTIES", "INVARIANTS", "CONSTRAINED PROPERTIES"},
				color.NoColor)

			for _, cls := range result.SymbolTable.Classes() {
				constrained := 0
				if constraints := result.ConstraintsByClass[cls]; constraints != nil {
					constrained = len(constraints.Properties)
				}
				table.AddRow(
					cls.Name,
					fmt.Sprintf("%d", len(cls.Properties)),
					fmt.Sprintf("%d", len(cls.Invariants)),
					fmt.Sprintf("%d", constrained))
			}

			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the meta-model (defaults to model.path from metac.yml)")
	return cmd
}

func newIntrospectConstraintsCommand() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "constraints <class>",
		Short: "Print the constraints inferred for a class",
		Long: `Print the merged constraints inferred for a single class: length
bounds, patterns and set restrictions of its properties, including the
constraints inherited from the ancestors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := introspectCompile(modelPath, cmd)
			if err != nil {
				return err
			}

			className := args[0]
			cls := findClass(result.SymbolTable, className)
			if cls == nil {
				candidates := make([]string, 0)
				for _, c := range result.SymbolTable.Classes() {
					candidates = append(candidates, c.Name)
				}
				fmt.Fprint(cmd.OutOrStdout(), ui.ClassNotFoundError(
					className,
					ui.FindSimilar(className, candidates),
					color.NoColor))
				return fmt.Errorf("unknown class %s", className)
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				infer.Dump(result.ConstraintsByClass[cls]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the meta-model (defaults to model.path from metac.yml)")
	return cmd
}

// introspectCompile runs the pipeline and fails loudly on an invalid model
func introspectCompile(modelPath string, cmd *cobra.Command) (*compilation, error) {
	path := modelPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load the configuration: %w", err)
		}
		path = cfg.Model.Path
	}

	result := compileModel(path)
	if !result.ok() {
		for _, diagnostic := range result.Diagnostics {
			fmt.Fprint(cmd.OutOrStdout(), diagnostic.FormatForTerminal())
		}
		return nil, fmt.Errorf("the meta-model is invalid; run 'metac check' for details")
	}
	return result, nil
}

func findClass(symbolTable *model.SymbolTable, name string) *model.Class {
	for _, cls := range symbolTable.Classes() {
		if cls.Name == name {
			return cls
		}
	}
	return nil
}
