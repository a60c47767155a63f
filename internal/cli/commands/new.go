package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var newInteractive bool

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// Only allow alphanumeric, dash, and underscore. This also rules out
	// dots, including "..".
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	if !matched {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new metac project",
		Long: `Create a new metac project with a configuration file and a sample
meta-model.

If no project name is provided, you will be prompted to enter one.

Examples:
  metac new my-model
  metac new --interactive`,
		RunE: runNew,
	}

	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Interactive project setup with prompts")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	}

	if projectName == "" {
		prompt := &survey.Input{
			Message: "Project name:",
		}
		if err := survey.AskOne(prompt, &projectName,
			survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	schemaTitle := projectName
	if newInteractive {
		prompt := &survey.Input{
			Message: "Schema title:",
			Default: projectName,
		}
		if err := survey.AskOne(prompt, &schemaTitle); err != nil {
			return err
		}
	}

	if _, err := os.Stat(projectName); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	if err := os.MkdirAll(projectName, 0o755); err != nil {
		return fmt.Errorf("failed to create the project directory: %w", err)
	}

	configContent := fmt.Sprintf(`project_name: %s

model:
  path: model.yml

generate:
  output_dir: generated
  schema:
    title: %s
    filename: schema.json
`, projectName, schemaTitle)

	if err := os.WriteFile(
		filepath.Join(projectName, "metac.yml"),
		[]byte(configContent), 0o644); err != nil {
		return fmt.Errorf("failed to write metac.yml: %w", err)
	}

	if err := os.WriteFile(
		filepath.Join(projectName, "model.yml"),
		[]byte(sampleModel), 0o644); err != nil {
		return fmt.Errorf("failed to write model.yml: %w", err)
	}

	successColor.Fprintf(cmd.OutOrStdout(), "✓ Created project %s\n", projectName)
	infoColor.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	infoColor.Fprintf(cmd.OutOrStdout(), "  cd %s\n", projectName)
	infoColor.Fprintln(cmd.OutOrStdout(), "  metac check")
	infoColor.Fprintln(cmd.OutOrStdout(), "  metac generate")

	return nil
}

const sampleModel = `enumerations:
  - name: Modelling_kind
    literals:
      - name: Template
      - name: Instance

constrained_primitives:
  - name: Non_empty_string
    constrainee: str
    invariants:
      - description: The value must not be empty.
        body: "len(self) >= 1"

verifications:
  - name: matches_id_short
    pattern: "^[a-zA-Z][a-zA-Z0-9_]*$"

classes:
  - name: Referable
    properties:
      - name: id_short
        type: Optional[Non_empty_string]
    invariants:
      - description: ID-short must match the expected pattern.
        body: "not (self.id_short is not None) or matches_id_short(self.id_short)"
      - description: ID-short must be reasonably short.
        body: "not (self.id_short is not None) or len(self.id_short) <= 128"

  - name: Identifiable
    inherits: [Referable]
    properties:
      - name: id
        type: str
      - name: kind
        type: Optional[Modelling_kind]
    invariants:
      - description: The identifier must not be empty.
        body: "len(self.id) >= 1"
`
