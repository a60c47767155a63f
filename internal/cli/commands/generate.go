package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metac-lang/metac/internal/cli/config"
	"github.com/metac-lang/metac/internal/cli/ui"
	"github.com/metac-lang/metac/internal/compiler/codegen"
	"github.com/metac-lang/metac/internal/watch"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var verbose bool
	var watchMode bool
	var modelPath string
	var outputDir string

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Generate artifacts from the meta-model",
		Long: `Load the meta-model, infer the constraints and generate the schema
artifacts into the output directory.

With --watch the command keeps running and regenerates whenever the
meta-model changes.

Examples:
  metac generate
  metac generate --model model.yml --output generated
  metac generate --watch
  metac g --verbose`,
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

			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer logger.Sync()

			runID := uuid.NewString()
			logger = logger.With(zap.String("run_id", runID))

			generate := func() error {
				return generateOnce(cmd, cfg, logger, modelPath, outputDir)
			}

			if !watchMode {
				return generate()
			}

			// The first generation may fail on an invalid model; in watch mode
			// that is not fatal since the next save may fix it.
			if err := generate(); err != nil {
				fmt.Fprint(cmd.ErrOrStderr(),
					ui.Warning(err.Error(), color.NoColor))
			}

			watcher, err := watch.New(modelPath, logger, generate)
			if err != nil {
				return fmt.Errorf("failed to set up the watcher: %w", err)
			}
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to start the watcher: %w", err)
			}
			defer watcher.Stop()

			fmt.Fprint(cmd.OutOrStdout(), ui.Info(
				fmt.Sprintf("Watching %s, press Ctrl+C to stop", modelPath),
				color.NoColor))

			interrupted := make(chan os.Signal, 1)
			signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
			<-interrupted

			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to the meta-model (defaults to model.path from metac.yml)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to generate.output_dir from metac.yml)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Regenerate whenever the meta-model changes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

// generateOnce runs a single load-infer-generate cycle
func generateOnce(
	cmd *cobra.Command,
	cfg *config.Config,
	logger *zap.Logger,
	modelPath string,
	outputDir string,
) error {
	started := time.Now()
	logger.Info("generation started",
		zap.String("model", modelPath),
		zap.String("output", outputDir))

	spinner := ui.NewSpinner(
		cmd.ErrOrStderr(), "Inferring constraints...", color.NoColor)
	spinner.Start()
	result := compileModel(modelPath)
	spinner.Stop()

	if !result.ok() {
		for _, diagnostic := range result.Diagnostics {
			fmt.Fprint(cmd.OutOrStdout(), diagnostic.FormatForTerminal())
		}
		logger.Error("generation aborted",
			zap.Int("diagnostics", len(result.Diagnostics)))
		return fmt.Errorf("the meta-model is invalid; run 'metac check' for details")
	}

	generator := codegen.NewSchemaGenerator(
		result.SymbolTable, result.ConstraintsByClass)

	document, err := generator.Generate(cfg.Generate.Schema.Title)
	if err != nil {
		logger.Error("schema generation failed", zap.Error(err))
		return fmt.Errorf("failed to generate the schema: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create the output directory: %w", err)
	}

	target := filepath.Join(outputDir, cfg.Generate.Schema.Filename)
	if err := os.WriteFile(target, document, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	logger.Info("generation finished",
		zap.String("schema", target),
		zap.Duration("elapsed", time.Since(started)))

	ui.WriteSuccess(cmd.OutOrStdout(),
		fmt.Sprintf("Generated %s (%d classes)",
			target, len(result.SymbolTable.Classes())),
		color.NoColor)
	return nil
}

// newLogger builds the structured logger of the generate command
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
