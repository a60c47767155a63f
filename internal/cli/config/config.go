// Package config loads the project configuration from metac.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the metac project configuration
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Model       ModelConfig    `mapstructure:"model"`
	Generate    GenerateConfig `mapstructure:"generate"`
}

// ModelConfig points to the meta-model source
type ModelConfig struct {
	Path string `mapstructure:"path"`
}

// GenerateConfig configures the generated artifacts
type GenerateConfig struct {
	OutputDir string       `mapstructure:"output_dir"`
	Schema    SchemaConfig `mapstructure:"schema"`
}

// SchemaConfig configures the JSON Schema backend
type SchemaConfig struct {
	Title    string `mapstructure:"title"`
	Filename string `mapstructure:"filename"`
}

// Load loads the configuration from metac.yml or metac.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("model.path", "model.yml")
	v.SetDefault("generate.output_dir", "generated")
	v.SetDefault("generate.schema.title", "Meta-model")
	v.SetDefault("generate.schema.filename", "schema.json")

	// Set config name and paths
	v.SetConfigName("metac")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("METAC")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the current directory is a metac project
func InProject() bool {
	if _, err := os.Stat("metac.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("metac.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for metac.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "metac.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "metac.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a metac project (no metac.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Model.Path) == "" {
		return fmt.Errorf("model.path must not be empty")
	}
	if strings.TrimSpace(cfg.Generate.OutputDir) == "" {
		return fmt.Errorf("generate.output_dir must not be empty")
	}
	if filepath.IsAbs(cfg.Generate.Schema.Filename) {
		return fmt.Errorf("generate.schema.filename must be relative, got: %s",
			cfg.Generate.Schema.Filename)
	}
	return nil
}
