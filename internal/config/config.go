package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	pipeerrors "fifaclean/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PipelineConfig contains the pipeline input/output configuration.
type PipelineConfig struct {
	// InputDB is the SQLite store holding Player_Attributes and Player.
	InputDB string `yaml:"input_db" validate:"required"`
	// OutputDB is the SQLite store the cleaned table is written to.
	// The CSV copy and profile workbook paths are derived from it.
	OutputDB string `yaml:"output_db" validate:"required"`
	// OutputTable is the name of the cleaned table.
	OutputTable string `yaml:"output_table" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"required,oneof=debug info warn warning error"`
	Output   string `yaml:"output" validate:"required,oneof=console file both"`
	FilePath string `yaml:"file_path" validate:"required"`
}

// Default returns the configuration used when no config file exists.
// The paths match the layout the pipeline was designed around: raw data
// under data/raw, processed artifacts under data/processed/dia1.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputDB:     "data/raw/database.sqlite",
			OutputDB:    "data/processed/dia1/datos_limpios.sqlite",
			OutputTable: "datos_limpios",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "file",
			FilePath: "logs/cleaner.log",
		},
	}
}

// Load loads configuration from a YAML file layered over the defaults.
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case stderrors.Is(err, os.ErrNotExist):
			// No config file, pure defaults.
		case err != nil:
			return nil, pipeerrors.NewConfigError(
				fmt.Sprintf("failed to read config file %s", path), err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, pipeerrors.NewConfigError(
					fmt.Sprintf("failed to parse config file %s", path), err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and returns a config error listing
// every failing field.
func (c *Config) Validate() error {
	v := validator.New()
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return pipeerrors.NewConfigError("config validation failed", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return pipeerrors.NewConfigError(strings.Join(msgs, "; "), err)
}

// formatFieldError formats a single validation failure.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
