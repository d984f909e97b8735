package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
	"fifaclean/internal/infrastructure"
)

// Stage is a single in-memory transformation over the dataset.
type Stage interface {
	// ID returns the unique identifier for this stage.
	ID() string

	// Name returns the human-readable name for this stage.
	Name() string

	// Requires returns the columns that must exist in the dataset
	// schema before the stage can run.
	Requires() []string

	// Run mutates the dataset in place.
	Run(ctx context.Context, ds *dataset.Dataset) error
}

// Runner executes stages sequentially, validating each stage's column
// requirements against the live schema before running it.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a stage runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run validates and executes one stage.
func (r *Runner) Run(ctx context.Context, stage Stage, ds *dataset.Dataset) error {
	if missing := missingColumns(stage, ds); len(missing) > 0 {
		return pipeerrors.NewTransformError(stage.ID(),
			fmt.Sprintf("schema contract violated: missing columns [%s]", strings.Join(missing, ", ")),
			nil)
	}

	logger := r.logger
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}

	start := time.Now()
	if err := stage.Run(ctx, ds); err != nil {
		logger.Error("stage failed",
			"stage", stage.ID(),
			"duration", time.Since(start).String(),
			"error", err)
		return err
	}

	logger.Info("stage completed",
		"stage", stage.ID(),
		"duration", time.Since(start).String(),
		"rows", ds.Rows(),
		"columns", ds.NumColumns(),
		"schema_version", ds.Version())
	return nil
}

// missingColumns returns the required columns absent from the schema.
func missingColumns(stage Stage, ds *dataset.Dataset) []string {
	var missing []string
	for _, name := range stage.Requires() {
		if !ds.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
