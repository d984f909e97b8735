package cleaning

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"fifaclean/internal/config"
	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
	"fifaclean/internal/exporter"
	"fifaclean/internal/store"
)

// Result summarizes one pipeline run.
type Result struct {
	Rows              int
	Columns           int
	FinalNulls        int
	NullsBefore       int
	NullsAfter        int
	NullReduction     float64
	Positions         map[Position]int
	InferenceFailures int
	NormalizedColumns int
	EligibleColumns   int
	Clipped           map[string]int
	DerivedCreated    []string
	OutputDB          string
	OutputCSV         string
	ProfileWorkbook   string
}

// Pipeline runs the eight cleaning stages end to end. Progress is
// printed to out as a human-readable report; structured detail goes to
// the logger.
type Pipeline struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	out    io.Writer
}

// NewPipeline wires a pipeline from its configuration.
func NewPipeline(cfg *config.Config, paths *config.Paths, logger *slog.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{cfg: cfg, paths: paths, logger: logger, out: out}
}

// Run executes the full pipeline. It returns a terminal error on load,
// contract, or save failures; per-record and per-column failures are
// recovered inside the stages.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.printf("Football player data cleaning\n")
	p.printf("%s\n", strings.Repeat("=", 40))

	p.printf("\n1. Loading data...\n")
	attributes, identities, err := NewLoader(p.paths.InputDB).Load(ctx)
	if err != nil {
		return nil, err
	}
	p.printf("   Loaded: %d rows, %d columns\n", attributes.Rows(), attributes.NumColumns())

	runner := NewRunner(p.logger)
	result := &Result{
		OutputDB:        p.paths.OutputDB,
		OutputCSV:       p.paths.OutputCSV,
		ProfileWorkbook: p.paths.ProfileWorkbook,
	}

	p.printf("\n2. Preparing data...\n")
	merge := NewMergeStage(identities)
	if err := runner.Run(ctx, merge, attributes); err != nil {
		return nil, err
	}
	result.Positions = merge.Distribution
	result.InferenceFailures = merge.Failures
	p.printf("   Inferred positions: %s\n", formatDistribution(merge.Distribution))

	p.printf("\n3. Treating null values...\n")
	impute := NewImputeStage()
	if err := runner.Run(ctx, impute, attributes); err != nil {
		return nil, err
	}
	result.NullsBefore = impute.NullsBefore
	result.NullsAfter = impute.NullsAfter
	result.NullReduction = impute.Reduction()
	p.printf("   Nulls removed: %d -> %d (%.1f%% reduction)\n",
		impute.NullsBefore, impute.NullsAfter, impute.Reduction())

	p.printf("\n4. Creating derived variables...\n")
	features := NewFeatureStage()
	if err := runner.Run(ctx, features, attributes); err != nil {
		return nil, err
	}
	result.DerivedCreated = features.Created
	if features.AgeEstimated {
		p.printf("   Estimated age computed (reference: %s)\n",
			features.ReferenceDate.Format("2006-01-02"))
	}

	p.printf("\n5. Applying one-hot encoding...\n")
	encode := NewEncodeStage()
	if err := runner.Run(ctx, encode, attributes); err != nil {
		return nil, err
	}
	if len(encode.Encoded) > 0 {
		p.printf("   Columns after one-hot: %d\n", attributes.NumColumns())
	}

	p.printf("\n6. Normalizing numeric attributes...\n")
	normalize := NewNormalizeStage()
	if err := runner.Run(ctx, normalize, attributes); err != nil {
		return nil, err
	}
	result.NormalizedColumns = normalize.Normalized
	result.EligibleColumns = normalize.Eligible
	p.printf("   Normalized columns: %d/%d\n", normalize.Normalized, normalize.Eligible)

	p.printf("\n7. Treating outliers...\n")
	outliers := NewOutlierStage()
	if err := runner.Run(ctx, outliers, attributes); err != nil {
		return nil, err
	}
	result.Clipped = outliers.Clipped
	for _, name := range sortedClipped(outliers.Clipped) {
		count := outliers.Clipped[name]
		p.printf("   %s: %d outliers (%.1f%%)\n",
			name, count, float64(count)/float64(attributes.Rows())*100)
	}

	p.printf("\n8. Saving results...\n")
	if err := p.save(ctx, attributes); err != nil {
		return nil, err
	}
	p.printf("   Data written to: %s\n", p.paths.OutputDB)
	p.printf("   CSV copy: %s\n", p.paths.OutputCSV)

	// The profile workbook is observability, not a core artifact:
	// its failure is a warning, not a pipeline failure.
	if err := p.writeProfile(attributes, result); err != nil {
		p.logger.Warn("profile workbook generation failed",
			"path", p.paths.ProfileWorkbook, "error", err)
	} else {
		p.printf("   Profile workbook: %s\n", p.paths.ProfileWorkbook)
	}

	result.Rows = attributes.Rows()
	result.Columns = attributes.NumColumns()
	result.FinalNulls = attributes.TotalNulls()
	p.printSummary(attributes, result)
	return result, nil
}

// save writes the table and the CSV copy. Either failure is terminal;
// the table-written/CSV-failed partial state is surfaced in the error
// context.
func (p *Pipeline) save(ctx context.Context, ds *dataset.Dataset) error {
	if err := os.MkdirAll(p.paths.OutputDir, 0755); err != nil {
		return pipeerrors.NewSinkError("save", "cannot create output directory", err)
	}

	db, err := store.OpenForWrite(p.paths.OutputDB)
	if err != nil {
		return pipeerrors.NewSinkError("save", "cannot open output store", err)
	}
	writeErr := store.WriteTable(ctx, db, p.cfg.Pipeline.OutputTable, ds)
	closeErr := db.Close()
	if writeErr != nil {
		return pipeerrors.NewSinkError("save", "failed to write table "+p.cfg.Pipeline.OutputTable, writeErr)
	}
	if closeErr != nil {
		return pipeerrors.NewSinkError("save", "failed to close output store", closeErr)
	}

	if err := exporter.WriteDatasetCSV(p.paths.OutputCSV, ds); err != nil {
		return pipeerrors.NewSinkError("save", "failed to write CSV copy", err).
			WithContext("table_written", true)
	}
	return nil
}

func (p *Pipeline) writeProfile(ds *dataset.Dataset, result *Result) error {
	positions := make(map[string]int, len(result.Positions))
	for pos, count := range result.Positions {
		positions[string(pos)] = count
	}
	return exporter.WriteProfileWorkbook(p.paths.ProfileWorkbook, ds, exporter.Profile{
		NullsBefore:   result.NullsBefore,
		NullsAfter:    result.NullsAfter,
		NullReduction: result.NullReduction,
		Positions:     positions,
		Clipped:       result.Clipped,
	})
}

// printSummary prints the final report block, including min/mean/max
// of every derived variable that was created.
func (p *Pipeline) printSummary(ds *dataset.Dataset, result *Result) {
	p.printf("\n%s\n", strings.Repeat("=", 40))
	p.printf("FINAL SUMMARY:\n")
	p.printf("   Rows: %d\n", result.Rows)
	p.printf("   Columns: %d\n", result.Columns)
	p.printf("   Null values: %d\n", result.FinalNulls)

	derived := []string{ScoreFisicoColumn, ScoreTecnicoColumn, ScoreMentalColumn, AgeColumn}
	var created []string
	for _, name := range derived {
		if ds.Has(name) {
			created = append(created, name)
		}
	}
	p.printf("   Derived variables: %d/%d created\n", len(created), len(derived))

	if len(created) > 0 {
		p.printf("   Derived variable statistics:\n")
		for _, name := range created {
			values, valid, err := ds.Numeric(name)
			if err != nil {
				continue
			}
			nonNull := dataset.Compact(values, valid)
			if min, max, ok := dataset.MinMax(nonNull); ok {
				mean, _ := dataset.Mean(nonNull)
				p.printf("   - %s: %.1f | %.1f | %.1f\n", name, min, mean, max)
			}
		}
	}

	p.printf("\nCleaning completed\n")
	p.printf("%s\n", strings.Repeat("=", 40))
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// formatDistribution renders the position counts sorted by label.
func formatDistribution(dist map[Position]int) string {
	labels := make([]string, 0, len(dist))
	for pos := range dist {
		labels = append(labels, string(pos))
	}
	sort.Strings(labels)

	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprintf("%s=%d", label, dist[Position(label)])
	}
	return strings.Join(parts, " ")
}

func sortedClipped(clipped map[string]int) []string {
	names := make([]string, 0, len(clipped))
	for name := range clipped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
