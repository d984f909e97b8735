package cleaning

import (
	"context"

	"fifaclean/internal/dataset"
	"fifaclean/internal/infrastructure"
)

// iqrFactor scales the interquartile range to the winsorization
// fences: [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
const iqrFactor = 1.5

// outlierColumns is the fixed allowlist of key columns checked for
// outliers, intersected with the columns actually present.
var outlierColumns = []string{
	"overall_rating", "potential",
	ScoreFisicoColumn, ScoreTecnicoColumn, ScoreMentalColumn,
	"crossing", "finishing", "short_passing", "dribbling", "ball_control",
}

// OutlierStage winsorizes values outside the IQR fences to the
// boundary values. Columns with a zero IQR are left unmodified.
type OutlierStage struct {
	// Clipped counts the clipped values per column.
	Clipped map[string]int
}

// NewOutlierStage creates the outlier clipping stage.
func NewOutlierStage() *OutlierStage {
	return &OutlierStage{Clipped: make(map[string]int)}
}

func (s *OutlierStage) ID() string   { return "outliers" }
func (s *OutlierStage) Name() string { return "Outlier treatment" }

func (s *OutlierStage) Requires() []string { return nil }

func (s *OutlierStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	logger := infrastructure.LoggerWithContext(ctx)

	for _, name := range outlierColumns {
		if !ds.Has(name) {
			continue
		}
		values, valid, err := ds.Numeric(name)
		if err != nil {
			// Per-column failure: skip and continue.
			logger.Warn("outlier treatment skipped column",
				"stage", s.ID(), "column", name, "error", err)
			continue
		}

		nonNull := dataset.Compact(values, valid)
		q1, ok := dataset.Quantile(nonNull, 0.25)
		if !ok {
			continue
		}
		q3, _ := dataset.Quantile(nonNull, 0.75)
		iqr := q3 - q1
		if iqr <= 0 {
			continue
		}

		lower := q1 - iqrFactor*iqr
		upper := q3 + iqrFactor*iqr
		clipped := 0
		for i := range values {
			if !valid[i] {
				continue
			}
			switch {
			case values[i] < lower:
				values[i] = lower
				clipped++
			case values[i] > upper:
				values[i] = upper
				clipped++
			}
		}
		if clipped > 0 {
			s.Clipped[name] = clipped
		}
	}
	return nil
}
