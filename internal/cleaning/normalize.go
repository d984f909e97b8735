package cleaning

import (
	"context"

	"fifaclean/internal/dataset"
	"fifaclean/internal/infrastructure"
)

// constantColumnValue replaces every value of a constant column, where
// the linear rescale would divide by zero.
const constantColumnValue = 50.0

// normalizeExcluded lists the numeric columns the normalizer never
// touches: identifiers, the derived scores, and the estimated age.
var normalizeExcluded = map[string]bool{
	"id":                 true,
	"player_fifa_api_id": true,
	"player_api_id":      true,
	AgeColumn:            true,
	ScoreFisicoColumn:    true,
	ScoreTecnicoColumn:   true,
	ScoreMentalColumn:    true,
}

// NormalizeStage rescales every eligible numeric column linearly to
// [0,100] using that column's own min and max. Constant columns
// collapse to 50; nulls pass through.
type NormalizeStage struct {
	Normalized int
	Eligible   int
}

// NewNormalizeStage creates the normalization stage.
func NewNormalizeStage() *NormalizeStage { return &NormalizeStage{} }

func (s *NormalizeStage) ID() string   { return "normalize" }
func (s *NormalizeStage) Name() string { return "Numeric attribute normalization" }

func (s *NormalizeStage) Requires() []string { return nil }

func (s *NormalizeStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	logger := infrastructure.LoggerWithContext(ctx)

	for _, info := range ds.Schema() {
		if info.Kind != dataset.KindNumeric || normalizeExcluded[info.Name] {
			continue
		}
		s.Eligible++

		values, valid, err := ds.Numeric(info.Name)
		if err != nil {
			// Per-column failure: skip and continue.
			logger.Warn("normalization skipped column",
				"stage", s.ID(), "column", info.Name, "error", err)
			continue
		}
		min, max, ok := dataset.MinMax(dataset.Compact(values, valid))
		if !ok {
			continue
		}

		if max > min {
			// Dividing last keeps the endpoints exact: x == max must
			// yield 100.0, not 100 plus a rounding ulp.
			for i := range values {
				if valid[i] {
					values[i] = (values[i] - min) * 100 / (max - min)
				}
			}
		} else {
			for i := range values {
				if valid[i] {
					values[i] = constantColumnValue
				}
			}
		}
		s.Normalized++
	}
	return nil
}
