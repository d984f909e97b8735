package cleaning

import (
	"context"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
)

// unknownCategory fills categorical cells whose position group has no
// observed value at all.
const unknownCategory = "Unknown"

// imputeTextExcluded lists the text columns the categorical pass never
// touches: identifiers, dates, free text, and the grouping label.
var imputeTextExcluded = map[string]bool{
	"date":         true,
	"birthday":     true,
	"player_name":  true,
	PositionColumn: true,
}

// ImputeStage fills missing values grouped by the inferred position:
// numeric columns with the per-group median (falling back to the
// column median when a whole group is null), categorical columns with
// the per-group mode (falling back to "Unknown").
type ImputeStage struct {
	NullsBefore int
	NullsAfter  int
}

// NewImputeStage creates the imputation stage.
func NewImputeStage() *ImputeStage { return &ImputeStage{} }

func (s *ImputeStage) ID() string   { return "impute" }
func (s *ImputeStage) Name() string { return "Null value treatment" }

func (s *ImputeStage) Requires() []string { return []string{PositionColumn} }

func (s *ImputeStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	labels, _, err := ds.Text(PositionColumn)
	if err != nil {
		return pipeerrors.NewTransformError(s.ID(), "position column is not text", err)
	}

	s.NullsBefore = ds.TotalNulls()

	for _, info := range ds.Schema() {
		switch info.Kind {
		case dataset.KindNumeric:
			if err := imputeNumeric(ds, info.Name, labels); err != nil {
				return err
			}
		case dataset.KindText:
			if imputeTextExcluded[info.Name] {
				continue
			}
			if err := imputeText(ds, info.Name, labels); err != nil {
				return err
			}
		}
	}

	s.NullsAfter = ds.TotalNulls()
	return nil
}

// Reduction returns the percentage of nulls removed by the stage.
func (s *ImputeStage) Reduction() float64 {
	if s.NullsBefore == 0 {
		return 0
	}
	return (1 - float64(s.NullsAfter)/float64(s.NullsBefore)) * 100
}

// imputeNumeric fills nulls with the per-group median of the column's
// original non-null values. Cells still null after the group pass
// (their whole group was null) get the median of the partially filled
// column. A column with no values at all is left untouched.
func imputeNumeric(ds *dataset.Dataset, name string, labels []string) error {
	values, valid, err := ds.Numeric(name)
	if err != nil {
		return pipeerrors.NewTransformError("impute", "numeric access failed for "+name, err)
	}
	if !anyNull(valid) {
		return nil
	}

	byGroup := make(map[string][]float64)
	for i, v := range values {
		if valid[i] {
			byGroup[labels[i]] = append(byGroup[labels[i]], v)
		}
	}
	medians := make(map[string]float64, len(byGroup))
	for group, groupValues := range byGroup {
		if m, ok := dataset.Median(groupValues); ok {
			medians[group] = m
		}
	}

	for i := range values {
		if valid[i] {
			continue
		}
		if m, ok := medians[labels[i]]; ok {
			values[i] = m
			valid[i] = true
		}
	}

	if anyNull(valid) {
		if m, ok := dataset.Median(dataset.Compact(values, valid)); ok {
			for i := range values {
				if !valid[i] {
					values[i] = m
					valid[i] = true
				}
			}
		}
	}
	return nil
}

// imputeText fills nulls with the per-group mode, breaking frequency
// ties with the smallest value. A group with no observed value falls
// back to the "Unknown" literal.
func imputeText(ds *dataset.Dataset, name string, labels []string) error {
	values, valid, err := ds.Text(name)
	if err != nil {
		return pipeerrors.NewTransformError("impute", "text access failed for "+name, err)
	}
	if !anyNull(valid) {
		return nil
	}

	byGroup := make(map[string][]string)
	for i, v := range values {
		if valid[i] {
			byGroup[labels[i]] = append(byGroup[labels[i]], v)
		}
	}
	modes := make(map[string]string, len(byGroup))
	for group, groupValues := range byGroup {
		if m, ok := dataset.Mode(groupValues); ok {
			modes[group] = m
		}
	}

	for i := range values {
		if valid[i] {
			continue
		}
		if m, ok := modes[labels[i]]; ok {
			values[i] = m
		} else {
			values[i] = unknownCategory
		}
		valid[i] = true
	}
	return nil
}

func anyNull(valid []bool) bool {
	for _, v := range valid {
		if !v {
			return true
		}
	}
	return false
}
