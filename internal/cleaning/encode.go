package cleaning

import (
	"context"
	"sort"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
)

// maxEncodeCardinality caps the distinct-value count of columns
// selected for one-hot encoding. Higher-cardinality columns are left
// untouched.
const maxEncodeCardinality = 15

// encodeExcluded lists the text columns never selected for encoding.
var encodeExcluded = map[string]bool{
	"date":         true,
	"birthday":     true,
	"player_name":  true,
	PositionColumn: true,
}

// EncodeStage replaces low-cardinality categorical columns with 0/1
// indicator columns, one per distinct value observed in the dataset,
// named <column>_<value>. A null source cell yields 0 in every
// indicator column of its block.
type EncodeStage struct {
	// Encoded lists the source columns that were replaced.
	Encoded []string
}

// NewEncodeStage creates the one-hot encoding stage.
func NewEncodeStage() *EncodeStage { return &EncodeStage{} }

func (s *EncodeStage) ID() string   { return "encode" }
func (s *EncodeStage) Name() string { return "One-hot encoding" }

func (s *EncodeStage) Requires() []string { return nil }

func (s *EncodeStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	// Candidates are fixed up front: encoding mutates the schema.
	var candidates []string
	for _, info := range ds.Schema() {
		if info.Kind != dataset.KindText || encodeExcluded[info.Name] {
			continue
		}
		values, valid, err := ds.Text(info.Name)
		if err != nil {
			return pipeerrors.NewTransformError(s.ID(), "text access failed for "+info.Name, err)
		}
		if distinctCount(values, valid) <= maxEncodeCardinality {
			candidates = append(candidates, info.Name)
		}
	}

	for _, name := range candidates {
		if err := s.encodeColumn(ds, name); err != nil {
			return err
		}
		s.Encoded = append(s.Encoded, name)
	}
	return nil
}

// encodeColumn drops the source column and appends one indicator
// column per distinct value, in sorted value order.
func (s *EncodeStage) encodeColumn(ds *dataset.Dataset, name string) error {
	values, valid, err := ds.Text(name)
	if err != nil {
		return pipeerrors.NewTransformError(s.ID(), "text access failed for "+name, err)
	}

	seen := make(map[string]bool)
	for i, v := range values {
		if valid[i] {
			seen[v] = true
		}
	}
	distinct := make([]string, 0, len(seen))
	for v := range seen {
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)

	if err := ds.Drop(name); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to drop "+name, err)
	}

	for _, v := range distinct {
		indicators := make([]float64, len(values))
		for i := range values {
			if valid[i] && values[i] == v {
				indicators[i] = 1
			}
		}
		if err := ds.AddNumeric(name+"_"+v, indicators, nil); err != nil {
			return pipeerrors.NewTransformError(s.ID(), "failed to add indicator for "+name, err)
		}
	}
	return nil
}

func distinctCount(values []string, valid []bool) int {
	seen := make(map[string]bool)
	for i, v := range values {
		if valid[i] {
			seen[v] = true
		}
	}
	return len(seen)
}
