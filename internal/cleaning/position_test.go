package cleaning

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
)

// rowWith builds a single-row dataset from attribute values. Absent
// attributes are simply not added, matching a schema without them.
func rowWith(t *testing.T, values map[string]float64) dataset.Row {
	t.Helper()
	ds := dataset.New(1)

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		require.NoError(t, ds.AddNumeric(name, []float64{values[name]}, nil))
	}
	return ds.Row(0)
}

func TestInferPosition(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]float64
		want   Position
	}{
		{
			name:   "goalkeeper short-circuit beats a dominant defense",
			values: map[string]float64{"gk_reflexes": 80, "marking": 95, "standing_tackle": 95},
			want:   Portero,
		},
		{
			name:   "goalkeeper threshold is strict",
			values: map[string]float64{"gk_diving": 50},
			want:   Versatil,
		},
		{
			name:   "any goalkeeper attribute qualifies",
			values: map[string]float64{"gk_kicking": 51},
			want:   Portero,
		},
		{
			name:   "attack dominates",
			values: map[string]float64{"finishing": 90, "shot_power": 80, "marking": 40, "vision": 50},
			want:   Delantero,
		},
		{
			name:   "midfield dominates",
			values: map[string]float64{"vision": 85, "short_passing": 80, "finishing": 40, "marking": 30},
			want:   Mediocampista,
		},
		{
			name:   "defense dominates",
			values: map[string]float64{"marking": 88, "sliding_tackle": 90, "finishing": 50, "vision": 45},
			want:   Defensa,
		},
		{
			name:   "three-way tie falls back to Versatil",
			values: map[string]float64{"marking": 40, "vision": 40, "finishing": 40},
			want:   Versatil,
		},
		{
			name:   "no attributes at all",
			values: nil,
			want:   Versatil,
		},
		{
			name:   "two-way tie on top",
			values: map[string]float64{"finishing": 60, "vision": 60, "marking": 20},
			want:   Versatil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := rowWith(t, tt.values)

			got, err := InferPosition(row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Inference is deterministic: repeated invocation on
			// identical attributes yields the same label.
			again, err := InferPosition(row)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestInferPosition_NullsAreSkipped(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddNumeric("gk_reflexes", []float64{99}, []bool{false}))
	require.NoError(t, ds.AddNumeric("finishing", []float64{70}, nil))

	// The null goalkeeper rating must not trigger the short-circuit.
	got, err := InferPosition(ds.Row(0))
	require.NoError(t, err)
	assert.Equal(t, Delantero, got)
}

func TestInferPosition_TypeErrorYieldsDesconocido(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddText("gk_reflexes", []string{"high"}, nil))

	got, err := InferPosition(ds.Row(0))
	require.Error(t, err)
	assert.Equal(t, Desconocido, got)

	// Accessor failures surface as per-record inference errors, which
	// the merge stage recovers from instead of aborting the run.
	assert.True(t, pipeerrors.IsType(err, pipeerrors.TypeInference))
	assert.False(t, pipeerrors.IsTerminal(err))
}

func TestGroupMean(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddNumeric("marking", []float64{60}, nil))
	require.NoError(t, ds.AddNumeric("standing_tackle", []float64{0}, []bool{false}))

	// Nulls and absent columns are skipped, not zero-filled.
	mean, err := groupMean(ds.Row(0), defenseAttrs)
	require.NoError(t, err)
	assert.InDelta(t, 60, mean, 1e-9)

	// An empty attribute list yields 0.
	mean, err = groupMean(ds.Row(0), []string{"absent_a", "absent_b"})
	require.NoError(t, err)
	assert.Zero(t, mean)
}
