package cleaning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifaclean/internal/dataset"
)

// newLabeled builds a dataset pre-labeled with positions.
func newLabeled(t *testing.T, labels []string) *dataset.Dataset {
	t.Helper()
	ds := dataset.New(len(labels))
	require.NoError(t, ds.AddText(PositionColumn, labels, nil))
	return ds
}

func TestImputeStage_NumericGroupMedian(t *testing.T) {
	ds := newLabeled(t, []string{"Portero", "Portero", "Portero", "Delantero", "Delantero"})
	require.NoError(t, ds.AddNumeric("overall_rating",
		[]float64{10, 20, 0, 0, 0},
		[]bool{true, true, false, false, false}))

	stage := NewImputeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	values, valid, err := ds.Numeric("overall_rating")
	require.NoError(t, err)

	// Row 2: Portero group median of {10, 20} = 15.
	assert.True(t, valid[2])
	assert.InDelta(t, 15, values[2], 1e-9)

	// Rows 3-4: the Delantero group was entirely null, so the
	// fallback is the median of the partially filled column
	// {10, 20, 15} = 15.
	assert.True(t, valid[3])
	assert.InDelta(t, 15, values[3], 1e-9)
	assert.InDelta(t, 15, values[4], 1e-9)

	// Original values untouched.
	assert.Equal(t, 10.0, values[0])
	assert.Equal(t, 20.0, values[1])
}

func TestImputeStage_CompletenesInvariant(t *testing.T) {
	ds := newLabeled(t, []string{"Defensa", "Defensa", "Mediocampista", "Mediocampista"})
	require.NoError(t, ds.AddNumeric("potential",
		[]float64{60, 0, 0, 70}, []bool{true, false, false, true}))
	require.NoError(t, ds.AddText("preferred_foot",
		[]string{"left", "", "", "right"}, []bool{true, false, false, true}))

	require.NoError(t, NewImputeStage().Run(context.Background(), ds))

	// No column that had at least one non-null value dataset-wide
	// contains a null afterwards.
	assert.Zero(t, ds.NullCount("potential"))
	assert.Zero(t, ds.NullCount("preferred_foot"))
}

func TestImputeStage_AllNullNumericColumnUntouched(t *testing.T) {
	ds := newLabeled(t, []string{"Portero", "Delantero"})
	require.NoError(t, ds.AddNumeric("gk_diving", []float64{0, 0}, []bool{false, false}))

	stage := NewImputeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	assert.Equal(t, 2, ds.NullCount("gk_diving"))
	assert.Equal(t, 2, stage.NullsBefore)
	assert.Equal(t, 2, stage.NullsAfter)
	assert.Zero(t, stage.Reduction())
}

func TestImputeStage_CategoricalGroupMode(t *testing.T) {
	ds := newLabeled(t, []string{"Portero", "Portero", "Portero", "Delantero"})
	require.NoError(t, ds.AddText("attacking_work_rate",
		[]string{"high", "high", "", ""},
		[]bool{true, true, false, false}))

	require.NoError(t, NewImputeStage().Run(context.Background(), ds))

	values, valid, err := ds.Text("attacking_work_rate")
	require.NoError(t, err)

	// Portero mode fills row 2; the empty Delantero group falls
	// back to the Unknown literal.
	assert.True(t, valid[2])
	assert.Equal(t, "high", values[2])
	assert.True(t, valid[3])
	assert.Equal(t, "Unknown", values[3])
}

func TestImputeStage_ExcludedTextColumnsStayNull(t *testing.T) {
	ds := newLabeled(t, []string{"Portero", "Delantero"})
	require.NoError(t, ds.AddText("player_name", []string{"Messi", ""}, []bool{true, false}))
	require.NoError(t, ds.AddText("date", []string{"2015-09-21 00:00:00", ""}, []bool{true, false}))

	require.NoError(t, NewImputeStage().Run(context.Background(), ds))

	// Identity and date columns are outside the imputer's scope.
	assert.Equal(t, 1, ds.NullCount("player_name"))
	assert.Equal(t, 1, ds.NullCount("date"))
}

func TestImputeStage_ReductionReporting(t *testing.T) {
	ds := newLabeled(t, []string{"Portero", "Portero", "Portero", "Portero"})
	require.NoError(t, ds.AddNumeric("stamina",
		[]float64{50, 60, 0, 0}, []bool{true, true, false, false}))

	stage := NewImputeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	assert.Equal(t, 2, stage.NullsBefore)
	assert.Zero(t, stage.NullsAfter)
	assert.InDelta(t, 100, stage.Reduction(), 1e-9)
}
