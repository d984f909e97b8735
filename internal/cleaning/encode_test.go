package cleaning

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifaclean/internal/dataset"
)

func TestEncodeStage_ThreeDistinctValues(t *testing.T) {
	ds := dataset.New(5)
	require.NoError(t, ds.AddNumeric("id", []float64{1, 2, 3, 4, 5}, nil))
	require.NoError(t, ds.AddText("attacking_work_rate",
		[]string{"high", "medium", "low", "high", ""},
		[]bool{true, true, true, true, false}))

	stage := NewEncodeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	assert.Equal(t, []string{"attacking_work_rate"}, stage.Encoded)
	assert.False(t, ds.Has("attacking_work_rate"))

	// Exactly 3 indicator columns, appended in sorted value order.
	assert.Equal(t, []string{
		"id",
		"attacking_work_rate_high",
		"attacking_work_rate_low",
		"attacking_work_rate_medium",
	}, ds.Columns())

	indicators := make([][]float64, 3)
	for i, name := range []string{"attacking_work_rate_high", "attacking_work_rate_low", "attacking_work_rate_medium"} {
		values, valid, err := ds.Numeric(name)
		require.NoError(t, err)
		for row := range values {
			// Indicators are 0/1 and never null.
			assert.True(t, valid[row])
			assert.Contains(t, []float64{0, 1}, values[row])
		}
		indicators[i] = values
	}

	// Row sums: 1 for non-null source rows, 0 for the null row.
	for row := 0; row < 5; row++ {
		sum := indicators[0][row] + indicators[1][row] + indicators[2][row]
		if row == 4 {
			assert.Zero(t, sum, "null source cell must yield an all-zero indicator row")
		} else {
			assert.Equal(t, 1.0, sum, "row %d", row)
		}
	}

	assert.Equal(t, 1.0, indicators[0][0]) // high
	assert.Equal(t, 1.0, indicators[1][2]) // low
	assert.Equal(t, 1.0, indicators[2][1]) // medium
}

func TestEncodeStage_CardinalityCap(t *testing.T) {
	n := maxEncodeCardinality + 1
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("club_%02d", i)
	}

	ds := dataset.New(n)
	require.NoError(t, ds.AddText("club", values, nil))

	stage := NewEncodeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	// Above the cap: left untouched, not encoded, not dropped.
	assert.Empty(t, stage.Encoded)
	assert.True(t, ds.Has("club"))
	kind, _ := ds.ColumnKind("club")
	assert.Equal(t, dataset.KindText, kind)
}

func TestEncodeStage_ExcludedColumnsUntouched(t *testing.T) {
	ds := dataset.New(2)
	require.NoError(t, ds.AddText(PositionColumn, []string{"Portero", "Delantero"}, nil))
	require.NoError(t, ds.AddText("player_name", []string{"A", "B"}, nil))
	require.NoError(t, ds.AddText("date", []string{"2015-01-01", "2015-01-02"}, nil))
	require.NoError(t, ds.AddText("preferred_foot", []string{"left", "right"}, nil))

	stage := NewEncodeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	assert.Equal(t, []string{"preferred_foot"}, stage.Encoded)
	assert.True(t, ds.Has(PositionColumn))
	assert.True(t, ds.Has("player_name"))
	assert.True(t, ds.Has("date"))
	assert.True(t, ds.Has("preferred_foot_left"))
	assert.True(t, ds.Has("preferred_foot_right"))
}

func TestEncodeStage_MultipleCandidatesInSchemaOrder(t *testing.T) {
	ds := dataset.New(2)
	require.NoError(t, ds.AddText("defensive_work_rate", []string{"low", "high"}, nil))
	require.NoError(t, ds.AddText("preferred_foot", []string{"left", "right"}, nil))

	stage := NewEncodeStage()
	require.NoError(t, stage.Run(context.Background(), ds))

	assert.Equal(t, []string{"defensive_work_rate", "preferred_foot"}, stage.Encoded)
	assert.Equal(t, []string{
		"defensive_work_rate_high",
		"defensive_work_rate_low",
		"preferred_foot_left",
		"preferred_foot_right",
	}, ds.Columns())
}
