package cleaning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
)

type fakeStage struct {
	id       string
	requires []string
	err      error
	ran      bool
}

func (s *fakeStage) ID() string   { return s.id }
func (s *fakeStage) Name() string { return s.id }

func (s *fakeStage) Requires() []string { return s.requires }
func (s *fakeStage) Run(_ context.Context, _ *dataset.Dataset) error {
	s.ran = true
	return s.err
}

func TestRunner_RejectsMissingRequiredColumns(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddNumeric("id", []float64{1}, nil))

	stage := &fakeStage{id: "merge", requires: []string{"player_api_id", "id"}}
	runner := NewRunner(nil)

	err := runner.Run(context.Background(), stage, ds)
	require.Error(t, err)
	assert.False(t, stage.ran, "stage must not run when its contract is unmet")
	assert.True(t, pipeerrors.IsType(err, pipeerrors.TypeTransform))
	assert.Contains(t, err.Error(), "player_api_id")
	assert.NotContains(t, err.Error(), "[id")
}

func TestRunner_RunsStageWhenContractMet(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddNumeric("player_api_id", []float64{42}, nil))

	stage := &fakeStage{id: "merge", requires: []string{"player_api_id"}}
	runner := NewRunner(nil)

	require.NoError(t, runner.Run(context.Background(), stage, ds))
	assert.True(t, stage.ran)
}

func TestRunner_PropagatesStageError(t *testing.T) {
	ds := dataset.New(1)
	require.NoError(t, ds.AddNumeric("id", []float64{1}, nil))

	boom := errors.New("boom")
	stage := &fakeStage{id: "impute", err: boom}
	runner := NewRunner(nil)

	err := runner.Run(context.Background(), stage, ds)
	assert.ErrorIs(t, err, boom)
}
