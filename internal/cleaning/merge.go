package cleaning

import (
	"context"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
	"fifaclean/internal/infrastructure"
)

// PositionColumn is the label column added by the merge stage.
const PositionColumn = "posicion_inferida"

// identity is one player identity row.
type identity struct {
	name, birthday  string
	nameOK, birthOK bool
}

// MergeStage left-joins the identity columns onto the attribute
// dataset by player_api_id, then labels every record with an inferred
// position. Rows without an identity match keep null identity columns;
// no rows are dropped.
type MergeStage struct {
	identities *dataset.Dataset

	// Distribution counts the inferred labels for observability.
	Distribution map[Position]int
	// Failures counts records labeled Desconocido due to an
	// inference error.
	Failures int
}

// NewMergeStage creates the merge stage around the identity dataset.
func NewMergeStage(identities *dataset.Dataset) *MergeStage {
	return &MergeStage{identities: identities}
}

func (s *MergeStage) ID() string   { return "merge" }
func (s *MergeStage) Name() string { return "Merge and position inference" }

func (s *MergeStage) Requires() []string { return []string{"player_api_id"} }

func (s *MergeStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	logger := infrastructure.LoggerWithContext(ctx)

	byID, err := s.identityIndex()
	if err != nil {
		return err
	}

	ids, idsValid, err := ds.Numeric("player_api_id")
	if err != nil {
		return pipeerrors.NewTransformError(s.ID(), "player_api_id is not numeric", err)
	}

	n := ds.Rows()
	names := make([]string, n)
	namesValid := make([]bool, n)
	births := make([]string, n)
	birthsValid := make([]bool, n)
	for i := 0; i < n; i++ {
		if !idsValid[i] {
			continue
		}
		ident, ok := byID[ids[i]]
		if !ok {
			continue
		}
		names[i], namesValid[i] = ident.name, ident.nameOK
		births[i], birthsValid[i] = ident.birthday, ident.birthOK
	}
	if err := ds.AddText("player_name", names, namesValid); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to add player_name", err)
	}
	if err := ds.AddText("birthday", births, birthsValid); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to add birthday", err)
	}

	labels := make([]string, n)
	s.Distribution = make(map[Position]int)
	for i := 0; i < n; i++ {
		pos, err := InferPosition(ds.Row(i))
		if err != nil {
			s.Failures++
			pos = Desconocido
			logger.Debug("position inference failed",
				"stage", s.ID(), "row", i, "error", err)
		}
		labels[i] = string(pos)
		s.Distribution[pos]++
	}
	if err := ds.AddText(PositionColumn, labels, nil); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to add position column", err)
	}

	if s.Failures > 0 {
		logger.Warn("some records could not be classified",
			"stage", s.ID(), "failures", s.Failures)
	}
	return nil
}

// identityIndex maps player_api_id to its identity row. Duplicate
// keys keep the first occurrence; the source data has unique keys.
func (s *MergeStage) identityIndex() (map[float64]identity, error) {
	ids, idsValid, err := s.identities.Numeric("player_api_id")
	if err != nil {
		return nil, pipeerrors.NewTransformError(s.ID(), "identity player_api_id is not numeric", err)
	}
	names, namesValid, err := s.identities.Text("player_name")
	if err != nil {
		return nil, pipeerrors.NewTransformError(s.ID(), "identity player_name is not text", err)
	}
	births, birthsValid, err := s.identities.Text("birthday")
	if err != nil {
		return nil, pipeerrors.NewTransformError(s.ID(), "identity birthday is not text", err)
	}

	byID := make(map[float64]identity, s.identities.Rows())
	for i := 0; i < s.identities.Rows(); i++ {
		if !idsValid[i] {
			continue
		}
		if _, exists := byID[ids[i]]; exists {
			continue
		}
		byID[ids[i]] = identity{
			name:     names[i],
			nameOK:   namesValid[i],
			birthday: births[i],
			birthOK:  birthsValid[i],
		}
	}
	return byID, nil
}
