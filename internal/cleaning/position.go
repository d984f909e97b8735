package cleaning

import (
	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
)

// Position is the per-record label inferred from skill attributes.
type Position string

const (
	Portero       Position = "Portero"
	Delantero     Position = "Delantero"
	Mediocampista Position = "Mediocampista"
	Defensa       Position = "Defensa"
	Versatil      Position = "Versatil"
	Desconocido   Position = "Desconocido"
)

// Decision table for position inference. A record is a goalkeeper when
// any goalkeeper attribute exceeds the threshold; otherwise the group
// with the strictly greatest mean wins, and ties fall back to Versatil.
const goalkeeperThreshold = 50.0

var (
	goalkeeperAttrs = []string{"gk_diving", "gk_handling", "gk_kicking", "gk_positioning", "gk_reflexes"}
	defenseAttrs    = []string{"marking", "standing_tackle", "sliding_tackle", "interceptions"}
	midfieldAttrs   = []string{"vision", "short_passing", "long_passing", "ball_control"}
	attackAttrs     = []string{"finishing", "shot_power", "long_shots", "positioning"}
)

// InferPosition labels one record. It is a pure function of the row:
// repeated invocation on identical attributes yields the same label.
// On any accessor error the caller should record the failure and use
// Desconocido, which is also returned here alongside a per-record
// inference error.
func InferPosition(row dataset.Row) (Position, error) {
	pos, err := inferPosition(row)
	if err != nil {
		return Desconocido, pipeerrors.NewInferenceError("merge", "record could not be classified", err)
	}
	return pos, nil
}

func inferPosition(row dataset.Row) (Position, error) {
	for _, attr := range goalkeeperAttrs {
		v, ok, err := row.Float(attr)
		if err != nil {
			return Desconocido, err
		}
		if ok && v > goalkeeperThreshold {
			return Portero, nil
		}
	}

	defense, err := groupMean(row, defenseAttrs)
	if err != nil {
		return Desconocido, err
	}
	midfield, err := groupMean(row, midfieldAttrs)
	if err != nil {
		return Desconocido, err
	}
	attack, err := groupMean(row, attackAttrs)
	if err != nil {
		return Desconocido, err
	}

	switch {
	case attack > defense && attack > midfield:
		return Delantero, nil
	case midfield > defense && midfield > attack:
		return Mediocampista, nil
	case defense > midfield && defense > attack:
		return Defensa, nil
	default:
		return Versatil, nil
	}
}

// groupMean averages the listed attributes for one row, skipping nulls
// and columns absent from the schema. An empty list yields 0.
func groupMean(row dataset.Row, attrs []string) (float64, error) {
	sum, n := 0.0, 0
	for _, attr := range attrs {
		v, ok, err := row.Float(attr)
		if err != nil {
			return 0, err
		}
		if ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}
