package cleaning

import (
	"context"
	"fmt"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
	"fifaclean/internal/store"
)

// The two fixed input queries: a full scan of the attribute snapshots
// and a projection over the player identities.
const (
	attributesQuery = "SELECT * FROM Player_Attributes"
	identitiesQuery = "SELECT player_api_id, player_name, birthday FROM Player"
)

// Loader reads the two input relations into datasets. Any failure is
// terminal: the pipeline aborts before writing output.
type Loader struct {
	path string
}

// NewLoader creates a loader for the SQLite store at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the attribute dataset and the identity dataset. The
// store connection is closed on every exit path.
func (l *Loader) Load(ctx context.Context) (attributes, identities *dataset.Dataset, err error) {
	db, err := store.Open(l.path)
	if err != nil {
		return nil, nil, pipeerrors.NewSourceError("load",
			fmt.Sprintf("cannot open store %s", l.path), err)
	}
	defer db.Close()

	attributes, err = store.ReadQuery(ctx, db, attributesQuery)
	if err != nil {
		return nil, nil, pipeerrors.NewSourceError("load",
			"cannot read Player_Attributes", err)
	}

	identities, err = store.ReadQuery(ctx, db, identitiesQuery)
	if err != nil {
		return nil, nil, pipeerrors.NewSourceError("load",
			"cannot read Player", err)
	}

	return attributes, identities, nil
}
