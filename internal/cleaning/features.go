package cleaning

import (
	"context"
	"time"

	"fifaclean/internal/dataset"
	pipeerrors "fifaclean/internal/errors"
	"fifaclean/internal/infrastructure"
)

// Derived feature columns.
const (
	ScoreFisicoColumn  = "score_fisico"
	ScoreTecnicoColumn = "score_tecnico"
	ScoreMentalColumn  = "score_mental"
	AgeColumn          = "edad_estimada"
)

// Derived score constituents. A score is only created when at least
// one constituent column exists in the current schema.
var (
	physicalAttrs  = []string{"acceleration", "sprint_speed", "stamina", "strength"}
	technicalAttrs = []string{"ball_control", "dribbling", "short_passing"}
	mentalAttrs    = []string{"positioning", "vision", "reactions"}
)

// Age estimation constants.
const (
	daysPerYear = 365.25
	// fallbackAge is assigned to every record when no birthday
	// column exists at all.
	fallbackAge = 25.0
)

// defaultReferenceDate is used when the dataset has no date column.
var defaultReferenceDate = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

// birthdayLayouts are tried in order when parsing date text.
var birthdayLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// FeatureStage adds the three derived scores and the estimated age.
type FeatureStage struct {
	// Created lists the derived columns actually added.
	Created []string
	// ReferenceDate is the date ages were computed against.
	ReferenceDate time.Time
	// AgeEstimated is false when the fallback constant was used.
	AgeEstimated bool
}

// NewFeatureStage creates the feature synthesis stage.
func NewFeatureStage() *FeatureStage { return &FeatureStage{} }

func (s *FeatureStage) ID() string   { return "features" }
func (s *FeatureStage) Name() string { return "Derived variable synthesis" }

func (s *FeatureStage) Requires() []string { return nil }

func (s *FeatureStage) Run(ctx context.Context, ds *dataset.Dataset) error {
	for _, score := range []struct {
		name  string
		attrs []string
	}{
		{ScoreFisicoColumn, physicalAttrs},
		{ScoreTecnicoColumn, technicalAttrs},
		{ScoreMentalColumn, mentalAttrs},
	} {
		created, err := addScore(ctx, ds, score.name, score.attrs)
		if err != nil {
			return err
		}
		if created {
			s.Created = append(s.Created, score.name)
		}
	}

	if err := s.addAge(ctx, ds); err != nil {
		return err
	}
	s.Created = append(s.Created, AgeColumn)
	return nil
}

// addScore computes the row-wise mean over the constituent attributes
// present in the schema, skipping nulls per row. Attributes absent
// from the schema are silently skipped; if none are present the score
// is not created. A present but non-numeric constituent is skipped
// with a warning rather than aborting the stage.
func addScore(ctx context.Context, ds *dataset.Dataset, name string, attrs []string) (bool, error) {
	logger := infrastructure.LoggerWithContext(ctx)

	type columnData struct {
		values []float64
		valid  []bool
	}
	var present []columnData
	for _, attr := range attrs {
		if !ds.Has(attr) {
			continue
		}
		values, valid, err := ds.Numeric(attr)
		if err != nil {
			logger.Warn("score constituent skipped",
				"stage", "features", "score", name, "column", attr, "error", err)
			continue
		}
		present = append(present, columnData{values, valid})
	}
	if len(present) == 0 {
		return false, nil
	}

	n := ds.Rows()
	scores := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		sum, count := 0.0, 0
		for _, col := range present {
			if col.valid[i] {
				sum += col.values[i]
				count++
			}
		}
		if count > 0 {
			scores[i] = sum / float64(count)
			valid[i] = true
		}
	}
	if err := ds.AddNumeric(name, scores, valid); err != nil {
		return false, pipeerrors.NewTransformError("features", "failed to add "+name, err)
	}
	return true, nil
}

// addAge parses the birthday column, converts it to a time column in
// place, and computes the estimated age against the reference date:
// the maximum parseable value of the date column, or a fixed default.
// Records without a parseable birthday get the median estimated age.
// Without a birthday column every record gets the fallback constant.
func (s *FeatureStage) addAge(ctx context.Context, ds *dataset.Dataset) error {
	n := ds.Rows()

	if !ds.Has("birthday") {
		ages := make([]float64, n)
		for i := range ages {
			ages[i] = fallbackAge
		}
		if err := ds.AddNumeric(AgeColumn, ages, nil); err != nil {
			return pipeerrors.NewTransformError(s.ID(), "failed to add "+AgeColumn, err)
		}
		s.ReferenceDate = defaultReferenceDate
		return nil
	}

	births, birthsValid, err := parseTimeColumn(ds, "birthday")
	if err != nil {
		return err
	}
	if err := ds.ReplaceTime("birthday", births, birthsValid); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to convert birthday", err)
	}

	s.ReferenceDate = defaultReferenceDate
	if ds.Has("date") {
		if ref, ok := maxDate(ds); ok {
			s.ReferenceDate = ref
		}
	}

	ages := make([]float64, n)
	agesValid := make([]bool, n)
	for i := 0; i < n; i++ {
		if !birthsValid[i] {
			continue
		}
		days := int(s.ReferenceDate.Sub(births[i]).Hours() / 24)
		ages[i] = float64(days) / daysPerYear
		agesValid[i] = true
	}
	if m, ok := dataset.Median(dataset.Compact(ages, agesValid)); ok {
		for i := range ages {
			if !agesValid[i] {
				ages[i] = m
				agesValid[i] = true
			}
		}
	}
	if err := ds.AddNumeric(AgeColumn, ages, agesValid); err != nil {
		return pipeerrors.NewTransformError(s.ID(), "failed to add "+AgeColumn, err)
	}
	s.AgeEstimated = true
	return nil
}

// parseTimeColumn parses a text column into times; unparseable or null
// cells become null. A column that is already a time column is
// returned as-is.
func parseTimeColumn(ds *dataset.Dataset, name string) ([]time.Time, []bool, error) {
	if kind, _ := ds.ColumnKind(name); kind == dataset.KindTime {
		times, valid, err := ds.Times(name)
		if err != nil {
			return nil, nil, pipeerrors.NewTransformError("features", "time access failed for "+name, err)
		}
		return times, valid, nil
	}

	texts, textsValid, err := ds.Text(name)
	if err != nil {
		return nil, nil, pipeerrors.NewTransformError("features", "text access failed for "+name, err)
	}

	times := make([]time.Time, len(texts))
	valid := make([]bool, len(texts))
	for i, raw := range texts {
		if !textsValid[i] {
			continue
		}
		if t, ok := parseDate(raw); ok {
			times[i] = t
			valid[i] = true
		}
	}
	return times, valid, nil
}

// maxDate returns the maximum parseable value of the date column.
func maxDate(ds *dataset.Dataset) (time.Time, bool) {
	texts, valid, err := ds.Text("date")
	if err != nil {
		return time.Time{}, false
	}
	var max time.Time
	found := false
	for i, raw := range texts {
		if !valid[i] {
			continue
		}
		if t, ok := parseDate(raw); ok && (!found || t.After(max)) {
			max = t
			found = true
		}
	}
	return max, found
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
