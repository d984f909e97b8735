// Package cleaning implements the football-player data cleaning
// pipeline: an eight-stage batch transformation that loads the raw
// attribute and identity tables, joins them, infers a position label
// per record, imputes missing values by position group, synthesizes
// derived scores and an estimated age, one-hot encodes low-cardinality
// categoricals, rescales numeric attributes to [0,100], winsorizes
// outliers on a fixed set of key columns, and persists the result.
//
// # Architecture
//
// The in-memory stages (2-7) implement the Stage interface and are run
// sequentially by a Runner that verifies each stage's required columns
// against the live dataset schema before executing it. The Pipeline
// type wires the stages together with the loader and the writers and
// prints a numbered progress report to its output writer.
//
// # Data flow
//
//	SQLite store → Loader → Dataset → Merge → Impute → Features →
//	Encode → Normalize → Outliers → SQLite table + CSV + profile
//
// # Error handling
//
// Load and save failures abort the run. A per-record inference failure
// labels the record Desconocido and continues; a per-column failure
// inside a stage skips that column and continues.
package cleaning
