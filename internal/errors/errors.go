// Package errors defines the pipeline error taxonomy.
//
// Every failure surfaced by the cleaning pipeline is a *PipelineError
// carrying a type, the stage it occurred in, and optional context.
// Source and sink errors are terminal; transform and inference errors
// are recovered locally by the stage that raised them.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type classifies a pipeline error.
type Type string

const (
	// TypeSource indicates the input store or a queried relation is
	// missing or unreadable. Terminal: no output is written.
	TypeSource Type = "source"
	// TypeTransform indicates a per-column operation failed inside a
	// stage. The column is skipped and the run continues.
	TypeTransform Type = "transform"
	// TypeInference indicates a per-record heuristic failed. The record
	// is labeled Desconocido and the run continues.
	TypeInference Type = "inference"
	// TypeSink indicates a write to an output artifact failed. Terminal;
	// a partial output state is possible and is surfaced in the context.
	TypeSink Type = "sink"
	// TypeConfig indicates invalid configuration. Terminal before the
	// pipeline starts.
	TypeConfig Type = "config"
)

// PipelineError is the structured error type used across the pipeline.
type PipelineError struct {
	Type    Type                   `json:"type"`
	Stage   string                 `json:"stage,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e == nil {
		return "unknown pipeline error"
	}
	if e.Stage != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WithContext attaches a key/value pair to the error context and
// returns the error for chaining.
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewSourceError creates a terminal source error.
func NewSourceError(stage, message string, cause error) *PipelineError {
	return &PipelineError{Type: TypeSource, Stage: stage, Message: message, Cause: cause}
}

// NewTransformError creates a recoverable per-column transform error.
func NewTransformError(stage, message string, cause error) *PipelineError {
	return &PipelineError{Type: TypeTransform, Stage: stage, Message: message, Cause: cause}
}

// NewInferenceError creates a recoverable per-record inference error.
func NewInferenceError(stage, message string, cause error) *PipelineError {
	return &PipelineError{Type: TypeInference, Stage: stage, Message: message, Cause: cause}
}

// NewSinkError creates a terminal sink error.
func NewSinkError(stage, message string, cause error) *PipelineError {
	return &PipelineError{Type: TypeSink, Stage: stage, Message: message, Cause: cause}
}

// NewConfigError creates a terminal configuration error.
func NewConfigError(message string, cause error) *PipelineError {
	return &PipelineError{Type: TypeConfig, Message: message, Cause: cause}
}

// GetType returns the pipeline error type, or the empty string for
// nil and non-pipeline errors.
func GetType(err error) Type {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsType reports whether err is a PipelineError of the given type.
func IsType(err error, t Type) bool {
	return GetType(err) == t
}

// IsTerminal reports whether the error aborts the pipeline. Transform
// and inference errors are recovered locally; everything else aborts.
func IsTerminal(err error) bool {
	switch GetType(err) {
	case TypeTransform, TypeInference:
		return false
	case "":
		return err != nil
	default:
		return true
	}
}
