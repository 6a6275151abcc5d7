package wellpath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the root of every input error raised by the solver
	// and the accumulator.
	ErrInvalidInput = errors.New("wellpath: invalid input")

	// ErrEmptySurvey is returned when there is nothing to accumulate.
	ErrEmptySurvey = fmt.Errorf("%w: survey has no measurements", ErrInvalidInput)
)

// InputError reports a non-finite value in a measurement.
type InputError struct {
	Index int // position in the caller's sequence, -1 when unknown
	Field string
	Value float64
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("wellpath: invalid %s value %v", e.Field, e.Value)
	}
	return fmt.Sprintf("wellpath: measurement %d: invalid %s value %v", e.Index, e.Field, e.Value)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// WarningKind classifies a recoverable problem found while composing geometry.
type WarningKind string

const (
	// DegenerateSegment: the record's range yields fewer than two points.
	DegenerateSegment WarningKind = "degenerate_segment"
	// PartialCoverage: the record's range extends past the surveyed stations
	// and the drawn segment was clamped to what is available.
	PartialCoverage WarningKind = "partial_coverage"
	// EmptyTrajectory: there are not enough stations to draw anything.
	EmptyTrajectory WarningKind = "empty_trajectory"
)

// Warning is collected alongside a composition instead of failing it.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Label   string      `json:"label,omitempty"`
	Message string      `json:"message"`
}
