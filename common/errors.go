package common

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrorInvalidValue = errors.New("invalid value")

	// ErrorEmptySampleSet is returned when a triple has no samples at all.
	ErrorEmptySampleSet = errors.New("empty sample set")

	// ErrorEmptyAfterFilter means every sample fell below the log-scale cutoff.
	ErrorEmptyAfterFilter = errors.New("no samples left after boundary filter")

	// ErrorDegenerateSampleSet means all samples are identical, so a kernel
	// estimate has zero width.
	ErrorDegenerateSampleSet = errors.New("degenerate sample set")

	// ErrorZeroArea is a warning: the curve could not be normalized and is
	// returned unmodified.
	ErrorZeroArea = errors.New("density curve has zero area")

	ErrorGridMismatch   = errors.New("evaluation grid mismatch")
	ErrorDuplicateModel = errors.New("model already present in comparison")

	// ErrorMissingParameter marks an absent (model, parameter) pair. It is a
	// skip condition, not a failure.
	ErrorMissingParameter = errors.New("parameter not present in posterior")
)

// TripleError carries the (event, model, parameter) a failure belongs to.
type TripleError struct {
	Event     string
	Model     string
	Parameter string
	Err       error
}

func NewTripleError(event, model, parameter string, err error) *TripleError {
	return &TripleError{
		Event:     event,
		Model:     model,
		Parameter: parameter,
		Err:       err,
	}
}

func (e *TripleError) Error() string {
	return fmt.Sprintf("event %s, model %s, parameter %s: %v", e.Event, e.Model, e.Parameter, e.Err)
}

func (e *TripleError) Unwrap() error {
	return e.Err
}

func (e *TripleError) Cause() error {
	return e.Err
}
