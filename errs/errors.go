// Package errs defines the sentinel errors shared by all ppvlaw packages.
//
// Callers match them with errors.Is; producing code wraps them with
// fmt.Errorf("%w: ...") to attach detail without losing the sentinel.
package errs

import "errors"

var (
	// ErrInvalidInput reports malformed, insufficient or non-finite
	// observation data.
	ErrInvalidInput = errors.New("invalid input data")

	// ErrDegenerateFit reports a regression with no residual degrees of
	// freedom or no x variance.
	ErrDegenerateFit = errors.New("degenerate fit")

	// ErrInvalidParameter reports an out-of-range analysis parameter
	// (confidence, coverage, beta, distance, PPV threshold, grid size).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoSolution reports a charge inversion with no admissible root,
	// including a non-decreasing attenuation law.
	ErrNoSolution = errors.New("no admissible solution")
)
