package fit

import (
	"errors"
	"fmt"
)

// Validation errors. They are returned before any numeric work starts.
var (
	ErrNoCurveAssigned         = errors.New("fit: no curve assigned")
	ErrInvalidRange            = errors.New("fit: invalid range")
	ErrInvalidModel            = errors.New("fit: invalid model")
	ErrParameterCount          = errors.New("fit: parameter count does not match the model")
	ErrNoFreeParameters        = errors.New("fit: no free parameters")
	ErrUninitializedParameters = errors.New("fit: parameters without initial value")
	ErrTooFewPoints            = errors.New("fit: too few points")
	ErrMissingErrors           = errors.New("fit: instrumental weighting needs y errors")
	ErrZeroError               = errors.New("fit: zero y error")
	ErrZeroWeight              = errors.New("fit: statistical weighting of y = 0")
	ErrWeightLengthMismatch    = errors.New("fit: weight column length mismatch")
	ErrUnknownAlgorithm        = errors.New("fit: unknown algorithm")
	ErrUnknownWeighting        = errors.New("fit: unknown weighting")
	ErrNonFinite               = errors.New("fit: model is not finite at the initial parameters")
	ErrUnknownParameter        = errors.New("fit: unknown parameter")
	ErrInvalidSetting          = errors.New("fit: invalid setting")
)

// ErrSingularJacobian reports that the normal equations could not be solved.
var ErrSingularJacobian = errors.New("fit: singular Jacobian")

// Status is the terminal state of a fit.
type Status int

const (
	StatusConverged Status = iota
	StatusMaxIterations
	StatusSingularJacobian
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max iterations reached"
	case StatusSingularJacobian:
		return "singular Jacobian"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Error is a numeric runtime failure. Partial results are discarded.
type Error struct {
	Status     Status
	Iterations int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %d iterations", e.Err, e.Iterations)
}

func (e *Error) Unwrap() error { return e.Err }
