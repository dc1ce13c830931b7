package calculus

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Errors returned by integration and differentiation.
var (
	ErrInsufficientPoints = errors.New("calculus: insufficient points")
	ErrDegenerateAbscissa = errors.New("calculus: duplicate x values")
	ErrInvalidMethod      = errors.New("calculus: invalid integration method")
	ErrInvalidRange       = errors.New("calculus: invalid integration range")
	ErrOutOfRange         = errors.New("calculus: limit outside data range")
	ErrLengthMismatch     = errors.New("calculus: x/y length mismatch")
)

// prepare validates and sorts the input.
func prepare(x, y []float64, minPoints int) (xs, ys []float64, err error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < minPoints {
		return nil, nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientPoints, minPoints, len(x))
	}
	xs, ys, dup := core.SortXY(x, y)
	if dup >= 0 {
		return nil, nil, fmt.Errorf("%w: x=%g appears more than once", ErrDegenerateAbscissa, xs[dup])
	}
	return xs, ys, nil
}
