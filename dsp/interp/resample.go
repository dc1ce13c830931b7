package interp

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Option configures [Resample].
type Option func(*config)

type config struct {
	strict bool
}

// WithStrictRange rejects target ranges that extend beyond the data.
func WithStrictRange() Option {
	return func(c *config) { c.strict = true }
}

// CheckGrid validates the arguments of [Resample] that do not depend on the
// data.
func CheckGrid(method Method, from, to float64, count int) error {
	if method < MethodLinear || method > MethodAkima {
		return fmt.Errorf("%w: %d", ErrInvalidMethod, int(method))
	}
	if math.IsNaN(from) || math.IsNaN(to) || to <= from {
		return fmt.Errorf("%w: to %g must exceed from %g", ErrInvalidRange, to, from)
	}
	if count < 2 {
		return fmt.Errorf("%w: %d", ErrNonPositivePointCount, count)
	}
	return nil
}

// Resample evaluates the interpolant of (x, y) at count evenly spaced points
// over [from, to].
func Resample(x, y []float64, method Method, from, to float64, count int, opts ...Option) (xs, ys []float64, err error) {
	if err := CheckGrid(method, from, to, count); err != nil {
		return nil, nil, err
	}
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := New(x, y, method)
	if err != nil {
		return nil, nil, err
	}
	if cfg.strict {
		lo, hi := c.Domain()
		if from < lo || to > hi {
			return nil, nil, fmt.Errorf("%w: [%g, %g] not within [%g, %g]", ErrOutOfRange, from, to, lo, hi)
		}
	}

	xs = core.Linspace(from, to, count)
	ys = make([]float64, count)
	for i, v := range xs {
		ys[i] = c.At(v)
	}
	return xs, ys, nil
}
