package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Errors returned by interpolation.
var (
	ErrInsufficientPoints    = errors.New("interp: insufficient points")
	ErrDegenerateAbscissa    = errors.New("interp: duplicate x values")
	ErrInvalidRange          = errors.New("interp: invalid range")
	ErrInvalidMethod         = errors.New("interp: invalid method")
	ErrNonPositivePointCount = errors.New("interp: point count must be >= 2")
	ErrOutOfRange            = errors.New("interp: requested range outside data")
	ErrLengthMismatch        = errors.New("interp: x/y length mismatch")
)

// Method selects the interpolant.
type Method int

const (
	MethodLinear Method = iota
	MethodCubic
	MethodAkima
)

func (m Method) String() string {
	switch m {
	case MethodLinear:
		return "linear"
	case MethodCubic:
		return "cubic"
	case MethodAkima:
		return "akima"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps "linear", "cubic" or "akima" to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "linear":
		return MethodLinear, nil
	case "cubic", "spline":
		return MethodCubic, nil
	case "akima":
		return MethodAkima, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

// MinPoints returns the number of samples the method requires.
func (m Method) MinPoints() int {
	if m == MethodLinear {
		return 2
	}
	return 4
}

// Curve is a piecewise interpolant over sorted, distinct abscissae.
type Curve struct {
	method Method
	x, y   []float64
	slope  []float64 // dy/dx at each knot, nil for linear
}

// New builds an interpolant. x need not be sorted; it is copied.
func New(x, y []float64, method Method) (*Curve, error) {
	if method < MethodLinear || method > MethodAkima {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMethod, int(method))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if need := method.MinPoints(); len(x) < need {
		return nil, fmt.Errorf("%w: %s needs %d, have %d", ErrInsufficientPoints, method, need, len(x))
	}
	xs, ys, dup := core.SortXY(x, y)
	if dup >= 0 {
		return nil, fmt.Errorf("%w: x=%g appears more than once", ErrDegenerateAbscissa, xs[dup])
	}

	c := &Curve{method: method, x: xs, y: ys}
	switch method {
	case MethodCubic:
		c.slope = naturalSplineSlopes(xs, ys)
	case MethodAkima:
		c.slope = akimaSlopes(xs, ys)
	}
	return c, nil
}

// Domain returns the sampled x range.
func (c *Curve) Domain() (lo, hi float64) {
	return c.x[0], c.x[len(c.x)-1]
}

// At evaluates the interpolant at v.
func (c *Curve) At(v float64) float64 {
	n := len(c.x)
	i := sort.SearchFloat64s(c.x, v) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	h := c.x[i+1] - c.x[i]
	s := (v - c.x[i]) / h

	if c.slope == nil {
		return c.y[i] + s*(c.y[i+1]-c.y[i])
	}
	return hermite(s, h, c.y[i], c.y[i+1], c.slope[i], c.slope[i+1])
}

// hermite evaluates the cubic with values y0, y1 and slopes t0, t1 at the
// ends of an interval of width h, at normalised position s.
func hermite(s, h, y0, y1, t0, t1 float64) float64 {
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*y0 + h10*h*t0 + h01*y1 + h11*h*t1
}

// naturalSplineSlopes solves the natural cubic spline for its second
// derivatives and converts them to knot slopes.
func naturalSplineSlopes(x, y []float64) []float64 {
	n := len(x)
	m := make([]float64, n) // second derivatives, zero at both ends

	// Thomas algorithm on the interior equations.
	sub := make([]float64, n)
	diag := make([]float64, n)
	rhs := make([]float64, n)
	for i := 1; i < n-1; i++ {
		h0 := x[i] - x[i-1]
		h1 := x[i+1] - x[i]
		sub[i] = h0
		diag[i] = 2 * (h0 + h1)
		rhs[i] = 6 * ((y[i+1]-y[i])/h1 - (y[i]-y[i-1])/h0)
	}
	for i := 2; i < n-1; i++ {
		w := sub[i] / diag[i-1]
		diag[i] -= w * (x[i] - x[i-1])
		rhs[i] -= w * rhs[i-1]
	}
	for i := n - 2; i >= 1; i-- {
		sup := x[i+1] - x[i]
		next := 0.0
		if i+1 < n-1 {
			next = m[i+1]
		}
		m[i] = (rhs[i] - sup*next) / diag[i]
	}

	slope := make([]float64, n)
	for i := 0; i < n-1; i++ {
		h := x[i+1] - x[i]
		slope[i] = (y[i+1]-y[i])/h - h*(2*m[i]+m[i+1])/6
	}
	h := x[n-1] - x[n-2]
	slope[n-1] = (y[n-1]-y[n-2])/h + h*(m[n-2]+2*m[n-1])/6
	return slope
}

// akimaSlopes computes Akima's knot slopes with the classic end-point
// extrapolation of secant slopes.
func akimaSlopes(x, y []float64) []float64 {
	n := len(x)
	// d[k+2] is the secant slope of interval k; two ghost slopes on each side.
	d := make([]float64, n+3)
	for k := 0; k < n-1; k++ {
		d[k+2] = (y[k+1] - y[k]) / (x[k+1] - x[k])
	}
	d[1] = 2*d[2] - d[3]
	d[0] = 2*d[1] - d[2]
	d[n+1] = 2*d[n] - d[n-1]
	d[n+2] = 2*d[n+1] - d[n]

	slope := make([]float64, n)
	for i := 0; i < n; i++ {
		// knot i sits between secants d[i+1] (left) and d[i+2] (right)
		w1 := math.Abs(d[i+3] - d[i+2])
		w2 := math.Abs(d[i+1] - d[i])
		if w1+w2 == 0 {
			slope[i] = 0.5 * (d[i+1] + d[i+2])
			continue
		}
		slope[i] = (w1*d[i+1] + w2*d[i+2]) / (w1 + w2)
	}
	return slope
}
