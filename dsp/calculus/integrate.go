package calculus

import (
	"fmt"
	"math"
	"sort"
)

// Method is the integration order code in [MethodTrapezoidal, MethodQuintic].
type Method int

const (
	MethodTrapezoidal Method = iota + 1
	MethodQuadratic
	MethodCubic
	MethodQuartic
	MethodQuintic
)

// Valid reports whether m is a known method code.
func (m Method) Valid() bool {
	return m >= MethodTrapezoidal && m <= MethodQuintic
}

func (m Method) String() string {
	switch m {
	case MethodTrapezoidal:
		return "trapezoidal"
	case MethodQuadratic:
		return "quadratic"
	case MethodCubic:
		return "cubic"
	case MethodQuartic:
		return "quartic"
	case MethodQuintic:
		return "quintic"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Result holds the integral and its running sum.
type Result struct {
	// Area is the integral from the lower to the upper limit.
	Area float64
	// X holds the samples inside [lower, upper], ascending.
	X []float64
	// Cumulative[i] is the integral from lower to X[i].
	Cumulative []float64
}

// Option configures integration.
type Option func(*config)

type config struct {
	strict bool
}

// WithStrictLimits rejects limits outside the sampled x range instead of
// extrapolating the edge polynomial.
func WithStrictLimits() Option {
	return func(c *config) { c.strict = true }
}

// CheckLimits validates the method code and the limits without looking at
// any data.
func CheckLimits(method Method, lower, upper float64) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %d (want 1..5)", ErrInvalidMethod, int(method))
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return fmt.Errorf("%w: lower %g > upper %g", ErrInvalidRange, lower, upper)
	}
	return nil
}

// Integrate integrates y(x) from lower to upper.
//
// The input need not be sorted. Limits outside the data are handled by
// extrapolating the nearest interpolating polynomial unless
// [WithStrictLimits] is given.
func Integrate(x, y []float64, method Method, lower, upper float64, opts ...Option) (Result, error) {
	if err := CheckLimits(method, lower, upper); err != nil {
		return Result{}, err
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	xs, ys, err := prepare(x, y, 2)
	if err != nil {
		return Result{}, err
	}
	n := len(xs)
	if cfg.strict && (lower < xs[0] || upper > xs[n-1]) {
		return Result{}, fmt.Errorf("%w: [%g, %g] not within [%g, %g]", ErrOutOfRange, lower, upper, xs[0], xs[n-1])
	}

	degree := int(method)
	if degree > n-1 {
		degree = n - 1
	}

	p := panels{x: xs, y: ys, degree: degree}

	first := sort.SearchFloat64s(xs, lower)
	res := Result{}
	prev := lower
	area := 0.0
	for i := first; i < n && xs[i] <= upper; i++ {
		area += p.integrate(prev, xs[i])
		prev = xs[i]
		res.X = append(res.X, xs[i])
		res.Cumulative = append(res.Cumulative, area)
	}
	area += p.integrate(prev, upper)
	res.Area = area
	return res, nil
}

// panels integrates the piecewise interpolating polynomial.
type panels struct {
	x, y   []float64
	degree int
}

// Three-point Gauss–Legendre is exact for polynomials up to degree 5.
var (
	glNodes   = [3]float64{-0.7745966692414834, 0, 0.7745966692414834}
	glWeights = [3]float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}
)

func (p panels) integrate(a, b float64) float64 {
	if b <= a {
		return 0
	}
	mid := 0.5 * (a + b)
	start := p.window(mid)
	xs := p.x[start : start+p.degree+1]
	ys := p.y[start : start+p.degree+1]

	half := 0.5 * (b - a)
	sum := 0.0
	for k, t := range glNodes {
		sum += glWeights[k] * neville(xs, ys, mid+half*t)
	}
	return sum * half
}

// window returns the first index of the degree+1 samples used for the
// interval containing v.
func (p panels) window(v float64) int {
	n := len(p.x)
	i := sort.SearchFloat64s(p.x, v) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	start := i - (p.degree-1)/2
	if start < 0 {
		start = 0
	}
	if start > n-p.degree-1 {
		start = n - p.degree - 1
	}
	return start
}

// neville evaluates the polynomial through (xs, ys) at v.
func neville(xs, ys []float64, v float64) float64 {
	var buf [6]float64
	m := len(xs)
	q := buf[:m]
	copy(q, ys)
	for k := 1; k < m; k++ {
		for i := 0; i < m-k; i++ {
			q[i] = ((v-xs[i+k])*q[i] + (xs[i]-v)*q[i+1]) / (xs[i] - xs[i+k])
		}
	}
	return q[0]
}
