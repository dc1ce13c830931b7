package fftfilter

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
)

// Errors returned by [Apply].
var (
	ErrUnknownFilterKind  = errors.New("fftfilter: unknown filter kind")
	ErrInvalidCutoff      = errors.New("fftfilter: invalid cutoff frequency")
	ErrInsufficientPoints = errors.New("fftfilter: insufficient points")
	ErrNonUniformSampling = errors.New("fftfilter: x values are not uniformly spaced")
	ErrDegenerateAbscissa = errors.New("fftfilter: duplicate x values")
	ErrLengthMismatch     = errors.New("fftfilter: x/y length mismatch")
)

// Kind is the band shape of a filter.
type Kind int

const (
	LowPass Kind = iota + 1
	HighPass
	BandPass
	BandBlock
)

func (k Kind) String() string {
	switch k {
	case LowPass:
		return "low-pass"
	case HighPass:
		return "high-pass"
	case BandPass:
		return "band-pass"
	case BandBlock:
		return "band-block"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a name such as "lowpass" or "band-block" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "low", "lowpass", "low-pass":
		return LowPass, nil
	case "high", "highpass", "high-pass":
		return HighPass, nil
	case "bandpass", "band-pass":
		return BandPass, nil
	case "bandblock", "band-block", "bandstop", "band-stop":
		return BandBlock, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilterKind, s)
}

// Filter describes one band filter. Low- and high-pass filters use Cutoff;
// band filters use Low and High.
type Filter struct {
	Kind   Kind
	Cutoff float64
	Low    float64
	High   float64
}

// Validate checks the kind and the cutoff frequencies.
func (f Filter) Validate() error {
	switch f.Kind {
	case LowPass, HighPass:
		if !(f.Cutoff > 0) || !core.IsFinite(f.Cutoff) {
			return fmt.Errorf("%w: %s cutoff %g", ErrInvalidCutoff, f.Kind, f.Cutoff)
		}
	case BandPass, BandBlock:
		if !(f.Low >= 0) || !(f.High > f.Low) || !core.IsFinite(f.High) {
			return fmt.Errorf("%w: %s band [%g, %g]", ErrInvalidCutoff, f.Kind, f.Low, f.High)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFilterKind, int(f.Kind))
	}
	return nil
}

// Option configures [Apply].
type Option func(*config)

type config struct {
	offset    bool
	tolerance float64
}

func defaultConfig() config {
	return config{tolerance: 1e-6}
}

// WithOffset keeps the zero-frequency term for high-pass and band-pass
// filters, preserving the curve's mean.
func WithOffset() Option {
	return func(c *config) { c.offset = true }
}

// WithSpacingTolerance sets the relative tolerance used to decide whether
// x is uniformly sampled.
func WithSpacingTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// Apply filters the curve (x, y). The points are returned sorted by x.
func Apply(x, y []float64, f Filter, opts ...Option) (xs, ys []float64, err error) {
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return nil, nil, fmt.Errorf("%w: need 2, have %d", ErrInsufficientPoints, len(x))
	}
	xs, ys, dup := core.SortXY(x, y)
	if dup >= 0 {
		return nil, nil, fmt.Errorf("%w: x=%g", ErrDegenerateAbscissa, xs[dup])
	}
	dt, ok := core.UniformStep(xs, cfg.tolerance)
	if !ok {
		return nil, nil, ErrNonUniformSampling
	}

	bins, err := fft.ForwardReal(ys)
	if err != nil {
		return nil, nil, err
	}
	mask := Mask(len(ys), dt, f, cfg.offset)

	n := len(bins)
	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range bins {
		re[i], im[i] = real(v), imag(v)
	}
	vecmath.MulBlockInPlace(re, mask)
	vecmath.MulBlockInPlace(im, mask)
	for i := range bins {
		bins[i] = complex(re[i], im[i])
	}

	out, err := fft.InverseReal(bins)
	if err != nil {
		return nil, nil, err
	}
	return xs, out, nil
}

// Mask returns the 0/1 gain of each of the n bins of a record with sampling
// interval dt.
func Mask(n int, dt float64, f Filter, offset bool) []float64 {
	mask := make([]float64, n)
	df := 1 / (float64(n) * dt)
	for k := range mask {
		freq := float64(min(k, n-k)) * df
		if pass(freq, f) {
			mask[k] = 1
		}
	}
	if offset && (f.Kind == HighPass || f.Kind == BandPass) {
		mask[0] = 1
	}
	return mask
}

func pass(freq float64, f Filter) bool {
	switch f.Kind {
	case LowPass:
		return freq <= f.Cutoff
	case HighPass:
		return freq >= f.Cutoff
	case BandPass:
		return freq >= f.Low && freq <= f.High
	case BandBlock:
		return freq < f.Low || freq > f.High
	}
	return false
}
