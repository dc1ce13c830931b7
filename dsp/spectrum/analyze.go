package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
	"github.com/cwbudde/algo-curvefit/dsp/window"
)

// ErrInvalidSampling is returned for a non-positive or non-finite sampling
// interval.
var ErrInvalidSampling = errors.New("spectrum: sampling interval must be > 0")

// Spectrum is the tabulated result of a transform.
type Spectrum struct {
	Frequency []float64
	Re        []float64
	Im        []float64
	Amplitude []float64
	// Phase is in radians.
	Phase []float64
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Frequency) }

// Option configures [Analyze].
type Option func(*config)

type config struct {
	direction fft.Direction
	normalize bool
	shift     bool
	unwrap    bool
	window    window.Type
}

func defaultConfig() config {
	return config{direction: fft.Forward}
}

// WithDirection selects the transform direction. The default is forward.
func WithDirection(d fft.Direction) Option {
	return func(c *config) { c.direction = d }
}

// WithNormalize scales the amplitude so that its maximum is 1.
func WithNormalize() Option {
	return func(c *config) { c.normalize = true }
}

// WithShift reorders the output so frequencies ascend from the most negative
// one, placing zero frequency in the centre.
func WithShift() Option {
	return func(c *config) { c.shift = true }
}

// WithPhaseUnwrap removes 2*pi jumps from the phase column.
func WithPhaseUnwrap() Option {
	return func(c *config) { c.unwrap = true }
}

// WithWindow tapers the input with w before the transform and divides the
// result by the window's coherent gain.
func WithWindow(w window.Type) Option {
	return func(c *config) { c.window = w }
}

// Analyze transforms buf and tabulates frequency, amplitude and phase.
// sampling is the spacing of the input samples; the frequency resolution
// is 1/(N*sampling).
func Analyze(buf fft.Buffer, sampling float64, opts ...Option) (Spectrum, error) {
	if !(sampling > 0) || !core.IsFinite(sampling) {
		return Spectrum{}, fmt.Errorf("%w: %g", ErrInvalidSampling, sampling)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	gain := 1.0
	if cfg.window != window.Rectangular {
		buf = fft.Buffer{
			Re: core.Clone(buf.Re),
			Im: core.Clone(buf.Im),
		}
		gain = window.Apply(cfg.window, buf.Re)
		window.Apply(cfg.window, buf.Im)
	}

	out, err := fft.Transform(buf, cfg.direction)
	if err != nil {
		return Spectrum{}, err
	}
	if gain != 1 && gain != 0 {
		for i := range out.Re {
			out.Re[i] /= gain
			out.Im[i] /= gain
		}
	}

	n := out.Len()
	s := Spectrum{
		Frequency: Frequencies(n, sampling),
		Re:        out.Re,
		Im:        out.Im,
		Amplitude: make([]float64, n),
	}
	MagnitudeFromParts(s.Amplitude, out.Re, out.Im)

	s.Phase = make([]float64, n)
	for i := range s.Phase {
		s.Phase[i] = math.Atan2(out.Im[i], out.Re[i])
	}

	if cfg.normalize {
		Normalize(s.Amplitude)
	}
	if cfg.shift {
		s.Frequency = Shift(s.Frequency)
		s.Re = Shift(s.Re)
		s.Im = Shift(s.Im)
		s.Amplitude = Shift(s.Amplitude)
		s.Phase = Shift(s.Phase)
	}
	if cfg.unwrap {
		s.Phase = UnwrapPhase(s.Phase)
	}
	return s, nil
}

// Frequencies returns the frequency of each of n bins for the given sample
// spacing in transform order: 0, df, ..., then the negative frequencies.
func Frequencies(n int, sampling float64) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	df := 1 / (float64(n) * sampling)
	half := (n + 1) / 2
	for k := range out {
		if k < half {
			out[k] = float64(k) * df
		} else {
			out[k] = float64(k-n) * df
		}
	}
	return out
}

// Shift returns a copy of data rotated so the zero-frequency bin moves to
// index n/2.
func Shift(data []float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	h := n / 2
	for i := range data {
		out[(i+h)%n] = data[i]
	}
	return out
}

// Normalize scales data in place so its largest absolute value is 1.
// An all-zero input is left unchanged.
func Normalize(data []float64) {
	peak := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	inv := 1 / peak
	for i := range data {
		data[i] *= inv
	}
}
