package analysis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/calculus"
	"github.com/cwbudde/algo-curvefit/dsp/conv"
	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
	"github.com/cwbudde/algo-curvefit/dsp/fftfilter"
	"github.com/cwbudde/algo-curvefit/dsp/interp"
	"github.com/cwbudde/algo-curvefit/dsp/smooth"
	"github.com/cwbudde/algo-curvefit/dsp/spectrum"
	"github.com/cwbudde/algo-curvefit/dsp/window"
)

// ErrInPlaceUnsupported is returned for operations whose result does not
// map one-to-one onto the source rows.
var ErrInPlaceUnsupported = errors.New("analysis: operation cannot write in place")

// samplingTolerance is the relative spacing tolerance for uniform x.
const samplingTolerance = 1e-6

func noInPlace(t Target, op string) error {
	if t.InPlace {
		return fmt.Errorf("%w: %s", ErrInPlaceUnsupported, op)
	}
	return nil
}

// Differentiate writes dy/dx of the target.
func (e *Engine) Differentiate(t Target) (string, error) {
	w, err := checkTarget(t)
	if err != nil {
		return "", err
	}
	sel, err := collect(t)
	if err != nil {
		return "", err
	}
	x, dy, err := calculus.Differentiate(sel.x, sel.y)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, w, "derivative", sel, x, dy)
	if err != nil {
		return "", err
	}
	e.info("differentiated", "source", t.Source.Name(), "result", name)
	e.status("Derivative of %s: %d points written to %s", t.Source.Name(), len(dy), name)
	return name, nil
}

// Integrate integrates the target from lower to upper and writes the
// running integral as a new curve.
func (e *Engine) Integrate(t Target, method calculus.Method, lower, upper float64, strict bool) (calculus.Result, error) {
	if _, err := checkTarget(t); err != nil {
		return calculus.Result{}, err
	}
	if err := noInPlace(t, "integrate"); err != nil {
		return calculus.Result{}, err
	}
	if err := calculus.CheckLimits(method, lower, upper); err != nil {
		return calculus.Result{}, err
	}
	sel, err := collect(t)
	if err != nil {
		return calculus.Result{}, err
	}
	var opts []calculus.Option
	if strict {
		opts = append(opts, calculus.WithStrictLimits())
	}
	res, err := calculus.Integrate(sel.x, sel.y, method, lower, upper, opts...)
	if err != nil {
		return calculus.Result{}, err
	}
	name, err := e.emit(t, nil, "integral", sel, res.X, res.Cumulative)
	if err != nil {
		return calculus.Result{}, err
	}
	e.info("integrated", "source", t.Source.Name(), "method", method.String(), "area", res.Area)
	e.status("Integration of %s from %g to %g (%s): area = %g", t.Source.Name(), lower, upper, method, res.Area)
	e.status("Running integral written to %s", name)
	return res, nil
}

// Interpolate resamples the target onto count uniform points in [from, to].
func (e *Engine) Interpolate(t Target, method interp.Method, from, to float64, count int, strict bool) (string, error) {
	if _, err := checkTarget(t); err != nil {
		return "", err
	}
	if err := noInPlace(t, "interpolate"); err != nil {
		return "", err
	}
	if err := interp.CheckGrid(method, from, to, count); err != nil {
		return "", err
	}
	sel, err := collect(t)
	if err != nil {
		return "", err
	}
	var opts []interp.Option
	if strict {
		opts = append(opts, interp.WithStrictRange())
	}
	x, y, err := interp.Resample(sel.x, sel.y, method, from, to, count, opts...)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, nil, "interpolated", sel, x, y)
	if err != nil {
		return "", err
	}
	e.status("Interpolation (%s) of %s: %d points from %g to %g written to %s", method, t.Source.Name(), count, from, to, name)
	return name, nil
}

// Smooth smooths the target. An order given to a method that does not use
// one is ignored with a warning.
func (e *Engine) Smooth(t Target, s smooth.Settings) (string, error) {
	w, err := checkTarget(t)
	if err != nil {
		return "", err
	}
	if err := s.Validate(); err != nil {
		return "", err
	}
	if s.OrderIgnored() {
		e.warning("polynomial order ignored", "method", s.Method.String(), "order", s.Order)
	}
	sel, err := collect(t)
	if err != nil {
		return "", err
	}
	x, y, err := smooth.Smooth(sel.x, sel.y, s)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, w, "smoothed", sel, x, y)
	if err != nil {
		return "", err
	}
	e.status("Smoothing (%s) of %s written to %s", s.Method, t.Source.Name(), name)
	return name, nil
}

// Filter applies an FFT band filter to the target.
func (e *Engine) Filter(t Target, f fftfilter.Filter, keepOffset bool) (string, error) {
	w, err := checkTarget(t)
	if err != nil {
		return "", err
	}
	if err := f.Validate(); err != nil {
		return "", err
	}
	sel, err := collect(t)
	if err != nil {
		return "", err
	}
	var opts []fftfilter.Option
	if keepOffset {
		opts = append(opts, fftfilter.WithOffset())
	}
	x, y, err := fftfilter.Apply(sel.x, sel.y, f, opts...)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, w, "filtered", sel, x, y)
	if err != nil {
		return "", err
	}
	e.status("%s filter of %s written to %s", f.Kind, t.Source.Name(), name)
	return name, nil
}

// TransformOptions configures [Engine.Transform].
type TransformOptions struct {
	// Imag is an optional curve holding the imaginary part.
	Imag      data.Accessor
	Inverse   bool
	Normalize bool
	Shift     bool
	Unwrap    bool
	// Window tapers the input before the transform.
	Window window.Type
}

// Transform computes the spectrum of the target and writes amplitude and
// phase curves over the frequency axis. x must be uniformly sampled.
func (e *Engine) Transform(t Target, o TransformOptions) (spectrum.Spectrum, error) {
	if _, err := checkTarget(t); err != nil {
		return spectrum.Spectrum{}, err
	}
	if err := noInPlace(t, "transform"); err != nil {
		return spectrum.Spectrum{}, err
	}
	sel, err := collect(t)
	if err != nil {
		return spectrum.Spectrum{}, err
	}
	step, ok := core.UniformStep(sel.x, samplingTolerance)
	if !ok {
		return spectrum.Spectrum{}, fmt.Errorf("%w: curve %q", ErrNonUniform, t.Source.Name())
	}

	buf := fft.FromReal(sel.y)
	if o.Imag != nil {
		im, err := collect(Target{Source: o.Imag, Range: t.Range})
		if err != nil {
			return spectrum.Spectrum{}, err
		}
		if len(im.y) != len(sel.y) {
			return spectrum.Spectrum{}, fmt.Errorf("%w: imaginary curve %q has %d points, real %d", data.ErrLengthMismatch, o.Imag.Name(), len(im.y), len(sel.y))
		}
		copy(buf.Im, im.y)
	}

	var opts []spectrum.Option
	dir := fft.Forward
	if o.Inverse {
		dir = fft.Inverse
	}
	opts = append(opts, spectrum.WithDirection(dir))
	if o.Normalize {
		opts = append(opts, spectrum.WithNormalize())
	}
	if o.Shift {
		opts = append(opts, spectrum.WithShift())
	}
	if o.Unwrap {
		opts = append(opts, spectrum.WithPhaseUnwrap())
	}
	if o.Window != window.Rectangular {
		opts = append(opts, spectrum.WithWindow(o.Window))
	}
	s, err := spectrum.Analyze(buf, step, opts...)
	if err != nil {
		return spectrum.Spectrum{}, err
	}

	base := t.curveName("fft")
	for _, c := range []data.Curve{
		{Name: base + "-amplitude", X: s.Frequency, Y: s.Amplitude},
		{Name: base + "-phase", X: s.Frequency, Y: s.Phase},
	} {
		if err := e.sink.NewCurve(c); err != nil {
			return spectrum.Spectrum{}, err
		}
	}
	e.info("transformed", "source", t.Source.Name(), "direction", dir.String(), "bins", s.Len())
	e.status("%s FFT of %s: %d bins, sampling %g, written to %s", dir, t.Source.Name(), s.Len(), step, base)
	return s, nil
}

// Convolve convolves the target with a centred instrument response.
func (e *Engine) Convolve(t Target, response data.Accessor) (string, error) {
	w, err := checkTarget(t)
	if err != nil {
		return "", err
	}
	sel, resp, err := pair(t, response)
	if err != nil {
		return "", err
	}
	if err := conv.CheckResponse(len(sel.y), len(resp.y)); err != nil {
		return "", err
	}
	y, err := conv.ConvolveResponse(sel.y, resp.y)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, w, "convolved", sel, sel.x, y)
	if err != nil {
		return "", err
	}
	e.status("Convolution of %s with %s written to %s", t.Source.Name(), response.Name(), name)
	return name, nil
}

// Deconvolve removes a known response from the target.
func (e *Engine) Deconvolve(t Target, response data.Accessor, opts conv.DeconvOptions) (string, error) {
	if _, err := checkTarget(t); err != nil {
		return "", err
	}
	if err := noInPlace(t, "deconvolve"); err != nil {
		return "", err
	}
	sel, resp, err := pair(t, response)
	if err != nil {
		return "", err
	}
	y, err := conv.Deconvolve(sel.y, resp.y, opts)
	if err != nil {
		return "", err
	}
	name, err := e.emit(t, nil, "deconvolved", sel, sel.x[:len(y)], y)
	if err != nil {
		return "", err
	}
	e.status("Deconvolution of %s by %s written to %s", t.Source.Name(), response.Name(), name)
	return name, nil
}

// Correlate cross-correlates the target with other, or auto-correlates it
// when other is nil. The x axis of the result is the lag, in x units when
// the target is uniformly sampled and in samples otherwise. normalize
// scales the result by the signal norms so identical shapes peak at 1.
func (e *Engine) Correlate(t Target, other data.Accessor, normalize bool) (string, error) {
	if _, err := checkTarget(t); err != nil {
		return "", err
	}
	if err := noInPlace(t, "correlate"); err != nil {
		return "", err
	}
	sel, err := collect(t)
	if err != nil {
		return "", err
	}

	var (
		y     []float64
		lagsB = len(sel.y)
		with  = "itself"
	)
	if other == nil {
		if normalize {
			y, err = conv.AutoCorrelateNormalized(sel.y)
		} else {
			y, err = conv.AutoCorrelate(sel.y)
		}
	} else {
		b, cerr := collect(Target{Source: other})
		if cerr != nil {
			return "", cerr
		}
		lagsB, with = len(b.y), other.Name()
		if normalize {
			y, err = conv.CorrelateNormalized(sel.y, b.y)
		} else {
			y, err = conv.Correlate(sel.y, b.y)
		}
	}
	if err != nil {
		return "", err
	}

	lags := conv.Lags(len(sel.y), lagsB)
	if step, ok := core.UniformStep(sel.x, samplingTolerance); ok {
		for i := range lags {
			lags[i] *= step
		}
	}
	op := "correlation"
	if other == nil {
		op = "autocorrelation"
	}
	name, err := e.emit(t, nil, op, sel, lags, y)
	if err != nil {
		return "", err
	}
	peak, value := conv.FindPeak(y)
	e.status("Correlation of %s with %s written to %s; maximum %g at lag %g", t.Source.Name(), with, name, value, lags[peak])
	return name, nil
}

// pair collects the target and a second full curve.
func pair(t Target, other data.Accessor) (selection, selection, error) {
	if other == nil {
		return selection{}, selection{}, data.ErrNoCurve
	}
	sel, err := collect(t)
	if err != nil {
		return selection{}, selection{}, err
	}
	b, err := collect(Target{Source: other})
	if err != nil {
		return selection{}, selection{}, err
	}
	return sel, b, nil
}
