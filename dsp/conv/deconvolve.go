package conv

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
)

// Deconvolution errors.
var (
	ErrDivisionByZero = errors.New("conv: division by zero in deconvolution")
)

// DeconvMethod specifies the deconvolution method.
type DeconvMethod int

const (
	// DeconvNaive performs simple spectral division.
	// Fast but sensitive to noise and zeros in the kernel spectrum.
	DeconvNaive DeconvMethod = iota

	// DeconvRegularized adds a small epsilon to prevent division by zero.
	// output = IFFT(FFT(signal) * conj(FFT(kernel)) / (|FFT(kernel)|^2 + epsilon)).
	DeconvRegularized

	// DeconvWiener applies Wiener deconvolution with noise estimation.
	DeconvWiener
)

// DeconvOptions configures deconvolution behavior.
type DeconvOptions struct {
	// Method specifies the deconvolution algorithm.
	Method DeconvMethod

	// Epsilon is the regularization parameter for DeconvRegularized.
	// Typical values: 1e-6 to 1e-3 depending on SNR.
	Epsilon float64

	// NoiseVariance is the estimated noise variance for Wiener deconvolution.
	// If zero, it is taken as 1% of the signal variance.
	NoiseVariance float64

	// SignalVariance is the estimated signal variance for Wiener deconvolution.
	// If zero, it will be estimated from the signal.
	SignalVariance float64
}

// DefaultDeconvOptions returns default deconvolution options.
func DefaultDeconvOptions() DeconvOptions {
	return DeconvOptions{
		Method:  DeconvRegularized,
		Epsilon: 1e-6,
	}
}

// Deconvolve recovers an estimate of the original signal from a convolved result.
// Given y = conv(x, h), this attempts to recover x from y and h. The result
// has len(y) - len(h) + 1 samples, or len(y) when h is longer than y.
func Deconvolve(signal, kernel []float64, opts DeconvOptions) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	outputLen := len(signal) - len(kernel) + 1
	if outputLen <= 0 {
		outputLen = len(signal)
	}

	size := core.NextPowerOf2(max(len(signal), len(kernel)))
	fy, fh, err := spectra(signal, kernel, size)
	if err != nil {
		return nil, err
	}

	switch opts.Method {
	case DeconvNaive:
		for i := range fy {
			if cmplx.Abs(fh[i]) < 1e-15 {
				return nil, fmt.Errorf("%w: at frequency bin %d", ErrDivisionByZero, i)
			}
			fy[i] /= fh[i]
		}
	case DeconvWiener:
		signalVar := opts.SignalVariance
		if signalVar <= 0 {
			signalVar = variance(signal)
		}
		noiseVar := opts.NoiseVariance
		if noiseVar <= 0 {
			noiseVar = signalVar * 0.01
		}
		nsr := 1e-6
		if signalVar > 0 && noiseVar > 0 {
			nsr = noiseVar / signalVar
		}
		regularize(fy, fh, nsr)
	default:
		eps := opts.Epsilon
		if eps <= 0 {
			eps = 1e-6
		}
		regularize(fy, fh, eps)
	}

	out, err := fft.InverseReal(fy)
	if err != nil {
		return nil, fmt.Errorf("conv: inverse transform: %w", err)
	}
	return out[:outputLen], nil
}

// regularize computes Y * conj(H) / (|H|^2 + eps) in place in y.
func regularize(y, h []complex128, eps float64) {
	for i := range y {
		magSq := real(h[i])*real(h[i]) + imag(h[i])*imag(h[i])
		y[i] = y[i] * cmplx.Conj(h[i]) / complex(magSq+eps, 0)
	}
}

// variance computes the variance of a signal.
func variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var sum float64
	for _, v := range x {
		d := v - mean
		sum += d * d
	}

	return sum / float64(len(x))
}
