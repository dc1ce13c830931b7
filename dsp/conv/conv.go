package conv

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput           = errors.New("conv: empty input")
	ErrEmptyKernel          = errors.New("conv: empty kernel")
	ErrResponseTooLarge     = errors.New("conv: response must be shorter than half the signal")
	ErrResponseLengthNotOdd = errors.New("conv: response length must be odd")
)

// roundoff is the relative size below which transform output is treated as
// zero. It sits well above the rounding error of the FFT path.
const roundoff = 1e-12

// FFTConvolve computes the full linear convolution of a and b in the
// frequency domain. The result has length len(a) + len(b) - 1.
func FFTConvolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	outLen := len(a) + len(b) - 1
	fa, fb, err := spectra(a, b, core.NextPowerOf2(outLen))
	if err != nil {
		return nil, err
	}
	for i := range fa {
		fa[i] *= fb[i]
	}
	full, err := fft.InverseReal(fa)
	if err != nil {
		return nil, fmt.Errorf("conv: inverse transform: %w", err)
	}
	full = full[:outLen]
	clearRoundoff(full, a, b)
	return full, nil
}

// spectra zero pads a and b to size samples and returns their forward
// transforms.
func spectra(a, b []float64, size int) (fa, fb []complex128, err error) {
	pa := make([]float64, size)
	copy(pa, a)
	pb := make([]float64, size)
	copy(pb, b)

	if fa, err = fft.ForwardReal(pa); err != nil {
		return nil, nil, fmt.Errorf("conv: forward transform: %w", err)
	}
	if fb, err = fft.ForwardReal(pb); err != nil {
		return nil, nil, fmt.Errorf("conv: forward transform: %w", err)
	}
	return fa, fb, nil
}

// clearRoundoff zeroes samples of a product of a and b that are smaller
// than the transform can resolve, so exact zeros survive the round trip
// without a sign.
func clearRoundoff(out, a, b []float64) {
	peak, sum := 0.0, 0.0
	for _, v := range a {
		peak = math.Max(peak, math.Abs(v))
	}
	for _, v := range b {
		sum += math.Abs(v)
	}
	tol := roundoff * peak * sum
	for i, v := range out {
		if math.Abs(v) <= tol {
			out[i] = 0
		}
	}
}
