package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-curvefit/dsp/fft"
)

// Average returns the centred moving average of y over points samples.
// Windows are clipped at the ends of the curve.
func Average(y []float64, points int) ([]float64, error) {
	if points < 1 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositivePointCount, points)
	}
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty curve", ErrInsufficientPoints)
	}

	// prefix[i] is the sum of y[:i].
	prefix := make([]float64, n+1)
	for i, v := range y {
		prefix[i+1] = prefix[i] + v
	}

	before := (points - 1) / 2
	after := points - 1 - before
	out := make([]float64, n)
	for i := range out {
		lo := max(i-before, 0)
		hi := min(i+after, n-1)
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(hi-lo+1)
	}
	return out, nil
}

// LowPass smooths y by discarding every frequency bin above N/points.
func LowPass(y []float64, points int) ([]float64, error) {
	if points < 1 {
		return nil, fmt.Errorf("%w: %d", ErrNonPositivePointCount, points)
	}
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty curve", ErrInsufficientPoints)
	}

	bins, err := fft.ForwardReal(y)
	if err != nil {
		return nil, err
	}

	limit := float64(n) / float64(points)
	mask := make([]float64, n)
	re := make([]float64, n)
	im := make([]float64, n)
	for k, v := range bins {
		if float64(min(k, n-k)) <= limit {
			mask[k] = 1
		}
		re[k], im[k] = real(v), imag(v)
	}
	vecmath.MulBlockInPlace(re, mask)
	vecmath.MulBlockInPlace(im, mask)
	for k := range bins {
		bins[k] = complex(re[k], im[k])
	}

	return fft.InverseReal(bins)
}
