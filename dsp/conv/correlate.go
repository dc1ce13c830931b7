package conv

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/dsp/fft"
)

// Correlate computes the full cross-correlation of a and b in the frequency
// domain. The result has length len(a) + len(b) - 1.
// Output index k corresponds to lag k - (len(b) - 1), and the value at lag L
// is the sum over t of a[t+L]*b[t].
func Correlate(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	n := len(a)
	m := len(b)
	size := core.NextPowerOf2(n + m - 1)

	fa, fb, err := spectra(a, b, size)
	if err != nil {
		return nil, err
	}
	// A * conj(B) gives the circular correlation; padding makes it linear.
	for i := range fa {
		fa[i] *= complex(real(fb[i]), -imag(fb[i]))
	}
	circ, err := fft.InverseReal(fa)
	if err != nil {
		return nil, fmt.Errorf("conv: inverse transform: %w", err)
	}

	// Non-negative lags sit at the start, negative lags wrap to the end.
	result := make([]float64, n+m-1)
	copy(result[m-1:], circ[:n])
	copy(result[:m-1], circ[size-m+1:])
	clearRoundoff(result, a, b)
	return result, nil
}

// AutoCorrelate computes the auto-correlation of signal a.
// The result has length 2*len(a) - 1 and is symmetric about lag 0 at
// index len(a) - 1.
func AutoCorrelate(a []float64) ([]float64, error) {
	result, err := Correlate(a, a)
	if err != nil {
		return nil, err
	}
	// Enforce exact symmetry lost to rounding in the transform.
	n := len(result)
	for i := 0; i < n/2; i++ {
		avg := 0.5 * (result[i] + result[n-1-i])
		result[i] = avg
		result[n-1-i] = avg
	}
	return result, nil
}

// AutoCorrelateNormalized computes normalized auto-correlation.
// The result is normalized such that the zero-lag value is 1.0.
func AutoCorrelateNormalized(a []float64) ([]float64, error) {
	result, err := AutoCorrelate(a)
	if err != nil {
		return nil, err
	}

	zeroLag := result[len(a)-1]
	if zeroLag == 0 {
		return result, nil
	}
	for i := range result {
		result[i] /= zeroLag
	}

	return result, nil
}

// CorrelateNormalized computes normalized cross-correlation.
// The result is normalized by the product of the L2 norms of a and b,
// producing values in the range [-1, 1].
func CorrelateNormalized(a, b []float64) ([]float64, error) {
	result, err := Correlate(a, b)
	if err != nil {
		return nil, err
	}

	normProduct := l2Norm(a) * l2Norm(b)
	if normProduct == 0 {
		return result, nil
	}
	for i := range result {
		result[i] /= normProduct
	}

	return result, nil
}

// Lags returns the lag of every sample of a full correlation of signals
// with lengths lenA and lenB.
func Lags(lenA, lenB int) []float64 {
	if lenA <= 0 || lenB <= 0 {
		return nil
	}
	out := make([]float64, lenA+lenB-1)
	for i := range out {
		out[i] = float64(LagFromIndex(i, lenB))
	}
	return out
}

// l2Norm computes the L2 (Euclidean) norm of a signal.
func l2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// FindPeak finds the index and value of the maximum in a correlation result.
func FindPeak(corr []float64) (index int, value float64) {
	if len(corr) == 0 {
		return -1, 0
	}

	index = 0
	value = corr[0]

	for i, v := range corr {
		if v > value {
			index = i
			value = v
		}
	}

	return index, value
}

// LagFromIndex converts a correlation result index to a lag value.
// For a correlation of signals with lengths lenA and lenB,
// the lag at index i is i - (lenB - 1).
func LagFromIndex(index, lenB int) int {
	return index - (lenB - 1)
}
