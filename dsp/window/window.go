// Package window generates tapering windows applied to a sampled curve
// before it is transformed.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// ErrUnknownType is returned by [Parse] for an unrecognised window name.
var ErrUnknownType = errors.New("window: unknown type")

// Type identifies a window shape.
type Type int

const (
	Rectangular Type = iota
	Hann
	Hamming
	Blackman
	Welch
	Triangle
)

var names = map[Type]string{
	Rectangular: "rectangular",
	Hann:        "hann",
	Hamming:     "hamming",
	Blackman:    "blackman",
	Welch:       "welch",
	Triangle:    "triangle",
}

// String returns the lower-case name accepted by [Parse].
func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("window(%d)", int(t))
}

// Parse resolves a window name. The empty string and "none" select
// Rectangular; "hanning" and "bartlett" are accepted as aliases.
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "rectangular", "rect":
		return Rectangular, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "welch":
		return Welch, nil
	case "triangle", "bartlett":
		return Triangle, nil
	}
	return Rectangular, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// Generate returns n symmetric window coefficients. A non-positive n yields
// nil and n == 1 yields a single 1.
func Generate(t Type, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	den := float64(n - 1)
	for i := range out {
		out[i] = at(t, float64(i)/den)
	}
	return out
}

// at evaluates the window at normalised position x in [0, 1].
func at(t Type, x float64) float64 {
	switch t {
	case Hann:
		return cosine(x, hannCoeffs)
	case Hamming:
		return cosine(x, hammingCoeffs)
	case Blackman:
		return math.Max(0, cosine(x, blackmanCoeffs))
	case Welch:
		r := 2*x - 1
		return 1 - r*r
	case Triangle:
		return 1 - math.Abs(2*x-1)
	default:
		return 1
	}
}

func cosine(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x
	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}

// Apply multiplies buf in place by the window and returns its coherent gain,
// the mean coefficient. Dividing an amplitude spectrum by the gain restores
// the height of a tone.
func Apply(t Type, buf []float64) float64 {
	if len(buf) == 0 {
		return 1
	}
	coeffs := Generate(t, len(buf))
	vecmath.MulBlockInPlace(buf, coeffs)
	return CoherentGain(coeffs)
}

// CoherentGain returns the mean of coeffs, or 0 for an empty slice.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs))
}
