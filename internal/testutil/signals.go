package testutil

import (
	"math"
	"math/rand"
)

// SampleFunc samples f at n evenly spaced points over [from, to].
func SampleFunc(f func(float64) float64, from, to float64, n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	step := 0.0
	if n > 1 {
		step = (to - from) / float64(n-1)
	}
	for i := range x {
		x[i] = from + float64(i)*step
		y[i] = f(x[i])
	}
	if n > 1 {
		x[n-1] = to
		y[n-1] = f(to)
	}
	return x, y
}

// DeterministicSine generates a sine wave with the given number of cycles
// over length samples.
func DeterministicSine(cycles, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * cycles / float64(length)
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Index returns 0, 1, ..., n-1 as float64 abscissae.
func Index(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
