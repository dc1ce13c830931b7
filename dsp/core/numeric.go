package core

import (
	"math"
	"sort"
)

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NextPowerOf2 returns the next power of 2 >= n.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// IsPowerOf2 returns true if n is a power of 2.
func IsPowerOf2(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Linspace returns n evenly spaced values over [from, to].
// For n == 1 the single value is from.
func Linspace(from, to float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	out[n-1] = to
	return out
}

// MinMax returns the smallest and largest value in data.
// Both are NaN for an empty slice.
func MinMax(data []float64) (lo, hi float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi = data[0], data[0]
	for _, v := range data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// SortXY returns copies of x and y ordered by ascending x.
// dup is the index (in the sorted output) of the first repeated abscissa,
// or -1 when all x values are distinct.
func SortXY(x, y []float64) (xs, ys []float64, dup int) {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	xs = make([]float64, n)
	ys = make([]float64, n)
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}

	dup = -1
	for i := 1; i < n; i++ {
		if xs[i] == xs[i-1] {
			dup = i
			break
		}
	}
	return xs, ys, dup
}

// UniformStep returns the spacing of x and whether x is uniformly sampled
// within relative tolerance tol.
func UniformStep(x []float64, tol float64) (float64, bool) {
	if len(x) < 2 {
		return 0, false
	}
	step := (x[len(x)-1] - x[0]) / float64(len(x)-1)
	if step == 0 {
		return 0, false
	}
	for i := 1; i < len(x); i++ {
		if math.Abs((x[i]-x[i-1])-step) > tol*math.Abs(step) {
			return step, false
		}
	}
	return step, true
}
