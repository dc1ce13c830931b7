package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

// polyFit returns the least-squares polynomial coefficients a0..aN. With
// too few points the default coefficients are returned.
func polyFit(x, y []float64, order int) []float64 {
	cols := order + 1
	out := make([]float64, cols)
	if len(x) < cols {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	a := mat.NewDense(len(x), cols, nil)
	for r, v := range x {
		p := 1.0
		for c := 0; c < cols; c++ {
			a.Set(r, c, p)
			p *= v
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, mat.NewVecDense(len(y), append([]float64(nil), y...))); err != nil {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i := range out {
		out[i] = coef.AtVec(i)
	}
	return out
}

// logLinear fits ln(y - y0) = a + b*x over the samples above y0 and
// returns exp(a) and b.
func logLinear(x, y []float64, y0 float64) (amp, rate float64, ok bool) {
	var lx, ly []float64
	for i := range x {
		if d := y[i] - y0; d > 0 {
			lx = append(lx, x[i])
			ly = append(ly, math.Log(d))
		}
	}
	if len(lx) < 2 {
		return 0, 0, false
	}
	c := polyFit(lx, ly, 1)
	return math.Exp(c[0]), c[1], true
}

func guessDecay(x, y []float64, terms int) []float64 {
	lo, hi := minOf(y), maxOf(y)
	y0 := lo - 0.01*(hi-lo)
	span := x[len(x)-1] - x[0]
	amp, rate, ok := logLinear(x, y, y0)
	tau := span / 3
	if ok && rate < 0 {
		tau = -1 / rate
	}
	if !ok {
		amp = hi - lo
	}

	out := make([]float64, 0, 2*terms+1)
	for i := 0; i < terms; i++ {
		// Spread the time constants around the single-exponential estimate.
		scale := math.Pow(3, float64(i)-float64(terms-1)/2)
		out = append(out, amp/float64(terms), tau*scale)
	}
	return append(out, y0)
}

func guessGrowth(x, y []float64) []float64 {
	lo, hi := minOf(y), maxOf(y)
	y0 := 0.0
	if lo <= 0 {
		y0 = lo - 0.01*(hi-lo)
	}
	amp, rate, ok := logLinear(x, y, y0)
	if !ok || rate <= 0 {
		return []float64{1, (x[len(x)-1] - x[0]) / 3, y0}
	}
	return []float64{amp, 1 / rate, y0}
}

// guessSigmoid estimates the plateaus, midpoint and width of a step.
func guessSigmoid(x, y []float64) (a1, a2, x0, dx float64) {
	n := len(x)
	k := max(n/10, 1)
	for i := 0; i < k; i++ {
		a1 += y[i]
		a2 += y[n-1-i]
	}
	a1 /= float64(k)
	a2 /= float64(k)

	mid := (a1 + a2) / 2
	x0 = x[n/2]
	for i := 1; i < n; i++ {
		if (y[i-1]-mid)*(y[i]-mid) <= 0 {
			x0 = x[i]
			break
		}
	}
	dx = (x[n-1] - x[0]) / 10
	if dx == 0 {
		dx = 1
	}
	return a1, a2, x0, dx
}
