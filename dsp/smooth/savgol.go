package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SavGol applies Savitzky–Golay smoothing to y sampled at ascending x. Each
// output is the value at x[i] of the least-squares polynomial of the given
// order through left points before and right points after i.
func SavGol(x, y []float64, left, right, order int) ([]float64, error) {
	if err := (Settings{Method: SavitzkyGolay, Left: left, Right: right, Order: order}).Validate(); err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	n := len(y)
	width := left + right + 1
	if n < width {
		return nil, fmt.Errorf("%w: window of %d needs %d points, have %d", ErrInsufficientPoints, width, width, n)
	}

	cols := order + 1
	a := mat.NewDense(width, cols, nil)
	b := mat.NewVecDense(width, nil)
	var coef mat.VecDense
	var qr mat.QR

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - left
		switch {
		case lo < 0:
			lo = 0
		case lo+width > n:
			lo = n - width
		}

		// Centre and scale the abscissa for conditioning.
		x0 := x[i]
		scale := max(x[lo+width-1]-x0, x0-x[lo])
		for r := 0; r < width; r++ {
			u := (x[lo+r] - x0) / scale
			p := 1.0
			for c := 0; c < cols; c++ {
				a.Set(r, c, p)
				p *= u
			}
			b.SetVec(r, y[lo+r])
		}

		qr.Factorize(a)
		if err := qr.SolveVecTo(&coef, false, b); err != nil {
			return nil, fmt.Errorf("%w: window at x=%g: %v", ErrDegenerateAbscissa, x0, err)
		}
		out[i] = coef.AtVec(0)
	}
	return out, nil
}
