package calculus

// Differentiate estimates dy/dx at every sample.
//
// Interior points use the three-point formula for non-uniform spacing, the
// end points a one-sided three-point formula (two points when only two
// samples exist). The returned abscissae are x sorted ascending.
func Differentiate(x, y []float64) (xs, dy []float64, err error) {
	xs, ys, err := prepare(x, y, 2)
	if err != nil {
		return nil, nil, err
	}
	n := len(xs)
	dy = make([]float64, n)

	if n == 2 {
		d := (ys[1] - ys[0]) / (xs[1] - xs[0])
		dy[0], dy[1] = d, d
		return xs, dy, nil
	}

	for i := 1; i < n-1; i++ {
		h1 := xs[i] - xs[i-1]
		h2 := xs[i+1] - xs[i]
		dy[i] = -h2/(h1*(h1+h2))*ys[i-1] +
			(h2-h1)/(h1*h2)*ys[i] +
			h1/(h2*(h1+h2))*ys[i+1]
	}

	h1 := xs[1] - xs[0]
	h2 := xs[2] - xs[1]
	dy[0] = -(2*h1+h2)/(h1*(h1+h2))*ys[0] +
		(h1+h2)/(h1*h2)*ys[1] -
		h1/(h2*(h1+h2))*ys[2]

	h1 = xs[n-2] - xs[n-3]
	h2 = xs[n-1] - xs[n-2]
	dy[n-1] = h2/(h1*(h1+h2))*ys[n-3] -
		(h1+h2)/(h1*h2)*ys[n-2] +
		(h1+2*h2)/(h2*(h1+h2))*ys[n-1]

	return xs, dy, nil
}
