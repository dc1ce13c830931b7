package model

import "fmt"

// MultiPeak is a sum of K peaks of one shape plus a shared baseline y0.
// Parameters are ordered y0, xc1, w1, A1, ..., xcK, wK, AK.
type MultiPeak struct {
	shape  PeakShape
	count  int
	params []Parameter
}

// NewMultiPeak composes count peaks of the given shape.
func NewMultiPeak(count int, shape PeakShape) (*MultiPeak, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeakCount, count)
	}
	if !shape.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(shape))
	}
	params := make([]Parameter, 0, 3*count+1)
	params = append(params, Parameter{Name: "y0", Initial: 0})
	for i := 1; i <= count; i++ {
		params = append(params,
			Parameter{Name: fmt.Sprintf("xc%d", i), Initial: float64(i)},
			Parameter{Name: fmt.Sprintf("w%d", i), Initial: 1},
			Parameter{Name: fmt.Sprintf("A%d", i), Initial: 1},
		)
	}
	return &MultiPeak{shape: shape, count: count, params: params}, nil
}

func (m *MultiPeak) Name() string {
	return fmt.Sprintf("MultiPeak(%s,%d)", m.shape, m.count)
}

func (m *MultiPeak) Category() Category { return BuiltIn }

func (m *MultiPeak) Params() []Parameter {
	return append([]Parameter(nil), m.params...)
}

// Shape returns the peak basis function.
func (m *MultiPeak) Shape() PeakShape { return m.shape }

// Count returns the number of peaks.
func (m *MultiPeak) Count() int { return m.count }

// Index returns the position of peak i's center in the parameter vector;
// width and area follow it.
func (m *MultiPeak) Index(i int) int { return 1 + 3*i }

func (m *MultiPeak) Eval(x float64, p []float64) float64 {
	y := p[0]
	for i := 0; i < m.count; i++ {
		k := m.Index(i)
		y += m.shape.eval(x, p[k], p[k+1], p[k+2])
	}
	return y
}

// Peak evaluates peak i alone, without the baseline.
func (m *MultiPeak) Peak(i int, x float64, p []float64) float64 {
	k := m.Index(i)
	return m.shape.eval(x, p[k], p[k+1], p[k+2])
}

func (m *MultiPeak) Derivative(j int, x float64, p []float64) float64 {
	if j == 0 {
		return 1
	}
	k := 1 + 3*((j-1)/3)
	dxc, dw, da := m.shape.partials(x, p[k], p[k+1], p[k+2])
	return [...]float64{dxc, dw, da}[j-k]
}

// Guess seeds the peaks at the highest local maxima of data sorted by x.
func (m *MultiPeak) Guess(x, y []float64) []float64 {
	out := Initial(m)
	if len(x) == 0 {
		return out
	}
	y0 := minOf(y)
	out[0] = y0
	for i, top := range FindPeaks(x, y, m.count, 0) {
		k := m.Index(i)
		w, a := m.shape.FromHeight(y[top]-y0, HalfWidth(x, y, top, y0))
		out[k], out[k+1], out[k+2] = x[top], w, a
	}
	return out
}

// FindPeaks returns up to count indices of local maxima of y (sorted by x),
// highest first, at least minSeparation apart in x. Plateau edges and the
// data ends count as maxima when higher than their only neighbour.
func FindPeaks(x, y []float64, count int, minSeparation float64) []int {
	n := len(y)
	var cand []int
	for i := 0; i < n; i++ {
		left := i == 0 || y[i] > y[i-1]
		right := i == n-1 || y[i] >= y[i+1]
		if left && right && n > 1 {
			cand = append(cand, i)
		}
	}
	// Highest first; insertion sort keeps equal heights in x order.
	for i := 1; i < len(cand); i++ {
		for j := i; j > 0 && y[cand[j]] > y[cand[j-1]]; j-- {
			cand[j], cand[j-1] = cand[j-1], cand[j]
		}
	}

	var picked []int
	for _, c := range cand {
		if len(picked) == count {
			break
		}
		ok := true
		for _, p := range picked {
			if d := x[c] - x[p]; d < minSeparation && -d < minSeparation {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c)
		}
	}
	return picked
}
