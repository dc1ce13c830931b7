package fit

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Nelder–Mead coefficients.
const (
	nmReflect  = 1.0
	nmExpand   = 2.0
	nmContract = 0.5
	nmShrink   = 0.5
)

type vertex struct {
	q []float64
	f float64
}

// nelderMead minimises the sum of squares from q. It terminates when the
// simplex shrinks below the tolerance relative to the best vertex.
func nelderMead(r *Run, p *problem, q []float64) ([]float64, int, Status, error) {
	k := len(q)
	f0 := p.ssr(q)
	if !core.IsFinite(f0) {
		return nil, 0, 0, ErrNonFinite
	}

	simplex := make([]vertex, k+1)
	simplex[0] = vertex{q: core.Clone(q), f: f0}
	for i := 0; i < k; i++ {
		v := core.Clone(q)
		if v[i] != 0 {
			v[i] *= 1.05
		} else {
			v[i] = 0.00025
		}
		simplex[i+1] = vertex{q: v, f: p.ssr(v)}
	}

	eval := func(v []float64) float64 {
		f := p.ssr(v)
		if math.IsNaN(f) {
			return math.Inf(1)
		}
		return f
	}
	centroid := make([]float64, k)
	point := func(alpha float64, from []float64) []float64 {
		out := make([]float64, k)
		for i := range out {
			out[i] = centroid[i] + alpha*(from[i]-centroid[i])
		}
		return out
	}

	for iter := 1; iter <= r.MaxIterations; iter++ {
		sort.SliceStable(simplex, func(a, b int) bool { return simplex[a].f < simplex[b].f })
		best, worst := simplex[0], simplex[k]

		if size(simplex) <= r.Tolerance {
			return best.q, iter - 1, StatusConverged, nil
		}

		for i := range centroid {
			centroid[i] = 0
			for _, v := range simplex[:k] {
				centroid[i] += v.q[i]
			}
			centroid[i] /= float64(k)
		}

		refl := point(-nmReflect, worst.q)
		fr := eval(refl)
		switch {
		case fr < best.f:
			exp := point(-nmExpand, worst.q)
			if fe := eval(exp); fe < fr {
				simplex[k] = vertex{exp, fe}
			} else {
				simplex[k] = vertex{refl, fr}
			}
		case fr < simplex[k-1].f:
			simplex[k] = vertex{refl, fr}
		default:
			var c []float64
			if fr < worst.f {
				c = point(-nmContract, worst.q)
			} else {
				c = point(nmContract, worst.q)
			}
			if fc := eval(c); fc < math.Min(fr, worst.f) {
				simplex[k] = vertex{c, fc}
				break
			}
			for i := 1; i <= k; i++ {
				for j := range simplex[i].q {
					simplex[i].q[j] = best.q[j] + nmShrink*(simplex[i].q[j]-best.q[j])
				}
				simplex[i].f = eval(simplex[i].q)
			}
		}
		r.debug("iteration", "n", iter, "ssr", simplex[0].f)
	}

	sort.SliceStable(simplex, func(a, b int) bool { return simplex[a].f < simplex[b].f })
	return simplex[0].q, r.MaxIterations, StatusMaxIterations, nil
}

// size is the largest coordinate distance from the best vertex, relative to
// the best vertex's magnitude.
func size(simplex []vertex) float64 {
	best := simplex[0].q
	scale := 0.0
	for _, v := range best {
		scale = math.Max(scale, math.Abs(v))
	}
	scale = math.Max(scale, 1e-12)

	d := 0.0
	for _, v := range simplex[1:] {
		for i := range v.q {
			d = math.Max(d, math.Abs(v.q[i]-best[i]))
		}
	}
	return d / scale
}
