package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-curvefit/dsp/core"
)

const (
	lambdaStart = 1e-3
	lambdaMax   = 1e16
	// ssrFloor is treated as an exact fit.
	ssrFloor = 1e-30
)

// levenbergMarquardt minimises the problem from q. It returns the final
// free parameters, the iteration count and the terminal status.
func levenbergMarquardt(r *Run, p *problem, q []float64, scaled bool) ([]float64, int, Status, error) {
	n, k := len(p.x), len(q)
	res := make([]float64, n)
	s := p.residuals(res, q)
	if !core.IsFinite(s) {
		return nil, 0, 0, ErrNonFinite
	}

	jac := mat.NewDense(n, k, nil)
	trial := make([]float64, k)
	trialRes := make([]float64, n)
	lambda := lambdaStart

	for iter := 1; iter <= r.MaxIterations; iter++ {
		if s < ssrFloor {
			return q, iter - 1, StatusConverged, nil
		}

		p.jacobian(jac, q)
		a, err := normal(jac)
		if err != nil {
			return nil, iter, StatusSingularJacobian, err
		}
		var g mat.VecDense
		g.MulVec(jac.T(), mat.NewVecDense(n, res))

		accepted := false
		var next float64
		for lambda <= lambdaMax {
			m := mat.NewSymDense(k, nil)
			m.CopySym(a)
			for c := 0; c < k; c++ {
				// Marquardt: λ·diag(JᵀJ) when scaled, λ·I otherwise.
				d := 1.0
				if scaled {
					d = a.At(c, c)
				}
				m.SetSym(c, c, a.At(c, c)+lambda*d)
			}

			var chol mat.Cholesky
			var delta mat.VecDense
			if ok := chol.Factorize(m); !ok || chol.SolveVecTo(&delta, &g) != nil {
				lambda *= 10
				continue
			}
			for c := range trial {
				trial[c] = q[c] + delta.AtVec(c)
			}
			next = p.residuals(trialRes, trial)
			if next < s {
				accepted = true
				break
			}
			lambda *= 10
		}

		if !accepted {
			// No downhill step at any damping: q is a stationary point.
			r.debug("no improving step", "iteration", iter, "ssr", s)
			return q, iter, StatusConverged, nil
		}

		rel := (s - next) / s
		copy(q, trial)
		copy(res, trialRes)
		s = next
		lambda = math.Max(lambda/10, 1e-12)
		r.debug("iteration", "n", iter, "ssr", s, "lambda", lambda)

		if rel < r.Tolerance || s < ssrFloor {
			return q, iter, StatusConverged, nil
		}
	}
	return q, r.MaxIterations, StatusMaxIterations, nil
}
