package fit

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/model"
)

// problem is the weighted least-squares objective over the free parameters.
type problem struct {
	m    model.Model
	step model.StepPolicy
	x, y []float64
	w    []float64
	full []float64 // full parameter vector, fixed entries held constant
	free []int     // indices of free parameters in full
}

func newProblem(r *Run, pts data.Points, w []float64) *problem {
	p := &problem{
		m:    r.Model,
		step: r.Step,
		x:    pts.X,
		y:    pts.Y,
		w:    w,
		full: make([]float64, len(r.Params)),
	}
	for i, par := range r.Params {
		p.full[i] = par.Initial
		if !par.Fixed {
			p.free = append(p.free, i)
		}
	}
	return p
}

// start returns the initial free parameter vector.
func (p *problem) start() []float64 {
	q := make([]float64, len(p.free))
	for k, i := range p.free {
		q[k] = p.full[i]
	}
	return q
}

// set copies the free parameters q into the full vector.
func (p *problem) set(q []float64) {
	for k, i := range p.free {
		p.full[i] = q[k]
	}
}

// residuals writes the weighted residuals at q into dst and returns their
// sum of squares.
func (p *problem) residuals(dst, q []float64) float64 {
	p.set(q)
	for i, xi := range p.x {
		dst[i] = (p.y[i] - p.m.Eval(xi, p.full)) * p.w[i]
	}
	return floats.Dot(dst, dst)
}

// ssr returns the weighted sum of squared residuals at q.
func (p *problem) ssr(q []float64) float64 {
	return p.residuals(make([]float64, len(p.x)), q)
}

// jacobian fills j (n×k) with the weighted partial derivatives at q.
func (p *problem) jacobian(j *mat.Dense, q []float64) {
	p.set(q)
	for i, xi := range p.x {
		for k, idx := range p.free {
			j.Set(i, k, p.w[i]*model.Partial(p.m, idx, xi, p.full, p.step))
		}
	}
}

// normal returns JᵀJ. It fails when a column of J vanishes, meaning a
// parameter has no influence on the residuals.
func normal(j *mat.Dense) (*mat.SymDense, error) {
	_, k := j.Dims()
	a := mat.NewSymDense(k, nil)
	a.SymOuterK(1, j.T())
	for c := 0; c < k; c++ {
		if d := a.At(c, c); d == 0 || !core.IsFinite(d) {
			return nil, fmt.Errorf("%w: column %d is %v", ErrSingularJacobian, c, d)
		}
	}
	return a, nil
}

// covariance inverts JᵀJ at q.
func (p *problem) covariance(q []float64) (*mat.SymDense, error) {
	j := mat.NewDense(len(p.x), len(p.free), nil)
	p.jacobian(j, q)
	a, err := normal(j)
	if err != nil {
		return nil, err
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, fmt.Errorf("%w: normal matrix not positive definite", ErrSingularJacobian)
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
	}
	return &cov, nil
}
