package fit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/core"
)

// Result is the outcome of a fit that did not fail.
type Result struct {
	RunID     uuid.UUID
	Model     string
	Algorithm Algorithm
	Status    Status

	Iterations int

	Names  []string
	Params []float64
	// Errors are the standard errors. Fixed parameters report 0, and NaN
	// means the covariance could not be computed.
	Errors []float64
	// Covariance spans the free parameters in the order of FreeIndex.
	Covariance *mat.SymDense
	FreeIndex  []int

	ChiSquare        float64 // weighted sum of squared residuals
	ReducedChiSquare float64
	RSS              float64 // unweighted
	SST              float64
	RSquared         float64
	AdjRSquared      float64
	RMSE             float64
	DOF              int
	Points           int

	CurveX []float64
	CurveY []float64
}

// Param returns the fitted value and error of the named parameter.
func (res *Result) Param(name string) (value, stdErr float64, ok bool) {
	for i, n := range res.Names {
		if n == name {
			return res.Params[i], res.Errors[i], true
		}
	}
	return 0, 0, false
}

// Curve returns the generated curve under name.
func (res *Result) Curve(name string) data.Curve {
	return data.Curve{Name: name, X: res.CurveX, Y: res.CurveY}
}

// Summary renders the result as results-log lines.
func (res *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s fit (%s): %s after %d iterations\n", res.Model, res.Algorithm, res.Status, res.Iterations)
	for i, n := range res.Names {
		fmt.Fprintf(&b, "  %s = %.6g ± %.3g\n", n, res.Params[i], res.Errors[i])
	}
	fmt.Fprintf(&b, "  chi² = %.6g, reduced chi² = %.6g, dof = %d\n", res.ChiSquare, res.ReducedChiSquare, res.DOF)
	fmt.Fprintf(&b, "  R² = %.6g, adjusted R² = %.6g, RMSE = %.6g", res.RSquared, res.AdjRSquared, res.RMSE)
	return b.String()
}

// Fit runs r to termination. Validation failures are returned before any
// numeric work. Numeric failures are returned as *Error and discard the
// partial result. Reaching MaxIterations is not an error: the best
// parameters are returned with StatusMaxIterations.
func Fit(r *Run) (*Result, error) {
	if err := r.validateSetup(); err != nil {
		return nil, err
	}
	if r.AutoGuess {
		if err := r.Guess(); err != nil {
			return nil, err
		}
	}
	if err := r.validateParams(); err != nil {
		return nil, err
	}
	pts, err := data.Collect(r.Data, r.Range)
	if err != nil {
		if errors.Is(err, data.ErrNoCurve) {
			return nil, fmt.Errorf("%w: %v", ErrNoCurveAssigned, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	free := len(freeIndex(r))
	if pts.Len() < free+1 {
		return nil, fmt.Errorf("%w: curve %q has %d points in range, need %d", ErrTooFewPoints, r.Data.Name(), pts.Len(), free+1)
	}
	w, err := r.weights(pts)
	if err != nil {
		return nil, err
	}

	p := newProblem(r, pts, w)
	q := p.start()
	r.info("fit started", "run", r.ID.String(), "model", r.Model.Name(), "algorithm", r.Algorithm.String(), "points", pts.Len())

	var (
		iters  int
		status Status
	)
	switch r.Algorithm {
	case Simplex:
		q, iters, status, err = nelderMead(r, p, q)
	default:
		q, iters, status, err = levenbergMarquardt(r, p, q, r.Algorithm == ScaledLM)
	}
	if err != nil {
		if errors.Is(err, ErrSingularJacobian) {
			r.info("fit failed", "run", r.ID.String(), "status", StatusSingularJacobian.String(), "iterations", iters)
			return nil, &Error{Status: StatusSingularJacobian, Iterations: iters, Err: err}
		}
		return nil, err
	}

	res, err := r.result(p, pts, q)
	if err != nil {
		r.info("fit failed", "run", r.ID.String(), "error", err.Error())
		return nil, &Error{Status: StatusSingularJacobian, Iterations: iters, Err: err}
	}
	res.Status = status
	res.Iterations = iters

	for i := range r.Params {
		r.Params[i].Initial = res.Params[i]
	}
	r.info("fit finished", "run", r.ID.String(), "status", status.String(), "iterations", iters, "chi2", res.ChiSquare, "r2", res.RSquared)
	return res, nil
}

func freeIndex(r *Run) []int {
	var idx []int
	for i, p := range r.Params {
		if !p.Fixed {
			idx = append(idx, i)
		}
	}
	return idx
}

// result evaluates statistics, errors and the display curve at q.
func (r *Run) result(p *problem, pts data.Points, q []float64) (*Result, error) {
	n, k := pts.Len(), len(q)
	res := &Result{
		RunID:     r.ID,
		Model:     r.Model.Name(),
		Algorithm: r.Algorithm,
		FreeIndex: append([]int(nil), p.free...),
		Points:    n,
		DOF:       n - k,
	}

	wres := make([]float64, n)
	res.ChiSquare = p.residuals(wres, q)
	res.Params = core.Clone(p.full)
	res.Names = make([]string, len(r.Params))
	for i, par := range r.Params {
		res.Names[i] = par.Name
	}

	raw := make([]float64, n)
	for i, x := range pts.X {
		raw[i] = pts.Y[i] - r.Model.Eval(x, res.Params)
	}
	res.RSS = floats.Dot(raw, raw)
	mean := stat.Mean(pts.Y, nil)
	for _, y := range pts.Y {
		res.SST += (y - mean) * (y - mean)
	}
	if res.SST > 0 {
		res.RSquared = 1 - res.RSS/res.SST
	} else {
		res.RSquared = math.NaN()
	}
	if res.DOF > 0 {
		res.ReducedChiSquare = res.ChiSquare / float64(res.DOF)
		res.RMSE = math.Sqrt(res.RSS / float64(res.DOF))
		res.AdjRSquared = 1 - (1-res.RSquared)*float64(n-1)/float64(res.DOF)
	} else {
		res.ReducedChiSquare = math.NaN()
		res.RMSE = math.NaN()
		res.AdjRSquared = math.NaN()
	}

	res.Errors = make([]float64, len(r.Params))
	cov, err := p.covariance(q)
	switch {
	case err == nil:
		res.Covariance = cov
		scale := 1.0
		if r.ScaleErrors && res.DOF > 0 {
			scale = math.Sqrt(res.ReducedChiSquare)
		}
		for c, idx := range p.free {
			res.Errors[idx] = math.Sqrt(math.Abs(cov.At(c, c))) * scale
		}
	case r.Algorithm == Simplex:
		for _, idx := range p.free {
			res.Errors[idx] = math.NaN()
		}
	default:
		return nil, err
	}

	res.CurveX, res.CurveY = r.curve(pts.X, res.Params)
	return res, nil
}

// curve samples the fitted model either on the fitted x values or on a
// uniform grid spanning them.
func (r *Run) curve(x, params []float64) (cx, cy []float64) {
	if r.CurveOnData {
		cx = core.Clone(x)
	} else {
		lo, hi := core.MinMax(x)
		cx = core.Linspace(lo, hi, r.CurvePoints)
	}
	cy = make([]float64, len(cx))
	for i, v := range cx {
		cy[i] = r.Model.Eval(v, params)
	}
	return cx, cy
}
