package model

import "math"

// StepPolicy configures finite-difference Jacobians. The step for
// parameter value p is h = max(|p|*Relative, Absolute). Central selects
// two-sided differences.
type StepPolicy struct {
	Relative float64
	Absolute float64
	Central  bool
}

// DefaultStepPolicy returns the step policy used when none is configured.
func DefaultStepPolicy() StepPolicy {
	return StepPolicy{Relative: 1e-6, Absolute: 1e-8, Central: true}
}

// Step returns the finite-difference step for parameter value p.
func (s StepPolicy) Step(p float64) float64 {
	rel, abs := s.Relative, s.Absolute
	if !(rel > 0) && !(abs > 0) {
		d := DefaultStepPolicy()
		rel, abs = d.Relative, d.Absolute
	}
	return math.Max(math.Abs(p)*rel, abs)
}

// Partial returns the partial derivative of m with respect to p[j] at x,
// analytically when m implements [Differentiable] and otherwise by finite
// differences. p is restored before returning.
func Partial(m Model, j int, x float64, p []float64, step StepPolicy) float64 {
	if d, ok := m.(Differentiable); ok {
		return d.Derivative(j, x, p)
	}
	return numericPartial(m, j, x, p, step)
}

func numericPartial(m Model, j int, x float64, p []float64, step StepPolicy) float64 {
	orig := p[j]
	h := step.Step(orig)
	defer func() { p[j] = orig }()

	p[j] = orig + h
	up := m.Eval(x, p)
	if !step.Central {
		p[j] = orig
		return (up - m.Eval(x, p)) / h
	}
	p[j] = orig - h
	down := m.Eval(x, p)
	return (up - down) / (2 * h)
}
