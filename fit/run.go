package fit

import (
	"fmt"

	"github.com/ausocean/utils/logging"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-curvefit/data"
	"github.com/cwbudde/algo-curvefit/dsp/core"
	"github.com/cwbudde/algo-curvefit/model"
)

// Algorithm selects the minimiser.
type Algorithm int

const (
	// ScaledLM is Levenberg–Marquardt with Marquardt damping: the normal
	// matrix is augmented by λ·diag(JᵀJ) rather than λ·I. This is the same
	// as scaling each parameter by the norm of its Jacobian column, so the
	// step does not depend on the units of a parameter. It does not scale
	// by parameter magnitude.
	ScaledLM Algorithm = iota
	// UnscaledLM is Levenberg–Marquardt damped with the identity.
	UnscaledLM
	// Simplex is the derivative-free Nelder–Mead method.
	Simplex
)

func (a Algorithm) String() string {
	switch a {
	case ScaledLM:
		return "scaled Levenberg-Marquardt"
	case UnscaledLM:
		return "unscaled Levenberg-Marquardt"
	case Simplex:
		return "Nelder-Mead simplex"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps "lm", "lm-unscaled" or "simplex" to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "lm", "lm-scaled", "scaled":
		return ScaledLM, nil
	case "lm-unscaled", "unscaled":
		return UnscaledLM, nil
	case "simplex", "nelder-mead":
		return Simplex, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Requirement is what the algorithm needs from a model.
func (a Algorithm) Requirement() model.Requirement {
	if a == Simplex {
		return model.NeedObjective
	}
	return model.NeedJacobian
}

// Weighting is the policy turning residuals into weighted residuals.
type Weighting int

const (
	// WeightNone uses w = 1.
	WeightNone Weighting = iota
	// WeightInstrumental uses w = 1/yErr.
	WeightInstrumental
	// WeightStatistical uses w = 1/sqrt(|y|).
	WeightStatistical
	// WeightDataset uses an externally supplied weight per row.
	WeightDataset
)

func (w Weighting) String() string {
	switch w {
	case WeightNone:
		return "none"
	case WeightInstrumental:
		return "instrumental"
	case WeightStatistical:
		return "statistical"
	case WeightDataset:
		return "dataset"
	default:
		return fmt.Sprintf("weighting(%d)", int(w))
	}
}

// ParseWeighting maps a weighting name to a Weighting.
func ParseWeighting(s string) (Weighting, error) {
	switch s {
	case "", "none":
		return WeightNone, nil
	case "instrumental":
		return WeightInstrumental, nil
	case "statistical":
		return WeightStatistical, nil
	case "dataset", "arbitrary":
		return WeightDataset, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeighting, s)
}

// Default run settings.
const (
	DefaultTolerance     = 1e-4
	DefaultMaxIterations = 1000
	DefaultCurvePoints   = 100
)

// Run is one configured regression. It is owned by a single caller and
// mutated only by [Fit].
type Run struct {
	ID     uuid.UUID
	Data   data.Accessor
	Range  *data.Range
	Model  model.Model
	Params []model.Parameter // working copy

	Weighting Weighting
	Weights   []float64 // per source row, for WeightDataset

	Algorithm     Algorithm
	MaxIterations int
	Tolerance     float64
	ScaleErrors   bool
	CurvePoints   int
	CurveOnData   bool
	Step          model.StepPolicy

	// AutoGuess estimates initial values from the data before fitting,
	// leaving explicitly set parameters alone.
	AutoGuess bool

	explicit map[string]bool
	unknown  []string
	logger   logging.Logger
}

// Option configures a [Run].
type Option func(*Run)

// NewRun binds acc and m with default settings.
func NewRun(acc data.Accessor, m model.Model, opts ...Option) *Run {
	r := &Run{
		ID:            uuid.New(),
		Data:          acc,
		Model:         m,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		CurvePoints:   DefaultCurvePoints,
		Step:          model.DefaultStepPolicy(),
	}
	if m != nil {
		r.Params = m.Params()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithRange restricts the fit to [from, to].
func WithRange(from, to float64) Option {
	return func(r *Run) { r.Range = &data.Range{From: from, To: to} }
}

// WithAlgorithm selects the minimiser.
func WithAlgorithm(a Algorithm) Option {
	return func(r *Run) { r.Algorithm = a }
}

// WithWeighting sets the weighting policy. weights are only used by
// WeightDataset.
func WithWeighting(w Weighting, weights ...float64) Option {
	return func(r *Run) {
		r.Weighting = w
		r.Weights = weights
	}
}

// WithMaxIterations sets the iteration limit.
func WithMaxIterations(n int) Option {
	return func(r *Run) { r.MaxIterations = n }
}

// WithTolerance sets the convergence tolerance.
func WithTolerance(tol float64) Option {
	return func(r *Run) { r.Tolerance = tol }
}

// WithScaleErrors multiplies the standard errors by sqrt(chi²/dof).
func WithScaleErrors() Option {
	return func(r *Run) { r.ScaleErrors = true }
}

// WithCurvePoints sets the size of the uniform result curve.
func WithCurvePoints(n int) Option {
	return func(r *Run) { r.CurvePoints = n }
}

// WithCurveOnData evaluates the result curve at the fitted x values.
func WithCurveOnData() Option {
	return func(r *Run) { r.CurveOnData = true }
}

// WithStepPolicy sets the finite-difference policy for numeric Jacobians.
func WithStepPolicy(s model.StepPolicy) Option {
	return func(r *Run) { r.Step = s }
}

// WithInitial sets the initial value of the named parameter.
func WithInitial(name string, v float64) Option {
	return func(r *Run) {
		i := r.paramIndex(name)
		if i < 0 {
			r.unknown = append(r.unknown, name)
			return
		}
		r.Params[i].Initial = v
		r.mark(name)
	}
}

// WithInitialValues sets all initial values in order.
func WithInitialValues(values ...float64) Option {
	return func(r *Run) {
		for i := range r.Params {
			if i < len(values) {
				r.Params[i].Initial = values[i]
				r.mark(r.Params[i].Name)
			}
		}
	}
}

// WithFixed holds the named parameter at v.
func WithFixed(name string, v float64) Option {
	return func(r *Run) {
		i := r.paramIndex(name)
		if i < 0 {
			r.unknown = append(r.unknown, name)
			return
		}
		r.Params[i].Initial = v
		r.Params[i].Fixed = true
		r.mark(name)
	}
}

// WithHold fixes the named parameter at its current initial value.
func WithHold(name string) Option {
	return func(r *Run) {
		i := r.paramIndex(name)
		if i < 0 {
			r.unknown = append(r.unknown, name)
			return
		}
		r.Params[i].Fixed = true
	}
}

// WithGuess estimates the initial values of parameters not set explicitly
// from the data when the fit starts. The model must implement
// model.Guesser.
func WithGuess() Option {
	return func(r *Run) { r.AutoGuess = true }
}

// WithLogger logs iteration progress at Debug and the outcome at Info.
func WithLogger(l logging.Logger) Option {
	return func(r *Run) { r.logger = l }
}

// SetLogger attaches a logger to an existing run.
func (r *Run) SetLogger(l logging.Logger) { r.logger = l }

func (r *Run) mark(name string) {
	if r.explicit == nil {
		r.explicit = map[string]bool{}
	}
	r.explicit[name] = true
}

func (r *Run) paramIndex(name string) int {
	for i, p := range r.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (r *Run) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Run) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

// validateSetup checks everything except the parameter values, which a
// guess may still fill in.
func (r *Run) validateSetup() error {
	if r.Data == nil {
		return ErrNoCurveAssigned
	}
	if r.Range != nil {
		if err := r.Range.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
	}
	if r.Model == nil {
		return fmt.Errorf("%w: no model", ErrInvalidModel)
	}
	switch r.Algorithm {
	case ScaledLM, UnscaledLM, Simplex:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(r.Algorithm))
	}
	if err := model.CheckContract(r.Model, r.Algorithm.Requirement()); err != nil {
		return err
	}
	if want := len(r.Model.Params()); len(r.Params) != want {
		return fmt.Errorf("%w: %s has %d, run has %d", ErrParameterCount, r.Model.Name(), want, len(r.Params))
	}
	if len(r.unknown) > 0 {
		return fmt.Errorf("%w: %v not in %s", ErrUnknownParameter, r.unknown, r.Model.Name())
	}
	switch {
	case !core.IsFinite(r.Tolerance) || r.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance %g", ErrInvalidSetting, r.Tolerance)
	case r.MaxIterations <= 0:
		return fmt.Errorf("%w: max iterations %d", ErrInvalidSetting, r.MaxIterations)
	case !r.CurveOnData && r.CurvePoints < 2:
		return fmt.Errorf("%w: curve points %d", ErrInvalidSetting, r.CurvePoints)
	}
	return nil
}

func (r *Run) validateParams() error {
	if model.FreeCount(r.Params) == 0 {
		return ErrNoFreeParameters
	}
	if missing := model.Uninitialized(r.Params); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUninitializedParameters, missing)
	}
	for _, p := range r.Params {
		if p.Fixed && !core.IsFinite(p.Initial) {
			return fmt.Errorf("%w: fixed %s", ErrUninitializedParameters, p.Name)
		}
	}
	return nil
}
