// Package config reads fit-run descriptions from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-curvefit/fit"
	"github.com/cwbudde/algo-curvefit/model"
)

// Errors returned while loading or building a run.
var (
	ErrInvalidConfig    = errors.New("config: invalid run")
	ErrModelChoice      = errors.New("config: exactly one of model, expression or peaks must be set")
	ErrUnknownParameter = errors.New("config: unknown parameter")
)

var validate = validator.New()

// Run describes one fit. Exactly one of Model, Expression or Peaks selects
// the model.
type Run struct {
	// Model is the name of a registered model.
	Model string `yaml:"model,omitempty"`
	// Expression defines a user model over x and the listed parameters.
	Expression  string       `yaml:"expression,omitempty"`
	Name        string       `yaml:"name,omitempty"`
	Definitions []Definition `yaml:"definitions,omitempty" validate:"dive"`
	Peaks       *Peaks       `yaml:"peaks,omitempty" validate:"omitempty"`

	Parameters []Parameter `yaml:"parameters,omitempty" validate:"dive"`
	// Guess estimates initial values from the data for parameters that
	// Parameters does not set.
	Guess bool `yaml:"guess,omitempty"`

	Algorithm     string  `yaml:"algorithm,omitempty" validate:"omitempty,oneof=lm lm-scaled scaled lm-unscaled unscaled simplex nelder-mead"`
	Weighting     string  `yaml:"weighting,omitempty" validate:"omitempty,oneof=none instrumental statistical dataset arbitrary"`
	Tolerance     float64 `yaml:"tolerance,omitempty" validate:"gt=0"`
	MaxIterations int     `yaml:"maxIterations,omitempty" validate:"gt=0"`
	CurvePoints   int     `yaml:"curvePoints,omitempty" validate:"gte=2"`
	CurveOnData   bool    `yaml:"curveOnData,omitempty"`
	ScaleErrors   bool    `yaml:"scaleErrors,omitempty"`
	Range         *Range  `yaml:"range,omitempty" validate:"omitempty"`
	Step          *Step   `yaml:"step,omitempty" validate:"omitempty"`
}

// Definition is a named sub-expression of a user model.
type Definition struct {
	Name    string `yaml:"name" validate:"required"`
	Formula string `yaml:"formula" validate:"required"`
}

// Peaks selects a multi-peak model.
type Peaks struct {
	Count int    `yaml:"count" validate:"gte=1"`
	Shape string `yaml:"shape" validate:"oneof=gauss gaussian Gauss lorentz lorentzian Lorentz"`
}

// Parameter sets the initial value of one parameter, optionally holding it
// fixed.
type Parameter struct {
	Name    string   `yaml:"name" validate:"required"`
	Initial *float64 `yaml:"initial,omitempty"`
	Fixed   bool     `yaml:"fixed,omitempty"`
}

// Range restricts the fit to [From, To].
type Range struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to" validate:"gtfield=From"`
}

// Step configures numeric Jacobians.
type Step struct {
	Relative float64 `yaml:"relative" validate:"gte=0"`
	Absolute float64 `yaml:"absolute" validate:"gte=0"`
	Central  bool    `yaml:"central"`
}

// Load reads and validates a run from a YAML file.
func Load(path string) (*Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a run. Unknown keys are rejected and missing
// settings take the fit engine's defaults.
func Parse(b []byte) (*Run, error) {
	var r Run
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	r.applyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Run) applyDefaults() {
	if r.Tolerance == 0 {
		r.Tolerance = fit.DefaultTolerance
	}
	if r.MaxIterations == 0 {
		r.MaxIterations = fit.DefaultMaxIterations
	}
	if r.CurvePoints == 0 {
		r.CurvePoints = fit.DefaultCurvePoints
	}
}

// Validate checks the struct tags and the model choice.
func (r *Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	set := 0
	for _, ok := range []bool{r.Model != "", r.Expression != "", r.Peaks != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return ErrModelChoice
	}
	return nil
}

// Resolve returns the model the run selects. Expression models are built
// fresh and not registered.
func (r *Run) Resolve(reg *model.Registry) (model.Model, error) {
	switch {
	case r.Model != "":
		return reg.Lookup(r.Model)
	case r.Peaks != nil:
		shape, err := model.ParseShape(r.Peaks.Shape)
		if err != nil {
			return nil, err
		}
		return reg.MultiPeak(r.Peaks.Count, shape)
	default:
		name := r.Name
		if name == "" {
			name = "expression"
		}
		params := make([]model.Parameter, len(r.Parameters))
		for i, p := range r.Parameters {
			params[i] = model.Parameter{Name: p.Name, Initial: math.NaN(), Fixed: p.Fixed}
			if p.Initial != nil {
				params[i].Initial = *p.Initial
			}
		}
		defs := make([]model.Definition, len(r.Definitions))
		for i, d := range r.Definitions {
			defs[i] = model.Definition{Name: d.Name, Formula: d.Formula}
		}
		return model.NewExpression(name, r.Expression, params, defs...)
	}
}

// Options translates the run into fit options for m. Parameters not
// declared by m are rejected.
func (r *Run) Options(m model.Model) ([]fit.Option, error) {
	alg, err := fit.ParseAlgorithm(r.Algorithm)
	if err != nil {
		return nil, err
	}
	w, err := fit.ParseWeighting(r.Weighting)
	if err != nil {
		return nil, err
	}
	opts := []fit.Option{
		fit.WithAlgorithm(alg),
		fit.WithWeighting(w),
		fit.WithTolerance(r.Tolerance),
		fit.WithMaxIterations(r.MaxIterations),
		fit.WithCurvePoints(r.CurvePoints),
	}
	if r.Guess {
		opts = append(opts, fit.WithGuess())
	}
	if r.CurveOnData {
		opts = append(opts, fit.WithCurveOnData())
	}
	if r.ScaleErrors {
		opts = append(opts, fit.WithScaleErrors())
	}
	if r.Range != nil {
		opts = append(opts, fit.WithRange(r.Range.From, r.Range.To))
	}
	if r.Step != nil {
		opts = append(opts, fit.WithStepPolicy(model.StepPolicy{
			Relative: r.Step.Relative,
			Absolute: r.Step.Absolute,
			Central:  r.Step.Central,
		}))
	}

	known := map[string]bool{}
	for _, p := range m.Params() {
		known[p.Name] = true
	}
	for _, p := range r.Parameters {
		if !known[p.Name] {
			return nil, fmt.Errorf("%w: %q is not a parameter of %s", ErrUnknownParameter, p.Name, m.Name())
		}
		switch {
		case p.Fixed && p.Initial != nil:
			opts = append(opts, fit.WithFixed(p.Name, *p.Initial))
		case p.Fixed:
			opts = append(opts, fit.WithHold(p.Name))
		case p.Initial != nil:
			opts = append(opts, fit.WithInitial(p.Name, *p.Initial))
		}
	}
	return opts, nil
}
