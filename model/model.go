package model

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by the model catalog.
var (
	ErrInvalidModel            = errors.New("model: invalid model")
	ErrRecursiveDefinition     = errors.New("model: recursive definition")
	ErrIncompleteModelContract = errors.New("model: incomplete model contract")
	ErrFileNotFound            = errors.New("model: file not found")
	ErrUnknownModel            = errors.New("model: unknown model")
	ErrDuplicateModel          = errors.New("model: model already registered")
	ErrRegistryClosed          = errors.New("model: registry closed")
	ErrInvalidPeakCount        = errors.New("model: peak count must be >= 1")
	ErrUnknownShape            = errors.New("model: unknown peak shape")
	ErrParameterCount          = errors.New("model: wrong number of parameters")
)

// Category tells where a model comes from.
type Category int

const (
	BuiltIn Category = iota
	User
	Plugin
)

func (c Category) String() string {
	switch c {
	case BuiltIn:
		return "built-in"
	case User:
		return "user"
	case Plugin:
		return "plugin"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Parameter describes one model parameter. An Initial value of NaN means no
// initial guess is available.
type Parameter struct {
	Name    string
	Initial float64
	Fixed   bool
}

// Model is a fit function y = f(x; p).
type Model interface {
	Name() string
	Category() Category
	// Params returns a fresh copy of the parameter descriptions.
	Params() []Parameter
	Eval(x float64, p []float64) float64
}

// Differentiable is implemented by models with analytic partial derivatives.
type Differentiable interface {
	Model
	// Derivative returns the partial derivative of f with respect to p[j].
	Derivative(j int, x float64, p []float64) float64
}

// Guesser is implemented by models that can estimate initial parameter
// values from data sorted by x.
type Guesser interface {
	Guess(x, y []float64) []float64
}

// Requirement is what an algorithm needs from a model.
type Requirement int

const (
	// NeedObjective is enough for derivative-free algorithms.
	NeedObjective Requirement = iota
	// NeedJacobian requires analytic or numeric partial derivatives.
	NeedJacobian
)

// CheckContract verifies that m can serve an algorithm with requirement
// req. Built-in and user models are always differentiable, numerically if
// not analytically. Plugin models must export their own Jacobian.
func CheckContract(m Model, req Requirement) error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	if req != NeedJacobian || m.Category() != Plugin {
		return nil
	}
	if _, ok := m.(Differentiable); !ok {
		return fmt.Errorf("%w: plugin %q exports no Jacobian", ErrIncompleteModelContract, m.Name())
	}
	return nil
}

// Initial returns the initial values of m's parameters.
func Initial(m Model) []float64 {
	params := m.Params()
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = p.Initial
	}
	return out
}

// FreeCount returns the number of parameters that are not fixed.
func FreeCount(params []Parameter) int {
	n := 0
	for _, p := range params {
		if !p.Fixed {
			n++
		}
	}
	return n
}

// Uninitialized returns the names of free parameters without an initial value.
func Uninitialized(params []Parameter) []string {
	var names []string
	for _, p := range params {
		if !p.Fixed && (math.IsNaN(p.Initial) || math.IsInf(p.Initial, 0)) {
			names = append(names, p.Name)
		}
	}
	return names
}

func names(params []Parameter) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func newParams(initial float64, list ...string) []Parameter {
	out := make([]Parameter, len(list))
	for i, n := range list {
		out[i] = Parameter{Name: n, Initial: initial}
	}
	return out
}
