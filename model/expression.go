package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Variable is the free variable of expression models.
const Variable = "x"

// Definition is a named intermediate expression usable by the formula and by
// other definitions.
type Definition struct {
	Name    string
	Formula string
}

var functions = map[string]any{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"pow":   math.Pow,
	"pi":    math.Pi,
}

// Expression is a user-defined model compiled from a formula over x and
// named parameters.
type Expression struct {
	name    string
	formula string
	params  []Parameter
	defs    []Definition // topologically sorted
	progs   []*vm.Program
	prog    *vm.Program
	envPool sync.Pool
}

// NewExpression compiles formula over x, the given parameters and the
// optional definitions. Unknown identifiers and unparseable formulas fail
// with [ErrInvalidModel]; definitions that depend on themselves fail with
// [ErrRecursiveDefinition].
func NewExpression(name, formula string, params []Parameter, defs ...Definition) (*Expression, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, fmt.Errorf("%w: %q has an empty formula", ErrInvalidModel, name)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: %q has no parameters", ErrInvalidModel, name)
	}

	known := map[string]bool{Variable: true}
	for _, p := range params {
		if err := declare(known, p.Name); err != nil {
			return nil, err
		}
	}
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		if err := declare(known, d.Name); err != nil {
			return nil, err
		}
		byName[d.Name] = d
	}

	deps := make(map[string][]string, len(defs))
	for _, d := range defs {
		ids, err := identifiers(d.Formula)
		if err != nil {
			return nil, fmt.Errorf("%w: definition %q: %v", ErrInvalidModel, d.Name, err)
		}
		for _, id := range ids {
			if !known[id] {
				return nil, fmt.Errorf("%w: definition %q uses unknown name %q", ErrInvalidModel, d.Name, id)
			}
			if _, ok := byName[id]; ok {
				deps[d.Name] = append(deps[d.Name], id)
			}
		}
	}
	ids, err := identifiers(formula)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("%w: unknown name %q in %q", ErrInvalidModel, id, formula)
		}
	}

	order, err := topoSort(defs, deps)
	if err != nil {
		return nil, err
	}

	e := &Expression{
		name:    name,
		formula: formula,
		params:  append([]Parameter(nil), params...),
		defs:    order,
	}
	e.envPool.New = func() any { return e.newEnv() }

	env := e.newEnv()
	for _, d := range order {
		prog, err := expr.Compile(d.Formula, expr.Env(env), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("%w: definition %q: %v", ErrInvalidModel, d.Name, err)
		}
		e.progs = append(e.progs, prog)
	}
	if e.prog, err = expr.Compile(formula, expr.Env(env), expr.AsFloat64()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return e, nil
}

func declare(known map[string]bool, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidModel)
	case known[name]:
		return fmt.Errorf("%w: %q declared twice", ErrInvalidModel, name)
	case functions[name] != nil:
		return fmt.Errorf("%w: %q is a function name", ErrInvalidModel, name)
	}
	known[name] = true
	return nil
}

func (e *Expression) newEnv() map[string]any {
	env := make(map[string]any, len(functions)+len(e.params)+len(e.defs)+1)
	for k, v := range functions {
		env[k] = v
	}
	env[Variable] = 0.0
	for _, p := range e.params {
		env[p.Name] = 0.0
	}
	for _, d := range e.defs {
		env[d.Name] = 0.0
	}
	return env
}

func (e *Expression) Name() string       { return e.name }
func (e *Expression) Category() Category { return User }
func (e *Expression) Formula() string    { return e.formula }

func (e *Expression) Params() []Parameter {
	return append([]Parameter(nil), e.params...)
}

// Eval evaluates the formula. Evaluation errors yield NaN.
func (e *Expression) Eval(x float64, p []float64) float64 {
	env := e.envPool.Get().(map[string]any)
	defer e.envPool.Put(env)

	env[Variable] = x
	for i, par := range e.params {
		env[par.Name] = p[i]
	}
	for i, d := range e.defs {
		v, err := expr.Run(e.progs[i], env)
		if err != nil {
			return math.NaN()
		}
		env[d.Name] = v
	}
	v, err := expr.Run(e.prog, env)
	if err != nil {
		return math.NaN()
	}
	f, ok := v.(float64)
	if !ok {
		return math.NaN()
	}
	return f
}

type identVisitor struct {
	seen map[string]bool
	list []string
}

func (v *identVisitor) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok || v.seen[id.Value] {
		return
	}
	v.seen[id.Value] = true
	if _, fn := functions[id.Value]; !fn {
		v.list = append(v.list, id.Value)
	}
}

// identifiers returns the non-function names used by formula.
func identifiers(formula string) ([]string, error) {
	tree, err := parser.Parse(formula)
	if err != nil {
		return nil, err
	}
	v := &identVisitor{seen: map[string]bool{}}
	ast.Walk(&tree.Node, v)
	sort.Strings(v.list)
	return v.list, nil
}

// topoSort orders definitions so each follows the ones it uses.
func topoSort(defs []Definition, deps map[string][]string) ([]Definition, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(defs))
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	var order []Definition
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrRecursiveDefinition, strings.Join(append(path, name), " -> "))
		}
		state[name] = visiting
		for _, dep := range deps[name] {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, byName[name])
		return nil
	}
	for _, d := range defs {
		if err := visit(d.Name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
