package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"plugin"
	"strings"
)

// Symbols exported by model plugins.
const (
	SymbolEvaluate   = "Evaluate"   // func(x float64, p []float64) float64
	SymbolJacobian   = "Jacobian"   // func(j int, x float64, p []float64) float64, optional
	SymbolParameters = "Parameters" // []string
	SymbolName       = "Name"       // string, optional
)

// Symbols looks up exported plugin symbols. *plugin.Plugin implements it.
type Symbols interface {
	Lookup(name string) (plugin.Symbol, error)
}

// Opener opens the plugin at path.
type Opener func(path string) (Symbols, error)

// OpenPlugin opens a Go plugin from disk.
func OpenPlugin(path string) (Symbols, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open plugin %s: %w", path, err)
	}
	return p, nil
}

type pluginModel struct {
	name   string
	path   string
	params []Parameter
	eval   func(float64, []float64) float64
}

func (m *pluginModel) Name() string       { return m.name }
func (m *pluginModel) Category() Category { return Plugin }

func (m *pluginModel) Params() []Parameter {
	return append([]Parameter(nil), m.params...)
}

func (m *pluginModel) Eval(x float64, p []float64) float64 { return m.eval(x, p) }

// Path returns the file the model was loaded from.
func (m *pluginModel) Path() string { return m.path }

type pluginJacobian struct {
	*pluginModel
	jac func(int, float64, []float64) float64
}

func (m *pluginJacobian) Derivative(j int, x float64, p []float64) float64 {
	return m.jac(j, x, p)
}

// NewPluginModel builds a model from plugin symbols. The model must export
// what req needs, otherwise [ErrIncompleteModelContract] is returned.
func NewPluginModel(path string, syms Symbols, req Requirement) (Model, error) {
	evalSym, err := syms.Lookup(SymbolEvaluate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not export %s", ErrIncompleteModelContract, path, SymbolEvaluate)
	}
	eval, ok := evalSym.(func(float64, []float64) float64)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s has type %T", ErrIncompleteModelContract, path, SymbolEvaluate, evalSym)
	}

	paramSym, err := syms.Lookup(SymbolParameters)
	if err != nil {
		return nil, fmt.Errorf("%w: %s does not export %s", ErrIncompleteModelContract, path, SymbolParameters)
	}
	var list []string
	switch v := paramSym.(type) {
	case *[]string:
		list = *v
	case []string:
		list = v
	default:
		return nil, fmt.Errorf("%w: %s.%s has type %T", ErrIncompleteModelContract, path, SymbolParameters, paramSym)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s declares no parameters", ErrInvalidModel, path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if sym, err := syms.Lookup(SymbolName); err == nil {
		switch v := sym.(type) {
		case *string:
			name = *v
		case string:
			name = v
		}
	}

	m := &pluginModel{name: name, path: path, params: newParams(1, list...), eval: eval}

	var jac func(int, float64, []float64) float64
	if sym, err := syms.Lookup(SymbolJacobian); err == nil {
		jac, _ = sym.(func(int, float64, []float64) float64)
	}
	if jac == nil {
		if req == NeedJacobian {
			return nil, fmt.Errorf("%w: %s does not export %s", ErrIncompleteModelContract, path, SymbolJacobian)
		}
		return m, nil
	}
	return &pluginJacobian{pluginModel: m, jac: jac}, nil
}
