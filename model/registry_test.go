package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSymbols serves plugin symbols from a map.
type fakeSymbols map[string]plugin.Symbol

func (f fakeSymbols) Lookup(name string) (plugin.Symbol, error) {
	if s, ok := f[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("symbol %s not found", name)
}

func linePlugin(withJacobian bool) fakeSymbols {
	params := []string{"a", "b"}
	name := "Line"
	syms := fakeSymbols{
		SymbolEvaluate:   func(x float64, p []float64) float64 { return p[0] + p[1]*x },
		SymbolParameters: &params,
		SymbolName:       &name,
	}
	if withJacobian {
		syms[SymbolJacobian] = func(j int, x float64, _ []float64) float64 {
			if j == 0 {
				return 1
			}
			return x
		}
	}
	return syms
}

func TestNewPluginModel(t *testing.T) {
	m, err := NewPluginModel("/plugins/line.so", linePlugin(true), NeedJacobian)
	require.NoError(t, err)
	require.Equal(t, "Line", m.Name())
	require.Equal(t, Plugin, m.Category())
	require.Equal(t, []string{"a", "b"}, names(m.Params()))
	require.InDelta(t, 7, m.Eval(3, []float64{1, 2}), 0)
	require.InDelta(t, 3, Partial(m, 1, 3, []float64{1, 2}, DefaultStepPolicy()), 0)

	simplexOnly, err := NewPluginModel("/plugins/line.so", linePlugin(false), NeedObjective)
	require.NoError(t, err)
	_, ok := simplexOnly.(Differentiable)
	require.False(t, ok)
}

func TestNewPluginModelContract(t *testing.T) {
	_, err := NewPluginModel("line.so", linePlugin(false), NeedJacobian)
	require.ErrorIs(t, err, ErrIncompleteModelContract)

	noEval := linePlugin(true)
	delete(noEval, SymbolEvaluate)
	_, err = NewPluginModel("line.so", noEval, NeedObjective)
	require.ErrorIs(t, err, ErrIncompleteModelContract)

	badEval := linePlugin(true)
	badEval[SymbolEvaluate] = func(x float64) float64 { return x }
	_, err = NewPluginModel("line.so", badEval, NeedObjective)
	require.ErrorIs(t, err, ErrIncompleteModelContract)

	noParams := linePlugin(true)
	delete(noParams, SymbolParameters)
	_, err = NewPluginModel("line.so", noParams, NeedObjective)
	require.ErrorIs(t, err, ErrIncompleteModelContract)
}

func TestOpenPluginMissingFile(t *testing.T) {
	_, err := OpenPlugin(filepath.Join(t.TempDir(), "missing.so"))
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	m, err := r.Lookup("Gauss")
	require.NoError(t, err)
	require.Equal(t, "Gauss", m.Name())

	_, err = r.Lookup("Nope")
	require.ErrorIs(t, err, ErrUnknownModel)

	e, err := r.Define("MyLine", "a + b*x", newParams(1, "a", "b"))
	require.NoError(t, err)
	got, err := r.Lookup("MyLine")
	require.NoError(t, err)
	require.Same(t, e, got)

	_, err = r.Define("MyLine", "a*x", newParams(1, "a"))
	require.ErrorIs(t, err, ErrDuplicateModel)
	require.Contains(t, r.Names(), "MyLine")

	mp, err := r.MultiPeak(3, Lorentzian)
	require.NoError(t, err)
	require.Len(t, mp.Params(), 10)
}

func TestRegistryPlugins(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"b.so", "a.so", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o600))
	}

	var opened []string
	r := NewRegistry(WithPluginDir(dir), WithOpener(func(path string) (Symbols, error) {
		opened = append(opened, filepath.Base(path))
		syms := linePlugin(true)
		name := filepath.Base(path)
		syms[SymbolName] = &name
		return syms, nil
	}))
	defer r.Close()

	loaded, err := r.LoadPluginDir(NeedJacobian)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, []string{"a.so", "b.so"}, opened)

	_, err = r.Lookup("a.so")
	require.NoError(t, err)
}

func TestRegistryPluginErrors(t *testing.T) {
	r := NewRegistry(WithOpener(func(path string) (Symbols, error) {
		return linePlugin(false), nil
	}))
	_, err := r.LoadPlugin("line.so", NeedJacobian)
	require.ErrorIs(t, err, ErrIncompleteModelContract)

	r2 := NewRegistry(WithPluginDir(filepath.Join(t.TempDir(), "absent")))
	_, err = r2.LoadPluginDir(NeedObjective)
	require.ErrorIs(t, err, ErrFileNotFound)

	r3 := NewRegistry()
	_, err = r3.LoadPlugin(filepath.Join(t.TempDir(), "absent.so"), NeedObjective)
	require.True(t, errors.Is(err, ErrFileNotFound), "got %v", err)
}

func TestRegistryClose(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Close())

	_, err := r.Lookup("Gauss")
	require.ErrorIs(t, err, ErrRegistryClosed)
	require.ErrorIs(t, r.Register(linear()), ErrRegistryClosed)
	_, err = r.MultiPeak(1, Gaussian)
	require.ErrorIs(t, err, ErrRegistryClosed)
	_, err = r.LoadPlugin("x.so", NeedObjective)
	require.ErrorIs(t, err, ErrRegistryClosed)
}
