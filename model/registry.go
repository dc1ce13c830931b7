package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry is a catalog of models. The zero value is not usable; construct
// one with [NewRegistry].
type Registry struct {
	mu        sync.RWMutex
	models    map[string]Model
	pluginDir string
	open      Opener
	closed    bool
}

// RegistryOption configures a [Registry].
type RegistryOption func(*Registry)

// WithPluginDir sets the directory scanned by [Registry.LoadPluginDir].
func WithPluginDir(dir string) RegistryOption {
	return func(r *Registry) { r.pluginDir = dir }
}

// WithOpener replaces the plugin opener.
func WithOpener(o Opener) RegistryOption {
	return func(r *Registry) { r.open = o }
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		models: make(map[string]Model),
		open:   OpenPlugin,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, m := range Builtins() {
		r.models[m.Name()] = m
	}
	return r
}

// Register adds m under its name.
func (r *Registry) Register(m Model) error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.models[m.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateModel, m.Name())
	}
	r.models[m.Name()] = m
	return nil
}

// Lookup returns the model registered under name.
func (r *Registry) Lookup(name string) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// Names returns the registered model names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.models))
	for n := range r.models {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Define compiles and registers a user expression model.
func (r *Registry) Define(name, formula string, params []Parameter, defs ...Definition) (*Expression, error) {
	e, err := NewExpression(name, formula, params, defs...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(e); err != nil {
		return nil, err
	}
	return e, nil
}

// MultiPeak returns a K-peak model of the given shape. Multi-peak models are
// built on demand and not stored.
func (r *Registry) MultiPeak(count int, shape PeakShape) (*MultiPeak, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrRegistryClosed
	}
	return NewMultiPeak(count, shape)
}

// LoadPlugin opens the plugin at path and registers its model.
func (r *Registry) LoadPlugin(path string, req Requirement) (Model, error) {
	r.mu.RLock()
	open, closed := r.open, r.closed
	r.mu.RUnlock()
	if closed {
		return nil, ErrRegistryClosed
	}

	syms, err := open(path)
	if err != nil {
		return nil, err
	}
	m, err := NewPluginModel(path, syms, req)
	if err != nil {
		return nil, err
	}
	if err := r.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadPluginDir loads every *.so file in the plugin directory. Loading
// stops at the first error.
func (r *Registry) LoadPluginDir(req Requirement) ([]Model, error) {
	r.mu.RLock()
	dir := r.pluginDir
	r.mu.RUnlock()
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.so"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var loaded []Model
	for _, p := range paths {
		m, err := r.LoadPlugin(p, req)
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, m)
	}
	return loaded, nil
}

// Close releases the catalog. Later calls fail with [ErrRegistryClosed].
// Go plugins cannot be unloaded; their models are only dropped.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.models = nil
	return nil
}
