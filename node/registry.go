package node

import "golang.org/x/xerrors"

// Factory builds a (ResetFunc, StepFunc) pair for a module-reference or
// coro-kind functionality, given the frozen argument record from
// functionality.args. Stands in for the "named importable module" the
// original config format references: a module reference plus a frozen
// argument record.
type Factory func(args map[string]interface{}) (ResetFunc, StepFunc, error)

// CoroFactory builds a CoroBody for a coro-kind functionality.
type CoroFactory func(args map[string]interface{}) (CoroBody, error)

// Registry resolves the module names used by functionality.module to
// concrete Go factories - the process-local analogue of Python's
// dynamic import.
type Registry struct {
	factories map[string]Factory
	coros     map[string]CoroFactory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{},
		coros:     map[string]CoroFactory{},
	}
}

// Register installs fn under name for step-mode functionality.
func (r *Registry) Register(name string, fn Factory) {
	r.factories[name] = fn
}

// RegisterCoro installs fn under name for coroutine-mode functionality.
func (r *Registry) RegisterCoro(name string, fn CoroFactory) {
	r.coros[name] = fn
}

// Lookup returns the step-mode factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	fn, ok := r.factories[name]
	if !ok {
		return nil, xerrors.Errorf("no module registered under %q", name)
	}
	return fn, nil
}

// LookupCoro returns the coroutine-mode factory registered under name.
func (r *Registry) LookupCoro(name string) (CoroFactory, error) {
	fn, ok := r.coros[name]
	if !ok {
		return nil, xerrors.Errorf("no coroutine registered under %q", name)
	}
	return fn, nil
}
