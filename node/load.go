package node

import (
	"context"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/node/script"
	"github.com/xplain-systems/xact/xsignal"
	"golang.org/x/xerrors"
)

// Load normalises one of the three functionality encodings to a
// (ResetFunc, StepFunc) pair.
func Load(f cfg.Functionality, registry *Registry) (ResetFunc, StepFunc, error) {
	switch f.Kind {
	case cfg.FunctionalityModule:
		factory, err := registry.Lookup(f.Module)
		if err != nil {
			return nil, nil, xerrors.Errorf("loading module functionality: %w", err)
		}
		reset, step, err := factory(f.Args)
		if err != nil {
			return nil, nil, xerrors.Errorf("module %q factory failed: %w", f.Module, err)
		}
		return withDefaults(reset, step), nil

	case cfg.FunctionalityCoro:
		factory, err := registry.LookupCoro(f.Module)
		if err != nil {
			return nil, nil, xerrors.Errorf("loading coroutine functionality: %w", err)
		}
		body, err := factory(f.Args)
		if err != nil {
			return nil, nil, xerrors.Errorf("coroutine %q factory failed: %w", f.Module, err)
		}
		reset, step := adapterFuncs(body)
		return reset, step, nil

	case cfg.FunctionalitySerialized:
		return loadScripted(f)

	default:
		return nil, nil, xerrors.Errorf("unrecognised functionality kind %q", f.Kind)
	}
}

func withDefaults(reset ResetFunc, step StepFunc) (ResetFunc, StepFunc) {
	if reset == nil {
		reset = NoopReset
	}
	if step == nil {
		step = NoopStep
	}
	return reset, step
}

// loadScripted evaluates SrcReset/SrcStep through the node/script
// sub-runtime: each source is a newline-separated list
// of `target = expr` assignments over dotted config/state/inputs/output
// identifiers.
func loadScripted(f cfg.Functionality) (ResetFunc, StepFunc, error) {
	reset := func(ctx context.Context, rt RunInfo, config, state Bindings) (xsignal.Signal, error) {
		if f.SrcReset == "" {
			return nil, nil
		}
		env := script.Env{}
		flattenInto(env, "config", config)
		flattenInto(env, "state", state)
		if err := script.Run(f.SrcReset, env, assignInto("state", state)); err != nil {
			return &xsignal.NonRecoverableError{Cause: err}, nil
		}
		return nil, nil
	}

	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		if f.SrcStep == "" {
			return nil, nil
		}
		env := script.Env{}
		flattenInto(env, "inputs", inputs)
		flattenInto(env, "state", state)
		flattenInto(env, "outputs", outputs)
		assign := func(target string, value float64) error {
			if err := assignInto("state", state)(target, value); err == nil {
				return nil
			}
			return assignInto("outputs", outputs)(target, value)
		}
		if err := script.Run(f.SrcStep, env, assign); err != nil {
			return &xsignal.NonRecoverableError{Cause: err}, nil
		}
		return nil, nil
	}

	return reset, step, nil
}

// flattenInto exposes b's leaves to the scripted evaluator under
// dotted identifiers: a plain pointer leaf as prefix.key, and one level
// of map-shaped (compound-typed) buffer as prefix.key.field, matching
// the "node.outputs.port" (plus an optional trailing field) path shape
// edges are declared with.
func flattenInto(env script.Env, prefix string, b Bindings) {
	for k, v := range b {
		if fv, ok := toFloat(v); ok {
			env[prefix+"."+k] = fv
			continue
		}
		if m, ok := v.(map[string]interface{}); ok {
			for field, leaf := range m {
				if fv, ok := toFloat(leaf); ok {
					env[prefix+"."+k+"."+field] = fv
				}
			}
		}
	}
}

// assignInto returns an assign function that writes value into b under
// the path's trailing segment(s), mutating an existing pointer buffer
// in place when one is already allocated there (or an existing
// compound buffer's field), or storing the raw value otherwise. It
// returns an error when target's leading segment does not name b's own
// root (letting the caller try another root table).
func assignInto(root string, b Bindings) func(target string, value float64) error {
	return func(target string, value float64) error {
		dot := indexByte(target, '.')
		if dot < 0 {
			return xerrors.Errorf("scripted target %q is not a dotted path", target)
		}
		if target[:dot] != root {
			return xerrors.Errorf("scripted target %q is not under %q", target, root)
		}
		rest := target[dot+1:]

		if fieldDot := indexByte(rest, '.'); fieldDot >= 0 {
			port, field := rest[:fieldDot], rest[fieldDot+1:]
			m, ok := b[port].(map[string]interface{})
			if !ok {
				m = map[string]interface{}{}
				b[port] = m
			}
			if existing, ok := m[field]; ok && setPointer(existing, value) {
				return nil
			}
			m[field] = value
			return nil
		}

		if existing, ok := b[rest]; ok {
			if setPointer(existing, value) {
				return nil
			}
		}
		b[rest] = value
		return nil
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func setPointer(dst interface{}, value float64) bool {
	switch p := dst.(type) {
	case *float64:
		*p = value
		return true
	case *float32:
		*p = float32(value)
		return true
	case *int32:
		*p = int32(value)
		return true
	case *int64:
		*p = int64(value)
		return true
	case *bool:
		*p = value != 0
		return true
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case *float64:
		return *n, true
	case *float32:
		return float64(*n), true
	case *int32:
		return float64(*n), true
	case *int64:
		return float64(*n), true
	case *bool:
		if *n {
			return 1, true
		}
		return 0, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
