package data

import "golang.org/x/xerrors"

// ErrCyclicType is returned by Allocator when a pass over the data
// dictionary makes no progress: if a pass makes no progress, the
// config has a cycle or undefined type and is rejected.
var ErrCyclicType = xerrors.New("data type graph has an unresolved cycle or unknown type")

// typeSpec is the user-declared shape of a compound or aliased type, as
// found under cfg.Data[name]. It is either:
//   - a string, naming another type (atomic or user-defined) as an alias, or
//   - a map[string]interface{} with a "fields" entry mapping field name
//     to another type name, describing a compound (opaque_map-shaped) type.
type typeSpec = interface{}

// resolve resolves typeName against the built-in atomic-type table and
// the compound/aliased types declared in dict, returning a Constructor
// that yields a fresh, independently-allocated Buffer on each call.
//
// Resolution uses a greedy fixed-point algorithm: on each pass, every
// "gap" (a reference to a named type) whose
// target has no unresolved gaps of its own is resolved; the algorithm
// terminates when there is nothing left to resolve, or returns
// ErrCyclicType when a pass makes no progress.
func resolve(typeName string, dict map[string]interface{}) (Constructor, error) {
	resolved := map[string]Constructor{}
	for k, c := range atomicConstructors {
		resolved[k] = c
	}

	pending := map[string]typeSpec{}
	for name, spec := range dict {
		pending[name] = spec
	}

	for {
		if _, ok := resolved[typeName]; ok {
			break
		}
		progressed := false
		for name, spec := range pending {
			if _, already := resolved[name]; already {
				delete(pending, name)
				continue
			}
			ctor, ok, err := tryResolve(name, spec, resolved)
			if err != nil {
				return nil, err
			}
			if ok {
				resolved[name] = ctor
				delete(pending, name)
				progressed = true
			}
		}
		if _, ok := resolved[typeName]; ok {
			break
		}
		if !progressed {
			return nil, xerrors.Errorf("resolving type %q: %w", typeName, ErrCyclicType)
		}
	}

	return resolved[typeName], nil
}

// tryResolve attempts to build a Constructor for spec using only types
// already present in resolved. It returns ok == false (no error) when
// spec references a type that is not yet resolved - that is a "gap"
// still waiting on another pass, not a failure.
func tryResolve(name string, spec typeSpec, resolved map[string]Constructor) (Constructor, bool, error) {
	switch v := spec.(type) {
	case string:
		target, ok := resolved[v]
		if !ok {
			return nil, false, nil
		}
		return target, true, nil

	case map[string]interface{}:
		fieldsRaw, ok := v["fields"].(map[string]interface{})
		if !ok {
			return nil, false, xerrors.Errorf("type %q: compound type must declare \"fields\"", name)
		}
		fieldCtors := make(map[string]Constructor, len(fieldsRaw))
		for fieldName, fieldTypeRaw := range fieldsRaw {
			fieldType, ok := fieldTypeRaw.(string)
			if !ok {
				return nil, false, xerrors.Errorf("type %q field %q: type name must be a string", name, fieldName)
			}
			ctor, ok := resolved[fieldType]
			if !ok {
				return nil, false, nil // gap still open; try again next pass
			}
			fieldCtors[fieldName] = ctor
		}
		return func() Buffer {
			m := make(map[string]Buffer, len(fieldCtors))
			for fieldName, ctor := range fieldCtors {
				m[fieldName] = ctor()
			}
			return m
		}, true, nil

	default:
		return nil, false, xerrors.Errorf("type %q: unsupported type spec %T", name, spec)
	}
}
