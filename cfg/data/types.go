// Package data implements the I/O Buffer Allocator: given a named data
// type, it returns a fresh, zero-initialised buffer
// used to back an edge. It is grounded on the original system's
// xact/cfg/data package, but targets a small fixed set of Go-native
// atomic types rather than the original's numpy-flavoured table (see
// DESIGN.md) - xact-go moves data between Go processes, not between
// Python and C, so there is no need to carry numpy/C type-equivalence
// metadata.
package data

import "golang.org/x/xerrors"

// Buffer is the value that backs a single edge or node input/output
// slot. Compound types are represented as a nested map whose leaves are
// themselves Buffers. This is a plain alias for interface{}, not a
// distinct named type: xbuf.RestrictedBuffer (which has no dependency
// on this package) type-switches on map[string]interface{} directly,
// and that only matches a map[string]Buffer value if Buffer and
// interface{} are identical types.
type Buffer = interface{}

// Constructor returns a freshly allocated, independent Buffer each time
// it is called - the allocator is required to be idempotent in the
// sense that two calls never share backing storage.
type Constructor func() Buffer

// atomicConstructors is the built-in type table: aliases (type ->
// opaque_map, float32, etc.) resolve to the corresponding built-in.
var atomicConstructors = map[string]Constructor{
	"bool":       func() Buffer { v := false; return &v },
	"int32":      func() Buffer { v := int32(0); return &v },
	"int64":      func() Buffer { v := int64(0); return &v },
	"float32":    func() Buffer { v := float32(0); return &v },
	"float64":    func() Buffer { v := float64(0); return &v },
	"string":     func() Buffer { v := ""; return &v },
	"bytes":      func() Buffer { return []byte{} },
	"opaque_map": func() Buffer { return map[string]Buffer{} },
}

// IsAtomic reports whether typeName names a built-in atomic type.
func IsAtomic(typeName string) bool {
	_, ok := atomicConstructors[typeName]
	return ok
}

// atomicConstructor returns the built-in constructor for typeName, or an
// error if typeName is not a built-in atomic type.
func atomicConstructor(typeName string) (Constructor, error) {
	c, ok := atomicConstructors[typeName]
	if !ok {
		return nil, xerrors.Errorf("unknown atomic type %q", typeName)
	}
	return c, nil
}
