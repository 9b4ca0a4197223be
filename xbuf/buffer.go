// Package xbuf implements the mutate-in-place buffer cell shared by the
// transport and node packages: an aliased intra-process edge only keeps
// the same reference identity across scheduler steps if writers mutate
// the existing buffer instead of rebinding the slot to a new one.
package xbuf

import (
	"reflect"

	"golang.org/x/xerrors"
)

// ErrTypeMismatch is returned by RestrictedBuffer.Set when the supplied
// value is not assignment-compatible with the buffer's allocated shape.
var ErrTypeMismatch = xerrors.New("value is not compatible with the restricted buffer's shape")

// RestrictedBuffer holds a single allocated buffer whose identity never
// changes for the lifetime of the edge it backs. Set copies the new
// value into the existing buffer rather than replacing it, so that any
// other holder of the same *RestrictedBuffer (or of the pointer/map
// returned by Get) observes the update without re-fetching it.
type RestrictedBuffer struct {
	v interface{}
}

// NewRestrictedBuffer wraps an already-allocated buffer (typically the
// output of a cfg/data Constructor) for in-place mutation.
func NewRestrictedBuffer(initial interface{}) *RestrictedBuffer {
	return &RestrictedBuffer{v: initial}
}

// Get returns the buffer's current identity - the same pointer or map
// value on every call.
func (b *RestrictedBuffer) Get() interface{} { return b.v }

// Set mutates the held buffer in place to reflect val, never rebinding
// b's slot to a new underlying value.
func (b *RestrictedBuffer) Set(val interface{}) error {
	switch cur := b.v.(type) {
	case map[string]interface{}:
		next, ok := val.(map[string]interface{})
		if !ok {
			return xerrors.Errorf("restricted buffer holds a map, got %T: %w", val, ErrTypeMismatch)
		}
		for k := range cur {
			delete(cur, k)
		}
		for k, v := range next {
			cur[k] = v
		}
		return nil

	case []byte:
		next, ok := val.([]byte)
		if !ok {
			return xerrors.Errorf("restricted buffer holds bytes, got %T: %w", val, ErrTypeMismatch)
		}
		if cap(cur) < len(next) {
			return xerrors.Errorf("restricted buffer capacity %d too small for %d bytes: %w", cap(cur), len(next), ErrTypeMismatch)
		}
		cur = cur[:len(next)]
		copy(cur, next)
		b.v = cur
		return nil
	}

	curVal := reflect.ValueOf(b.v)
	if curVal.Kind() != reflect.Ptr || curVal.IsNil() {
		return xerrors.Errorf("restricted buffer holds unassignable type %T: %w", b.v, ErrTypeMismatch)
	}

	newVal := reflect.ValueOf(val)
	if newVal.Kind() == reflect.Ptr {
		newVal = newVal.Elem()
	}
	target := curVal.Elem()
	if !newVal.Type().AssignableTo(target.Type()) {
		return xerrors.Errorf("cannot assign %T into %T: %w", val, b.v, ErrTypeMismatch)
	}
	target.Set(newVal)
	return nil
}
