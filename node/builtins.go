package node

import (
	"context"

	"github.com/xplain-systems/xact/xsignal"
	"golang.org/x/xerrors"
)

// RegisterBuiltins installs a small library of generic, reusable node
// kinds that any graph config can reference by module name, standing
// in for the original system's ability to point functionality.py_module
// at any importable Python callable: a statically compiled binary can
// only dispatch to factories it was built with, so cmd/xact ships this
// fixed set rather than leaving every config unable to resolve a module
// reference at all.
func RegisterBuiltins(r *Registry) {
	r.Register("counter", counterFactory)
	r.Register("threshold_halt", thresholdHaltFactory)
	r.Register("feedback_counter", feedbackCounterFactory)
	r.Register("feedback_threshold", feedbackThresholdFactory)
	r.RegisterCoro("counter_coro", counterCoroFactory)
	r.RegisterCoro("threshold_halt_coro", thresholdHaltCoroFactory)
}

func argString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func argFloat(args map[string]interface{}, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// counterFactory builds a node that increments an int64 field of its
// own state by one every step and mirrors the running total into a
// named field of a named output port, e.g. state.count -> outputs.output.count.
func counterFactory(args map[string]interface{}) (ResetFunc, StepFunc, error) {
	outputPort := argString(args, "output_port", "output")
	outputField := argString(args, "output_field", "count")

	reset := func(ctx context.Context, rt RunInfo, config, state Bindings) (xsignal.Signal, error) {
		if p, ok := state["_"].(*int64); ok {
			*p = 0
		}
		return nil, nil
	}
	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		p, ok := state["_"].(*int64)
		if !ok {
			return nil, xerrors.New("counter node requires state_type \"int64\"")
		}
		*p++
		setCompoundField(outputs, outputPort, outputField, *p)
		return nil, nil
	}
	return reset, step, nil
}

// thresholdHaltFactory builds a node that reads a named field off a
// named input port and halts with code 0 once its value is at least
// threshold.
func thresholdHaltFactory(args map[string]interface{}) (ResetFunc, StepFunc, error) {
	inputPort := argString(args, "input_port", "input")
	inputField := argString(args, "input_field", "count")
	threshold := argFloat(args, "threshold", 10)

	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		v, ok := compoundField(inputs, inputPort, inputField)
		if ok && v >= threshold {
			return &xsignal.Halt{Code: 0}, nil
		}
		return nil, nil
	}
	return NoopReset, step, nil
}

func counterCoroFactory(args map[string]interface{}) (CoroBody, error) {
	outputPort := argString(args, "output_port", "output")
	outputField := argString(args, "output_field", "count")

	body := func(ctx context.Context, rt RunInfo, config, state Bindings, yield Yield) {
		// Prime: the first yield is consumed by Reset (which has no
		// outputs parameter to receive it), matching the module form's
		// reset() leaving state.count == 0 and emitting nothing.
		yield(Bindings{}, nil)

		var count int64
		for {
			count++
			outputs := Bindings{}
			setCompoundField(outputs, outputPort, outputField, count)
			yield(outputs, nil)
		}
	}
	return body, nil
}

func thresholdHaltCoroFactory(args map[string]interface{}) (CoroBody, error) {
	inputPort := argString(args, "input_port", "input")
	inputField := argString(args, "input_field", "count")
	threshold := argFloat(args, "threshold", 10)

	body := func(ctx context.Context, rt RunInfo, config, state Bindings, yield Yield) {
		inputs := Bindings{}
		for {
			inputs = yield(inputs, nil)
			if v, ok := compoundField(inputs, inputPort, inputField); ok && v >= threshold {
				yield(Bindings{}, &xsignal.Halt{Code: 0})
				return
			}
		}
	}
	return body, nil
}

// feedbackCounterFactory builds a counter that also accepts a feedback
// boolean telling it to stop: each step it first checks the named
// field of a named input port, halting without incrementing if it is
// already true, otherwise incrementing and emitting as counterFactory
// does: "a emits count; when a reads do_halt = true, it halts."
func feedbackCounterFactory(args map[string]interface{}) (ResetFunc, StepFunc, error) {
	inputPort := argString(args, "input_port", "input")
	inputField := argString(args, "input_field", "do_halt")
	outputPort := argString(args, "output_port", "output")
	outputField := argString(args, "output_field", "count")

	reset := func(ctx context.Context, rt RunInfo, config, state Bindings) (xsignal.Signal, error) {
		if p, ok := state["_"].(*int64); ok {
			*p = 0
		}
		return nil, nil
	}
	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		if halted, ok := compoundBoolField(inputs, inputPort, inputField); ok && halted {
			return &xsignal.Halt{Code: 0}, nil
		}
		p, ok := state["_"].(*int64)
		if !ok {
			return nil, xerrors.New("feedback_counter node requires state_type \"int64\"")
		}
		*p++
		setCompoundField(outputs, outputPort, outputField, *p)
		return nil, nil
	}
	return reset, step, nil
}

// feedbackThresholdFactory builds the companion to feedbackCounterFactory:
// it reads a named numeric field off a named input port and writes
// (value >= threshold) into a named boolean field of a named output
// port every step, never halting itself.
func feedbackThresholdFactory(args map[string]interface{}) (ResetFunc, StepFunc, error) {
	inputPort := argString(args, "input_port", "input")
	inputField := argString(args, "input_field", "count")
	outputPort := argString(args, "output_port", "output")
	outputField := argString(args, "output_field", "do_halt")
	threshold := argFloat(args, "threshold", 10)

	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		v, ok := compoundField(inputs, inputPort, inputField)
		setCompoundBoolField(outputs, outputPort, outputField, ok && v >= threshold)
		return nil, nil
	}
	return NoopReset, step, nil
}

// setCompoundField writes value into field of the map-shaped buffer
// held at bindings[port], mutating an existing pointer leaf in place
// when the allocator already populated one (preserving the aliasing
// invariant for intra-process edges) and falling back to a raw value
// for a freshly-built map.
func setCompoundField(bindings Bindings, port, field string, value int64) {
	m, ok := bindings[port].(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
		bindings[port] = m
	}
	if p, ok := m[field].(*int64); ok {
		*p = value
		return
	}
	m[field] = value
}

// compoundField reads field of the map-shaped buffer held at
// bindings[port], handling both a *int64 leaf (the normal allocator
// shape) and a raw numeric value.
func compoundField(bindings Bindings, port, field string) (float64, bool) {
	m, ok := bindings[port].(map[string]interface{})
	if !ok {
		return 0, false
	}
	switch v := m[field].(type) {
	case *int64:
		return float64(*v), true
	case int64:
		return float64(v), true
	case *float64:
		return *v, true
	case float64:
		return v, true
	}
	return 0, false
}

// setCompoundBoolField writes value into the named boolean field of
// the map-shaped buffer held at bindings[port], with the same
// mutate-in-place-leaf preference as setCompoundField.
func setCompoundBoolField(bindings Bindings, port, field string, value bool) {
	m, ok := bindings[port].(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
		bindings[port] = m
	}
	if p, ok := m[field].(*bool); ok {
		*p = value
		return
	}
	m[field] = value
}

// compoundBoolField reads the named boolean field of the map-shaped
// buffer held at bindings[port].
func compoundBoolField(bindings Bindings, port, field string) (bool, bool) {
	m, ok := bindings[port].(map[string]interface{})
	if !ok {
		return false, false
	}
	switch v := m[field].(type) {
	case *bool:
		return *v, true
	case bool:
		return v, true
	}
	return false, false
}
