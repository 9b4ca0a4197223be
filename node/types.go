// Package node implements the per-node runtime: it normalises all
// three functionality encodings to the same
// (ResetFunc, StepFunc) shape and drives them through the exact
// blocking-read / compute / non-blocking-write order the step contract
// requires, generalising the bspgraph.ComputeFunc /
// pipeline.ProcessorFunc adapter pattern into a single Node type.
package node

import (
	"context"

	"github.com/xplain-systems/xact/xsignal"
)

// RunInfo carries the identifiers and flags a node's functions can read
// but never mutate.
type RunInfo struct {
	IDSystem  string
	IDRun     string
	IDHost    string
	IDProcess string
	IDNode    string
	IsLocal   bool
}

// Bindings is an opaque mapping whose leaves are buffers - the shape of
// a node's config, state, inputs and outputs tables.
type Bindings map[string]interface{}

// ResetFunc initialises or zeroes state. It may return a non-nil Signal
// (any raised panic recovered by the caller is instead reported as the
// NonRecoverableError signal per the reset() contract).
type ResetFunc func(ctx context.Context, rt RunInfo, config Bindings, state Bindings) (xsignal.Signal, error)

// StepFunc computes outputs from inputs and state for a single step.
type StepFunc func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error)

// NoopReset and NoopStep back functionality that defines neither reset
// nor step: both default to no-op and step returns no signal.
func NoopReset(ctx context.Context, rt RunInfo, config, state Bindings) (xsignal.Signal, error) {
	return nil, nil
}

func NoopStep(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
	return nil, nil
}
