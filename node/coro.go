package node

import (
	"context"
	"fmt"

	"github.com/xplain-systems/xact/xsignal"
)

// Yield hands a completed step's outputs (and optional signal) to the
// scheduler and blocks until the next step's inputs are available -
// the Go stand-in for a Python generator's `yield`/`send` round trip.
type Yield func(outputs Bindings, signal xsignal.Signal) Bindings

// CoroBody is user code shaped like a Python coroutine: it runs once,
// loops for as long as the node is scheduled, and calls yield() once
// per step to exchange outputs for the next inputs.
type CoroBody func(ctx context.Context, rt RunInfo, config Bindings, state Bindings, yield Yield)

type coroStep struct {
	inputs Bindings
}

type coroResult struct {
	outputs Bindings
	signal  xsignal.Signal
	done    bool
	err     error
}

// coroInstance is the running state machine behind one coroutine-kind
// node: a goroutine executing CoroBody, advanced one step at a time
// through an unbuffered handshake that mirrors generator.send().
type coroInstance struct {
	stepCh   chan coroStep
	resultCh chan coroResult
}

func startCoro(ctx context.Context, body CoroBody, rt RunInfo, config, state Bindings) *coroInstance {
	c := &coroInstance{
		stepCh:   make(chan coroStep),
		resultCh: make(chan coroResult, 1),
	}

	yield := func(outputs Bindings, signal xsignal.Signal) Bindings {
		c.resultCh <- coroResult{outputs: outputs, signal: signal}
		select {
		case next := <-c.stepCh:
			return next.inputs
		case <-ctx.Done():
			return nil
		}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.resultCh <- coroResult{err: fmt.Errorf("coroutine panicked: %v", r), done: true}
			}
		}()
		body(ctx, rt, config, state, yield)
		c.resultCh <- coroResult{done: true}
	}()

	return c
}

// adapterFuncs wraps a CoroBody as a (ResetFunc, StepFunc) pair: Reset
// instantiates the coroutine and advances it to its first yield;
// subsequent Step calls resume it with the current inputs and collect
// the next yielded outputs and signal, the same "advance to first
// yield" / "g.send(inputs)" contract a generator-based coroutine gives.
func adapterFuncs(body CoroBody) (ResetFunc, StepFunc) {
	var instance *coroInstance

	reset := func(ctx context.Context, rt RunInfo, config, state Bindings) (xsignal.Signal, error) {
		instance = startCoro(ctx, body, rt, config, state)
		res := <-instance.resultCh
		if res.err != nil {
			return &xsignal.NonRecoverableError{Cause: res.err}, nil
		}
		return res.signal, nil
	}

	step := func(ctx context.Context, inputs, state, outputs Bindings) (xsignal.Signal, error) {
		if instance == nil {
			return nil, fmt.Errorf("coroutine step called before reset")
		}
		select {
		case instance.stepCh <- coroStep{inputs: inputs}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		res := <-instance.resultCh
		if res.err != nil {
			return &xsignal.NonRecoverableError{Cause: res.err}, nil
		}
		if res.done {
			return &xsignal.Halt{Code: 0}, nil
		}
		for k, v := range res.outputs {
			outputs[k] = v
		}
		return res.signal, nil
	}

	return reset, step
}
