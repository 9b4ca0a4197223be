package node

import (
	"context"
	"fmt"
	"sort"

	"github.com/xplain-systems/xact/cfg/data"
	"github.com/xplain-systems/xact/transport"
	"github.com/xplain-systems/xact/xbuf"
	"github.com/xplain-systems/xact/xsignal"
	"golang.org/x/xerrors"
)

// Node drives one (ResetFunc, StepFunc) pair through the blocking-read /
// compute / non-blocking-write order a step contract requires,
// generalising bspgraph.Graph.stepWorker's per-vertex ComputeFunc
// dispatch into a standalone, directly-callable unit suited to the
// scheduler's single-goroutine tranche loop.
type Node struct {
	ID string
	rt RunInfo

	config  Bindings
	state   Bindings
	inputs  Bindings
	outputs Bindings

	inputCells map[string]*xbuf.RestrictedBuffer

	inputEndpoints  map[string]transport.Endpoint
	outputEndpoints map[string]transport.Endpoint

	// inputPorts/outputPorts hold inputEndpoints'/outputEndpoints' keys
	// in sorted order, so that Step's reads and writes across ports
	// happen in the same deterministic sequence every time rather than
	// following Go's randomised map iteration order.
	inputPorts  []string
	outputPorts []string

	reset ResetFunc
	step  StepFunc
}

// PortType names the data type backing one input or output port, used
// to allocate that port's private buffer cell.
type PortType struct {
	Port     string
	DataType string
}

// New builds a Node whose input ports keep a stable local buffer
// identity across steps (the "existing input-mapping identity" the
// step() contract requires), regardless of which transport class feeds
// them.
func New(
	id string,
	rt RunInfo,
	config Bindings,
	stateType string,
	inputs []PortType,
	outputs []PortType,
	inputEndpoints map[string]transport.Endpoint,
	outputEndpoints map[string]transport.Endpoint,
	reset ResetFunc,
	step StepFunc,
) (*Node, error) {
	n := &Node{
		ID:              id,
		rt:              rt,
		config:          config,
		state:           Bindings{},
		inputs:          Bindings{},
		outputs:         Bindings{},
		inputCells:      map[string]*xbuf.RestrictedBuffer{},
		inputEndpoints:  inputEndpoints,
		outputEndpoints: outputEndpoints,
		reset:           withDefaultReset(reset),
		step:            withDefaultStep(step),
	}

	if stateType != "" {
		ctor, err := data.Allocator(stateType)
		if err != nil {
			return nil, xerrors.Errorf("node %q: allocating state buffer: %w", id, err)
		}
		n.state["_"] = ctor()
	}

	for _, in := range inputs {
		ctor, err := data.Allocator(in.DataType)
		if err != nil {
			return nil, xerrors.Errorf("node %q input %q: %w", id, in.Port, err)
		}
		cell := xbuf.NewRestrictedBuffer(ctor())
		n.inputCells[in.Port] = cell
		n.inputs[in.Port] = cell.Get()
	}

	for _, out := range outputs {
		ctor, err := data.Allocator(out.DataType)
		if err != nil {
			return nil, xerrors.Errorf("node %q output %q: %w", id, out.Port, err)
		}
		n.outputs[out.Port] = ctor()
	}

	for port := range n.inputEndpoints {
		n.inputPorts = append(n.inputPorts, port)
	}
	sort.Strings(n.inputPorts)

	for port := range n.outputEndpoints {
		n.outputPorts = append(n.outputPorts, port)
	}
	sort.Strings(n.outputPorts)

	return n, nil
}

func withDefaultReset(r ResetFunc) ResetFunc {
	if r == nil {
		return NoopReset
	}
	return r
}

func withDefaultStep(s StepFunc) StepFunc {
	if s == nil {
		return NoopStep
	}
	return s
}

// Reset invokes the node's reset function, converting any panic into a
// NonRecoverableError signal.
func (n *Node) Reset(ctx context.Context) (sig xsignal.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig, err = &xsignal.NonRecoverableError{Cause: fmt.Errorf("reset panicked: %v", r)}, nil
		}
	}()
	return n.reset(ctx, n.rt, n.config, n.state)
}

// Step executes one full step: blocking-read every input, invoke the
// step function, non-blocking-write every output, and return the
// highest-priority signal observed. An error returned by the step
// function is reported as a NonRecoverableError signal.
func (n *Node) Step(ctx context.Context) (sig xsignal.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig, err = &xsignal.NonRecoverableError{Cause: fmt.Errorf("step panicked: %v", r)}, nil
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var signals []xsignal.Signal

	for _, port := range n.inputPorts {
		item, rerr := n.inputEndpoints[port].BlockingRead(ctx)
		if rerr != nil {
			return nil, xerrors.Errorf("node %q input %q: %w", n.ID, port, rerr)
		}
		cell := n.inputCells[port]
		if err := cell.Set(item); err != nil {
			return nil, xerrors.Errorf("node %q input %q: %w", n.ID, port, err)
		}
	}

	stepSig, stepErr := n.step(ctx, n.inputs, n.state, n.outputs)
	if stepErr != nil {
		stepSig = &xsignal.NonRecoverableError{Cause: xerrors.Errorf("node %q step: %w", n.ID, stepErr)}
	}
	if stepSig != nil {
		signals = append(signals, stepSig)
	}

	for _, port := range n.outputPorts {
		item, ok := n.outputs[port]
		if !ok {
			continue
		}
		if werr := n.outputEndpoints[port].NonBlockingWrite(item); werr != nil {
			signals = append(signals, &xsignal.NonRecoverableError{Cause: xerrors.Errorf("node %q output %q: %w", n.ID, port, werr)})
		}
	}

	return xsignal.Highest(signals), nil
}
