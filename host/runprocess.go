package host

import (
	"context"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/cfg/data"
	"github.com/xplain-systems/xact/node"
	"github.com/xplain-systems/xact/scheduler"
	"github.com/xplain-systems/xact/transport"
	"golang.org/x/xerrors"
)

// RunProcess is the body of `host run-process <id_process> <snapshot>`:
// it loads the config snapshot written by Agent.Start, builds every
// node assigned to processID with its wiring resolved against the
// host's transport endpoint map, and runs them to completion through
// the scheduler, returning the process's exit code.
func RunProcess(ctx context.Context, processID, snapshotPath string, registry *node.Registry) (int, error) {
	c, err := LoadSnapshot(snapshotPath)
	if err != nil {
		return 1, err
	}

	// Allocator resolves compound/aliased type names (e.g. every edge's
	// opaque_map data type) against this process-global dictionary; it
	// must be installed before the first node.New call below.
	data.Configure(c.Data)

	proc, ok := c.Process[processID]
	if !ok {
		return 1, xerrors.Errorf("run-process: unknown process %q", processID)
	}

	endpoints, err := transport.NewFactory(c, proc.HostID, processID)
	if err != nil {
		return 1, xerrors.Errorf("run-process: %w", err)
	}

	nodesByID := map[string]*node.Node{}
	for nodeID, n := range c.Node {
		if n.ProcessID != processID {
			continue
		}

		inputs, outputs := portsFor(c, nodeID, endpoints)

		reset, step, err := node.Load(n.Functionality, registry)
		if err != nil {
			return 1, xerrors.Errorf("run-process: node %q: %w", nodeID, err)
		}

		rt := node.RunInfo{
			IDSystem:  c.System.IDSystem,
			IDRun:     c.Runtime.IDRun,
			IDHost:    proc.HostID,
			IDProcess: processID,
			IDNode:    nodeID,
			IsLocal:   c.Runtime.IsLocal,
		}

		inst, err := node.New(
			nodeID, rt, n.Config, n.StateType,
			inputs.types, outputs.types,
			inputs.endpoints, outputs.endpoints,
			reset, step,
		)
		if err != nil {
			return 1, xerrors.Errorf("run-process: node %q: %w", nodeID, err)
		}
		nodesByID[nodeID] = inst
	}

	order := scheduler.BuildRunOrder(c, processID)
	ordered := make([]*node.Node, 0, len(order))
	for _, id := range order {
		if n, ok := nodesByID[id]; ok {
			ordered = append(ordered, n)
		}
	}

	sched := scheduler.New(processID, ordered)
	return sched.Run(ctx)
}

type nodePorts struct {
	types     []node.PortType
	endpoints map[string]transport.Endpoint
}

func portsFor(c *cfg.Config, nodeID string, endpoints map[string]transport.Endpoint) (inputs, outputs nodePorts) {
	inputs.endpoints = map[string]transport.Endpoint{}
	outputs.endpoints = map[string]transport.Endpoint{}

	for _, e := range c.Edge {
		if e.DstNodeID == nodeID {
			port := lastSegment(e.RelPathDst)
			ep, ok := endpoints[e.IDEdge]
			if !ok {
				continue
			}
			inputs.types = append(inputs.types, node.PortType{Port: port, DataType: e.DataType})
			inputs.endpoints[port] = ep
		}
		if e.SrcNodeID == nodeID {
			port := lastSegment(e.RelPathSrc)
			ep, ok := endpoints[e.IDEdge]
			if !ok {
				continue
			}
			outputs.types = append(outputs.types, node.PortType{Port: port, DataType: e.DataType})
			outputs.endpoints[port] = ep
		}
	}
	return inputs, outputs
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
