package transport

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xplain-systems/xact/cfg"
	"github.com/xplain-systems/xact/cfg/data"
	"github.com/xplain-systems/xact/xbuf"
	"golang.org/x/xerrors"
)

// NewFactory builds every Endpoint that the process identified by
// (localHostID, localProcessID) needs: one per edge it participates in,
// either directly (intra_process) or as one side of a socket pair
// (inter_process, inter_host), keyed by edge id. Grounded on the
// teacher's message.QueueFactory pattern
// (bspgraph.GraphConfig.QueueFactory), generalised from "one factory
// function" into "one factory call producing every endpoint a process
// needs up front".
//
// localProcessID is required in addition to localHostID because an
// inter_process edge's two ends are genuinely separate OS processes
// (host.Agent.Start re-execs this binary once per local process id) -
// unlike an intra_process edge, which this same call handles for every
// node regardless of which process id asks, an inter_process edge needs
// to know which specific process id is asking so it can pick the bind
// vs. dial role.
func NewFactory(c *cfg.Config, localHostID, localProcessID string) (map[string]Endpoint, error) {
	if !c.IsDenormalized() {
		return nil, xerrors.New("transport.NewFactory requires a denormalised config")
	}

	endpoints := make(map[string]Endpoint, len(c.Edge))
	for _, e := range c.Edge {
		involvesLocal := e.SrcHostID == localHostID || e.DstHostID == localHostID
		if !involvesLocal {
			continue
		}

		switch e.IPCType {
		case cfg.IntraProcess:
			ep, err := newIntraProcessEndpoint(e)
			if err != nil {
				return nil, err
			}
			endpoints[e.IDEdge] = ep

		case cfg.InterProcess:
			if e.ProcessIDs[0] != localProcessID && e.ProcessIDs[1] != localProcessID {
				continue
			}
			ep, err := newInterProcessEndpoint(c, e, localProcessID)
			if err != nil {
				return nil, err
			}
			endpoints[e.IDEdge] = ep

		case cfg.InterHost:
			ep, err := newInterHostEndpoint(c, e, localHostID)
			if err != nil {
				return nil, err
			}
			endpoints[e.IDEdge] = ep

		default:
			return nil, xerrors.Errorf("edge %q: unrecognised ipc class %q", e.IDEdge, e.IPCType)
		}
	}
	return endpoints, nil
}

func newIntraProcessEndpoint(e *cfg.Edge) (Endpoint, error) {
	ctor, err := data.Allocator(e.DataType)
	if err != nil {
		return nil, xerrors.Errorf("edge %q: %w", e.IDEdge, err)
	}
	cell := xbuf.NewRestrictedBuffer(ctor())
	return NewAliasEndpoint(cell), nil
}

// newInterProcessEndpoint backs a same-host, cross-OS-process edge with
// a Unix domain socket rather than a Go channel, since a channel cannot
// cross the process boundary host.Agent.Start creates by re-execing this
// binary once per local process id. The owner node's process binds the
// socket; the other side dials it.
func newInterProcessEndpoint(c *cfg.Config, e *cfg.Edge, localProcessID string) (Endpoint, error) {
	ownerNode, ok := c.Node[e.OwnerNodeID]
	if !ok {
		return nil, xerrors.Errorf("edge %q: owner node %q not found", e.IDEdge, e.OwnerNodeID)
	}
	path := interProcessSocketPath(c.Runtime.IDRun, e.IDEdge)

	if localProcessID == ownerNode.ProcessID {
		return NewUnixServerEndpoint(path)
	}
	return NewUnixClientEndpoint(path), nil
}

// interProcessSocketPath hashes idEdge into a fixed-length token: the
// raw edge id ("node.outputs.port-node.inputs.port") can easily exceed
// a Unix domain socket path's ~108 byte kernel limit once joined with a
// temp directory.
func interProcessSocketPath(idRun, idEdge string) string {
	sum := sha1.Sum([]byte(idEdge))
	return filepath.Join(os.TempDir(), fmt.Sprintf("xact-%s-%s.sock", idRun, hex.EncodeToString(sum[:])[:12]))
}

func newInterHostEndpoint(c *cfg.Config, e *cfg.Edge, localHostID string) (Endpoint, error) {
	ownerHost, ok := c.Host[e.OwnerHostID]
	if !ok {
		return nil, xerrors.Errorf("edge %q: owner host %q not found", e.IDEdge, e.OwnerHostID)
	}
	port, ok := c.Port(e)
	if !ok {
		return nil, xerrors.Errorf("edge %q: no port assigned", e.IDEdge)
	}

	if localHostID == e.OwnerHostID {
		return NewTCPServerEndpoint(fmt.Sprintf(":%d", port))
	}
	addr := fmt.Sprintf("%s:%d", ownerHost.Hostname, port)
	return NewTCPClientEndpoint(addr), nil
}
