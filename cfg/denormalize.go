package cfg

import "golang.org/x/xerrors"

var defaultQueueSelectors = map[string]string{
	"intra_process":     "xact.transport.alias",
	"inter_process":     "xact.transport.local_queue",
	"inter_host_server": "xact.transport.tcp_server",
	"inter_host_client": "xact.transport.tcp_client",
}

// Denormalize adds the derived fields to an already-validated config,
// grounded directly on the original system's
// xact/cfg/edge.py denormalize: per-node host copy, per-edge locality
// classification, per-owner-host edge_idx assignment in declaration
// order, owner-host resolution, and the is_inter_host_edge_owner host
// flag. It is idempotent: calling Denormalize again on an
// already-denormalised config recomputes exactly the same values and
// adds nothing new, because every derived field is recomputed from the
// same source fields (Edge.SrcPath/DstPath/OwnerNodeID, Node.ProcessID,
// Process.HostID) rather than accumulated onto previous output.
func Denormalize(c *Config) (*Config, error) {
	for _, n := range c.Node {
		p, ok := c.Process[n.ProcessID]
		if !ok {
			return nil, WrapCfgError("denormalize", xerrors.Errorf("node %q references unknown process %q", n.ID, n.ProcessID))
		}
		n.HostID = p.HostID
	}

	for hostID := range c.Host {
		c.Host[hostID].IsInterHostEdgeOwner = false
	}

	idxByOwnerHost := map[string]int{}
	ownerHostsSeen := map[string]bool{}

	for _, e := range c.Edge {
		srcParts := splitPath(e.SrcPath)
		dstParts := splitPath(e.DstPath)
		idNodeSrc := srcParts[0]
		idNodeDst := dstParts[0]

		srcNode, ok := c.Node[idNodeSrc]
		if !ok {
			return nil, WrapCfgError("denormalize", xerrors.Errorf("edge src references unknown node %q", idNodeSrc))
		}
		dstNode, ok := c.Node[idNodeDst]
		if !ok {
			return nil, WrapCfgError("denormalize", xerrors.Errorf("edge dst references unknown node %q", idNodeDst))
		}
		ownerNode, ok := c.Node[e.OwnerNodeID]
		if !ok {
			return nil, WrapCfgError("denormalize", xerrors.Errorf("edge owner references unknown node %q", e.OwnerNodeID))
		}

		sameProcess := srcNode.ProcessID == dstNode.ProcessID
		sameHost := srcNode.HostID == dstNode.HostID

		var ipcType IPCClass
		switch {
		case sameHost && sameProcess:
			ipcType = IntraProcess
		case sameHost && !sameProcess:
			ipcType = InterProcess
		case !sameHost && !sameProcess:
			ipcType = InterHost
		default:
			// Same process id resolving to two different hosts: the one
			// combination the original system raises a RuntimeError for
			// ("Cannot use one process_id on two different hosts").
			return nil, WrapCfgError("denormalize", xerrors.Errorf("process %q cannot span two hosts: %w", srcNode.ProcessID, ErrProcessOnMultipleHosts))
		}

		if ipcType == InterHost && ownerNode.HostID != srcNode.HostID && ownerNode.HostID != dstNode.HostID {
			return nil, WrapCfgError("denormalize", xerrors.Errorf(
				"edge %q: owner host %q is neither src host %q nor dst host %q: %w",
				e.SrcPath+"-"+e.DstPath, ownerNode.HostID, srcNode.HostID, dstNode.HostID, ErrOwnerHostNotEndpoint))
		}

		e.IDEdge = e.SrcPath + "-" + e.DstPath
		e.RelPathSrc = srcParts[1:]
		e.RelPathDst = dstParts[1:]
		e.SrcNodeID = idNodeSrc
		e.DstNodeID = idNodeDst
		e.SrcHostID = srcNode.HostID
		e.DstHostID = dstNode.HostID
		e.OwnerHostID = ownerNode.HostID
		e.IPCType = ipcType
		e.ProcessIDs = []string{srcNode.ProcessID, dstNode.ProcessID}
		e.HostIDs = []string{srcNode.HostID, dstNode.HostID}

		if ipcType == InterHost {
			idx := idxByOwnerHost[e.OwnerHostID]
			e.EdgeIdx = idx
			e.hasEdgeIdx = true
			idxByOwnerHost[e.OwnerHostID] = idx + 1
			ownerHostsSeen[e.OwnerHostID] = true
		} else {
			e.EdgeIdx = 0
			e.hasEdgeIdx = false
		}
	}

	for hostID := range ownerHostsSeen {
		if h, ok := c.Host[hostID]; ok {
			h.IsInterHostEdgeOwner = true
		}
	}

	if err := checkPortRanges(c); err != nil {
		return nil, err
	}

	if c.Queue == nil {
		c.Queue = map[string]string{}
	}
	for class, impl := range defaultQueueSelectors {
		if _, ok := c.Queue[class]; !ok {
			c.Queue[class] = impl
		}
	}

	c.denormalized = true
	return c, nil
}

// checkPortRanges enforces "edge_idx + port_range.lo <= port_range.hi
// for every inter-host edge owned by a given host".
func checkPortRanges(c *Config) error {
	for _, e := range c.Edge {
		if !e.hasEdgeIdx {
			continue
		}
		h, ok := c.Host[e.OwnerHostID]
		if !ok {
			return WrapCfgError("denormalize", xerrors.Errorf("edge %q owner host %q not found", e.IDEdge, e.OwnerHostID))
		}
		port := h.PortRangeLo + e.EdgeIdx
		if port > h.PortRangeHi {
			return WrapCfgError("denormalize", xerrors.Errorf(
				"edge %q: port %d (lo=%d + idx=%d) exceeds host %q port_range hi=%d",
				e.IDEdge, port, h.PortRangeLo, e.EdgeIdx, e.OwnerHostID, h.PortRangeHi))
		}
	}
	return nil
}

// Port returns the TCP port assigned to an inter-host edge:
// port_range.lo + edge_idx.
func (c *Config) Port(e *Edge) (int, bool) {
	if !e.hasEdgeIdx {
		return 0, false
	}
	h, ok := c.Host[e.OwnerHostID]
	if !ok {
		return 0, false
	}
	return h.PortRangeLo + e.EdgeIdx, true
}
