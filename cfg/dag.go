package cfg

import "golang.org/x/xerrors"

// checkFeedforwardDAGs enforces "feedforward intra-process edges form a
// DAG per process", grounded on the original
// system's _local_acyclic_data_flow + topological_sort
// (xact/proc/__init__.py, xact/util/__init__.py): it groups feedforward
// edges whose endpoints share a process, then runs Kahn's algorithm; if
// any nodes remain with nonzero indegree once no more zero-indegree
// nodes can be peeled off, a cycle exists.
func checkFeedforwardDAGs(c *Config) error {
	byProcess := map[string][]*Edge{}
	for _, e := range c.Edge {
		if e.Direction != Feedforward {
			continue
		}
		srcNode, dstNode := endpointNodes(e)
		src, ok1 := c.Node[srcNode]
		dst, ok2 := c.Node[dstNode]
		if !ok1 || !ok2 {
			continue // reported elsewhere as an unknown reference
		}
		if src.ProcessID != "" && src.ProcessID == dst.ProcessID {
			byProcess[src.ProcessID] = append(byProcess[src.ProcessID], e)
		}
	}

	for processID, edges := range byProcess {
		if hasCycle(edges) {
			return xerrors.Errorf("process %q: feedforward edges contain a cycle", processID)
		}
	}
	return nil
}

func endpointNodes(e *Edge) (src, dst string) {
	srcParts := splitPath(e.SrcPath)
	dstParts := splitPath(e.DstPath)
	if len(srcParts) > 0 {
		src = srcParts[0]
	}
	if len(dstParts) > 0 {
		dst = dstParts[0]
	}
	return src, dst
}

func hasCycle(edges []*Edge) bool {
	indegree := map[string]int{}
	forward := map[string][]string{}
	for _, e := range edges {
		src, dst := endpointNodes(e)
		if _, ok := indegree[src]; !ok {
			indegree[src] = 0
		}
		indegree[dst]++
		forward[src] = append(forward[src], dst)
	}

	queue := make([]string, 0, len(indegree))
	for n, d := range indegree {
		if d == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range forward[n] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return visited != len(indegree)
}
