// Package scheduler implements the per-process run-order computation
// and the reset/step control loop, grounded on two
// teacher sources at once: bspgraph.Graph.step()/stepWorker for the
// execution-barrier shape, and the original system's
// xact/proc/__init__.py for the exact topological-sort and
// signal-handling semantics.
package scheduler

import (
	"sort"

	"github.com/xplain-systems/xact/cfg"
)

// BuildRunOrder computes the execution order for every node assigned to
// processID: a Kahn-style tranche sort over intra-process feedforward
// edges only, tie-broken lexicographically within a tranche, with any
// unscheduled (source) nodes appended sorted by id - a direct
// generalisation of _get_list_id_node_in_runorder /
// _local_acyclic_data_flow / topological_sort.
func BuildRunOrder(c *cfg.Config, processID string) []string {
	forward := map[string]map[string]bool{}
	indegree := map[string]int{}
	inProcess := map[string]bool{}
	inGraph := map[string]bool{}

	for id, n := range c.Node {
		if n.ProcessID == processID {
			inProcess[id] = true
		}
	}

	for _, e := range c.Edge {
		if e.Direction != cfg.Feedforward || e.IPCType != cfg.IntraProcess {
			continue
		}
		if !inProcess[e.SrcNodeID] || !inProcess[e.DstNodeID] {
			continue
		}
		if forward[e.SrcNodeID] == nil {
			forward[e.SrcNodeID] = map[string]bool{}
		}
		if !forward[e.SrcNodeID][e.DstNodeID] {
			forward[e.SrcNodeID][e.DstNodeID] = true
			indegree[e.DstNodeID]++
		}
		if _, ok := indegree[e.SrcNodeID]; !ok {
			indegree[e.SrcNodeID] = 0
		}
		inGraph[e.SrcNodeID] = true
		inGraph[e.DstNodeID] = true
	}

	scheduled := map[string]bool{}
	var order []string

	tranche := zeroIndegree(inGraph, indegree, scheduled)
	for len(tranche) > 0 {
		sort.Strings(tranche)
		for _, id := range tranche {
			order = append(order, id)
			scheduled[id] = true
		}
		for _, id := range tranche {
			for next := range forward[id] {
				indegree[next]--
			}
		}
		tranche = zeroIndegree(inGraph, indegree, scheduled)
	}

	var unscheduled []string
	for id := range inProcess {
		if !scheduled[id] {
			unscheduled = append(unscheduled, id)
		}
	}
	sort.Strings(unscheduled)
	order = append(order, unscheduled...)

	return order
}

func zeroIndegree(inGraph map[string]bool, indegree map[string]int, scheduled map[string]bool) []string {
	var tranche []string
	for id := range inGraph {
		if scheduled[id] {
			continue
		}
		if indegree[id] == 0 {
			tranche = append(tranche, id)
		}
	}
	return tranche
}
