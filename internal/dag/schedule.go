package dag

import (
	"context"
	"fmt"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/registry"
)

// srcRef identifies the authoritative source (node, output index) for one
// input slot. The sentinel {-1,-1} marks an unbound slot, which at run time
// keeps its pre-seeded zero value.
type srcRef struct {
	node int
	out  int
}

var unbound = srcRef{node: -1, out: -1}

// controlEdge is derived, never declared: one record per data edge whose
// source node is of the conditional type. condition is true for the then
// port (index 0).
type controlEdge struct {
	ifNode    int
	port      int
	target    int
	condition bool
}

// schedule is the per-run analysis of the committed edge set.
type schedule struct {
	indegree map[int]int
	fanout   map[int][]graph.Edge
	inputs   map[int][]srcRef
	controls []controlEdge
}

// buildSchedule computes indegrees, fanout lists, the port-indexed input
// map, and the derived control edges, then proves acyclicity with Kahn's
// algorithm. Data edges are the only precedence constraint; control edges
// add no ordering beyond the data edge they derive from.
func buildSchedule(ctx context.Context, g *graph.Graph) (*schedule, error) {
	logger := ctxlog.FromContext(ctx)

	s := &schedule{
		indegree: make(map[int]int, len(g.Nodes)),
		fanout:   make(map[int][]graph.Edge),
		inputs:   make(map[int][]srcRef, len(g.Nodes)),
	}
	for id, n := range g.Nodes {
		s.indegree[id] = 0
		slots := make([]srcRef, len(n.Type.Inputs))
		for i := range slots {
			slots[i] = unbound
		}
		s.inputs[id] = slots
	}

	for _, e := range g.Edges {
		s.fanout[e.FromNode] = append(s.fanout[e.FromNode], e)
		s.indegree[e.ToNode]++

		// Later connects on the same target slot win.
		s.inputs[e.ToNode][e.ToIn] = srcRef{node: e.FromNode, out: e.FromOut}

		if g.Nodes[e.FromNode].Type.Name == registry.ConditionalTypeName {
			s.controls = append(s.controls, controlEdge{
				ifNode:    e.FromNode,
				port:      e.FromOut,
				target:    e.ToNode,
				condition: e.FromOut == 0,
			})
		}
	}

	// Kahn's algorithm. Enqueue ties resolve by node-map iteration order;
	// callers must not depend on that order.
	remaining := make(map[int]int, len(s.indegree))
	queue := make([]int, 0, len(s.indegree))
	for id, deg := range s.indegree {
		remaining[id] = deg
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	for i := 0; i < len(queue); i++ {
		for _, e := range s.fanout[queue[i]] {
			remaining[e.ToNode]--
			if remaining[e.ToNode] == 0 {
				queue = append(queue, e.ToNode)
			}
		}
	}
	for id, deg := range remaining {
		if deg > 0 {
			logger.Debug("Schedule rejected: node retains positive indegree.", "nodeID", id)
			return nil, fmt.Errorf("schedule: %w", graph.ErrCycle)
		}
	}

	logger.Debug("Schedule built.",
		"nodes", len(g.Nodes), "edges", len(g.Edges), "control_edges", len(s.controls))
	return s, nil
}
