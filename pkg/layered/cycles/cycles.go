package cycles

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Breaker makes a graph acyclic by reversing edges. Reversed edges keep
// their identity and are flagged so routing can restore them.
type Breaker interface {
	// Break reverses a feedback set of g's edges and returns how many edges
	// were reversed. It is a no-op on acyclic graphs.
	Break(ctx context.Context, g *lgraph.LGraph) (int, error)
}

// New returns the breaker selected by cfg.
func New(cfg *options.Config) (Breaker, error) {
	switch cfg.CycleBreaking {
	case options.CycleBreakingGreedy, "":
		return &Greedy{Partitioned: cfg.Partitioning}, nil
	case options.CycleBreakingDepthFirst:
		return &DepthFirst{Partitioned: cfg.Partitioning}, nil
	case options.CycleBreakingInteractive:
		return &Interactive{Partitioned: cfg.Partitioning}, nil
	}
	return nil, errors.Configuration("unknown cycle breaking strategy %q", cfg.CycleBreaking)
}

// eligible reports whether e takes part in cycle breaking. Self-loops never
// do. When partitioning is active, edges between partitions already point
// from lower to higher partitions and must keep that direction, so cycles can
// only lie within a partition.
func eligible(e *lgraph.LEdge, partitioned bool) bool {
	if e.Removed || e.SelfLoop || e.Source.Node == e.Target.Node {
		return false
	}
	if partitioned && e.Source.Node.Partition != e.Target.Node.Partition {
		return false
	}
	return true
}

// ReversePartitionEdges turns every edge that runs from a higher partition
// to a lower one around. Nodes without a partition are left alone. Returns
// the number of reversed edges.
func ReversePartitionEdges(g *lgraph.LGraph) int {
	n := 0
	for _, e := range g.LiveEdges() {
		src, dst := e.Source.Node.Partition, e.Target.Node.Partition
		if src >= 0 && dst >= 0 && src > dst {
			e.Reverse()
			n++
		}
	}
	return n
}

// ReverseConstraintEdges turns edges around so that nodes pinned to the
// first layer have no incoming edges and nodes pinned to the last layer have
// no outgoing edges. Returns the number of reversed edges.
func ReverseConstraintEdges(g *lgraph.LGraph) int {
	n := 0
	for _, e := range g.LiveEdges() {
		if e.SelfLoop {
			continue
		}
		src, dst := e.Source.Node.LayerConstraint, e.Target.Node.LayerConstraint
		if dst.IsFirst() && !src.IsFirst() || src.IsLast() && !dst.IsLast() {
			e.Reverse()
			n++
		}
	}
	return n
}

// =============================================================================
// Greedy
// =============================================================================

// Greedy is the Eades-Lin-Smyth heuristic. It builds a linear order of the
// nodes, putting sinks to the right and sources to the left, and otherwise
// the node with the largest weighted out-degree minus in-degree next. Ties go
// to the node that comes first in input order. Edges pointing left in the
// final order are reversed.
//
// Edge weights are priority+1, so higher-priority edges are less likely to
// be reversed.
type Greedy struct {
	Partitioned bool
}

func (b *Greedy) Break(ctx context.Context, g *lgraph.LGraph) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	nodes := g.LiveNodes()
	idx := make(map[*lgraph.LNode]int, len(nodes))
	for i, n := range nodes {
		idx[n] = i
	}

	indeg := make([]int, len(nodes))
	outdeg := make([]int, len(nodes))
	mark := make([]int, len(nodes))
	var sources, sinks []int

	for _, e := range g.LiveEdges() {
		if !eligible(e, b.Partitioned) {
			continue
		}
		w := weight(e)
		outdeg[idx[e.Source.Node]] += w
		indeg[idx[e.Target.Node]] += w
	}
	for i := range nodes {
		if outdeg[i] == 0 {
			sinks = append(sinks, i)
		} else if indeg[i] == 0 {
			sources = append(sources, i)
		}
	}

	update := func(i int) {
		for _, e := range nodes[i].Outgoing() {
			if !eligible(e, b.Partitioned) {
				continue
			}
			j := idx[e.Target.Node]
			if mark[j] != 0 {
				continue
			}
			indeg[j] -= weight(e)
			if indeg[j] <= 0 && outdeg[j] > 0 {
				sources = append(sources, j)
			}
		}
		for _, e := range nodes[i].Incoming() {
			if !eligible(e, b.Partitioned) {
				continue
			}
			j := idx[e.Source.Node]
			if mark[j] != 0 {
				continue
			}
			outdeg[j] -= weight(e)
			if outdeg[j] <= 0 && indeg[j] > 0 {
				sinks = append(sinks, j)
			}
		}
	}

	left, right := 1, -1
	remaining := len(nodes)
	for remaining > 0 {
		for len(sinks) > 0 {
			i := sinks[0]
			sinks = sinks[1:]
			if mark[i] != 0 {
				continue
			}
			mark[i] = right
			right--
			update(i)
			remaining--
		}
		for len(sources) > 0 {
			i := sources[0]
			sources = sources[1:]
			if mark[i] != 0 {
				continue
			}
			mark[i] = left
			left++
			update(i)
			remaining--
		}
		if remaining == 0 || len(sinks) > 0 {
			continue
		}

		best, bestFlow := -1, 0
		for i := range nodes {
			if mark[i] != 0 {
				continue
			}
			if flow := outdeg[i] - indeg[i]; best < 0 || flow > bestFlow {
				best, bestFlow = i, flow
			}
		}
		mark[best] = left
		left++
		update(best)
		remaining--
	}

	shift := len(nodes) + 1
	for i := range mark {
		if mark[i] < 0 {
			mark[i] += shift
		}
	}

	reversed := 0
	for _, e := range g.LiveEdges() {
		if !eligible(e, b.Partitioned) {
			continue
		}
		if mark[idx[e.Source.Node]] > mark[idx[e.Target.Node]] {
			e.Reverse()
			reversed++
		}
	}
	return reversed, nil
}

func weight(e *lgraph.LEdge) int {
	return max(e.Priority, 0) + 1
}

// =============================================================================
// Depth First
// =============================================================================

// DepthFirst reverses the back edges of a depth-first search that starts at
// the sources and then at every unvisited node, in node order.
type DepthFirst struct {
	Partitioned bool
}

func (b *DepthFirst) Break(ctx context.Context, g *lgraph.LGraph) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	back := backEdges(g.LiveNodes(), b.Partitioned)
	for _, e := range back {
		e.Reverse()
	}
	return len(back), nil
}

// backEdges runs the DFS over nodes in the given order and returns the edges
// that close a cycle.
func backEdges(order []*lgraph.LNode, partitioned bool) []*lgraph.LEdge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*lgraph.LNode]int, len(order))
	var back []*lgraph.LEdge

	var dfs func(n *lgraph.LNode)
	dfs = func(n *lgraph.LNode) {
		color[n] = gray
		for _, e := range n.Outgoing() {
			if !eligible(e, partitioned) {
				continue
			}
			switch color[e.Target.Node] {
			case white:
				dfs(e.Target.Node)
			case gray:
				back = append(back, e)
			}
		}
		color[n] = black
	}

	for _, n := range order {
		if color[n] == white && !hasEligibleIncoming(n, partitioned) {
			dfs(n)
		}
	}
	for _, n := range order {
		if color[n] == white {
			dfs(n)
		}
	}
	return back
}

func hasEligibleIncoming(n *lgraph.LNode, partitioned bool) bool {
	for _, e := range n.Incoming() {
		if eligible(e, partitioned) {
			return true
		}
	}
	return false
}

// =============================================================================
// Interactive
// =============================================================================

// Interactive breaks cycles the way a previous drawing suggests: the
// depth-first pass starts from nodes in order of their interactive position
// along the layer axis, so the edges it reverses are the ones pointing back
// toward the left. Nodes without a position come after the placed ones in
// input order. Acyclic graphs are left alone even when the drawing disagrees
// with their edge directions.
type Interactive struct {
	Partitioned bool
}

func (b *Interactive) Break(ctx context.Context, g *lgraph.LGraph) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	order := g.LiveNodes()
	slices.SortStableFunc(order, func(a, b *lgraph.LNode) int {
		pa, pb := a.Interactive, b.Interactive
		switch {
		case pa == nil && pb == nil:
			return 0
		case pa == nil:
			return 1
		case pb == nil:
			return -1
		}
		return cmp.Compare(pa.X, pb.X)
	})
	back := backEdges(order, b.Partitioned)
	for _, e := range back {
		e.Reverse()
	}
	return len(back), nil
}
