package placement

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

const (
	// thresholdFactor divided by thoroughness is the total movement below
	// which pendulum balancing stops early.
	thresholdFactor = 20.0
	// pendulumIterations damped balancing rounds, followed by
	// rubberIterations undamped ones.
	pendulumIterations = 4
	rubberIterations   = 3
)

// linearSegments places nodes after Sander's linear segments method. Chains
// of edge dummies (and the chunks of a split wide node) form segments that
// always stay straight. Segments are stacked in dependency order, then a
// pendulum balancing pulls every segment toward the mean position of its
// neighbours, damped by the deflection dampening factor.
type linearSegments struct {
	dampening    float64
	thoroughness int
}

type lsState struct {
	sp       spacer
	segOf    map[*lgraph.LNode]int
	segments [][]*lgraph.LNode
	order    []int     // topological order of segments
	pos      []float64 // per segment: y of the segment line
	preds    [][]lsArc
	succs    [][]lsArc
}

type lsArc struct {
	seg int
	w   float64
}

// anchor is the offset of the line a node's segment runs along, relative to
// the node's top.
func anchor(n *lgraph.LNode) float64 {
	if edgeLike(n) {
		for _, p := range n.Ports {
			return p.Pos.Y + p.Size.Y/2
		}
	}
	return 0
}

func (ls *linearSegments) place(ctx context.Context, g *lgraph.LGraph, sp spacer) error {
	st := &lsState{sp: sp, segOf: map[*lgraph.LNode]int{}}
	st.buildSegments(g)
	// A failed sort splits the offending segments into single nodes, which
	// cannot form cycles, so the second attempt always succeeds.
	if !st.sortSegments(g) {
		st.sortSegments(g)
	}

	// Unbalanced placement: every segment as high as its predecessors allow.
	st.pos = make([]float64, len(st.segments))
	for _, s := range st.order {
		y := 0.0
		for i, a := range st.preds[s] {
			if i == 0 || st.pos[a.seg]+a.w > y {
				y = st.pos[a.seg] + a.w
			}
		}
		st.pos[s] = y
	}
	st.apply()

	threshold := thresholdFactor / float64(ls.thoroughness)
	for it := 0; it < pendulumIterations+rubberIterations; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		damp := ls.dampening
		if it >= pendulumIterations {
			damp = 1
		}
		moved := st.balance(damp)
		if moved == 0 {
			break
		}
		if it < pendulumIterations && moved < threshold {
			it = pendulumIterations - 1
		}
	}
	return nil
}

// buildSegments groups nodes into segments: a chain dummy joins the segment
// of its single predecessor when that is a dummy of the same chain; a
// wide-node chunk joins the segment of the chunk before it.
func (st *lsState) buildSegments(g *lgraph.LGraph) {
	for _, l := range g.Layers {
		for _, n := range l.Nodes {
			if prev := chainPredecessor(n); prev != nil {
				if s, ok := st.segOf[prev]; ok {
					st.segOf[n] = s
					st.segments[s] = append(st.segments[s], n)
					continue
				}
			}
			st.segOf[n] = len(st.segments)
			st.segments = append(st.segments, []*lgraph.LNode{n})
		}
	}
}

func chainPredecessor(n *lgraph.LNode) *lgraph.LNode {
	in := n.Incoming()
	if len(in) != 1 {
		return nil
	}
	e := in[0]
	p := e.Source.Node
	switch {
	case n.Kind == lgraph.BigNode && e.Virtual:
		return p
	case n.Kind.IsChainMember() && p.Kind.IsChainMember() && n.OriginEdge == p.OriginEdge:
		return p
	}
	return nil
}

// sortSegments builds the segment dependency graph from the layer orders
// and sorts it topologically. If two segments cross, the graph is cyclic;
// then the segments left unsorted are split into single nodes and false is
// returned.
func (st *lsState) sortSegments(g *lgraph.LGraph) bool {
	k := len(st.segments)
	weights := map[[2]int]float64{}
	for _, l := range g.Layers {
		for j := 1; j < len(l.Nodes); j++ {
			u, v := l.Nodes[j-1], l.Nodes[j]
			su, sv := st.segOf[u], st.segOf[v]
			w := st.sp.minGap(u, v) + anchor(v) - anchor(u)
			key := [2]int{su, sv}
			if old, ok := weights[key]; !ok || w > old {
				weights[key] = w
			}
		}
	}
	st.preds = make([][]lsArc, k)
	st.succs = make([][]lsArc, k)
	keys := make([][2]int, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	indeg := make([]int, k)
	for _, key := range keys {
		w := weights[key]
		st.succs[key[0]] = append(st.succs[key[0]], lsArc{key[1], w})
		st.preds[key[1]] = append(st.preds[key[1]], lsArc{key[0], w})
		indeg[key[1]]++
	}

	st.order = st.order[:0]
	for s := range k {
		if indeg[s] == 0 {
			st.order = append(st.order, s)
		}
	}
	for i := 0; i < len(st.order); i++ {
		for _, a := range st.succs[st.order[i]] {
			if indeg[a.seg]--; indeg[a.seg] == 0 {
				st.order = append(st.order, a.seg)
			}
		}
	}
	if len(st.order) == k {
		return true
	}

	sorted := make([]bool, k)
	for _, s := range st.order {
		sorted[s] = true
	}
	var kept [][]*lgraph.LNode
	for s, nodes := range st.segments {
		if sorted[s] || len(nodes) == 1 {
			kept = append(kept, nodes)
			continue
		}
		for _, n := range nodes {
			kept = append(kept, []*lgraph.LNode{n})
		}
	}
	st.segments = kept
	for s, nodes := range kept {
		for _, n := range nodes {
			st.segOf[n] = s
		}
	}
	return false
}

// apply writes segment positions to the nodes.
func (st *lsState) apply() {
	for s, nodes := range st.segments {
		for _, n := range nodes {
			n.Pos.Y = st.pos[s] - anchor(n)
		}
	}
}

// balance moves every segment by damp times its deflection, the mean
// distance to the ports at the other ends of its edges, as far as its
// neighbours in the layers allow. Returns the total movement.
func (st *lsState) balance(damp float64) float64 {
	deflection := make([]float64, len(st.segments))
	for s, nodes := range st.segments {
		sum, count := 0.0, 0
		for _, n := range nodes {
			for _, p := range n.Ports {
				own := n.Pos.Y + p.Pos.Y + p.Size.Y/2
				for _, e := range append(slices.Clone(p.Incoming), p.Outgoing...) {
					if e.SelfLoop {
						continue
					}
					o := e.Target
					if o == p {
						o = e.Source
					}
					if st.segOf[o.Node] == s {
						continue
					}
					sum += o.Node.Pos.Y + o.Pos.Y + o.Size.Y/2 - own
					count++
				}
			}
		}
		if count > 0 {
			deflection[s] = sum / float64(count)
		}
	}

	moved := 0.0
	for _, s := range st.order {
		d := damp * deflection[s]
		if d == 0 {
			continue
		}
		lo, hi := math.Inf(-1), math.Inf(1)
		for _, a := range st.preds[s] {
			lo = max(lo, st.pos[a.seg]+a.w)
		}
		for _, a := range st.succs[s] {
			hi = min(hi, st.pos[a.seg]-a.w)
		}
		if lo > hi {
			continue
		}
		next := min(max(st.pos[s]+d, lo), hi)
		moved += math.Abs(next - st.pos[s])
		st.pos[s] = next
		for _, n := range st.segments[s] {
			n.Pos.Y = next - anchor(n)
		}
	}
	return moved
}
