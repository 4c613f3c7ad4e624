package lgraph

import (
	"cmp"
	"slices"
)

// Counter counts edge crossings between adjacent layers. It keeps reusable
// buffers indexed by port ID, so create one per graph and reuse it across
// the many candidate orderings evaluated during crossing minimization.
//
// A Counter is not safe for concurrent use.
type Counter struct {
	pos        []int // integer position of each port along its layer
	fenwick    []int
	hyperedges bool
}

// NewCounter creates a counter for g. With hyperedges set, edges sharing a
// port are counted as one hyperedge (see [Counter.Between]).
func NewCounter(g *LGraph, hyperedges bool) *Counter {
	return &Counter{pos: make([]int, len(g.Ports)), hyperedges: hyperedges}
}

func (c *Counter) grow(p *LPort) {
	if p.ID >= len(c.pos) {
		c.pos = append(c.pos, make([]int, p.ID-len(c.pos)+1)...)
	}
}

// Total sums the crossings between every pair of consecutive layers.
func (c *Counter) Total(order [][]*LNode) int {
	total := 0
	for i := 0; i+1 < len(order); i++ {
		total += c.Between(order[i], order[i+1])
	}
	return total
}

// Between counts the crossings of edges running from the left layer to the
// right layer.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which is the number of inversions in the sequence of target positions
// when edges are sorted by source position, counted with a Fenwick tree in
// O(E log V). Edges sharing an endpoint never cross.
//
// In hyperedge mode, edges connected through shared ports form one
// hyperedge and crossings are approximated from each hyperedge's bounding
// corners, so a hyperedge fanning out to many ports is not penalised once
// per branch.
func (c *Counter) Between(left, right []*LNode) int {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	leftCount := c.AssignPositions(left, true)
	rightCount := c.AssignPositions(right, false)
	edges := crossingEdges(left, right[0].Layer)
	if len(edges) < 2 {
		return 0
	}
	if c.hyperedges {
		return c.hyperedgeCrossings(edges, leftCount, rightCount)
	}

	type pair struct{ upper, lower int }
	pairs := make([]pair, len(edges))
	for i, e := range edges {
		pairs[i] = pair{c.pos[e.Source.ID], c.pos[e.Target.ID]}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	lower := make([]int, len(pairs))
	for i, p := range pairs {
		lower[i] = p.lower
	}
	return c.inversions(lower, rightCount)
}

// inversions counts pairs i<j with seq[i] > seq[j]. Values lie in [0, n).
func (c *Counter) inversions(seq []int, n int) int {
	if cap(c.fenwick) < n+1 {
		c.fenwick = make([]int, n+1)
	}
	ft := c.fenwick[:n+1]
	clear(ft)

	crossings, total := 0, 0
	for _, v := range seq {
		lessOrEqual := 0
		for q := v + 1; q > 0; q -= q & (-q) {
			lessOrEqual += ft[q]
		}
		crossings += total - lessOrEqual
		total++
		for q := v + 1; q <= n; q += q & (-q) {
			ft[q]++
		}
	}
	return crossings
}

// crossingEdges returns the edges leaving left and ending in layer right.
func crossingEdges(left []*LNode, right *Layer) []*LEdge {
	var out []*LEdge
	for _, n := range left {
		for _, p := range n.Ports {
			for _, e := range p.Outgoing {
				if e.Target.Node.Layer == right && !e.SelfLoop {
					out = append(out, e)
				}
			}
		}
	}
	return out
}

// AssignPositions numbers the ports of nodes that have edges toward the
// neighbouring layer and returns the number of positions used. Ports of
// order-fixed nodes get one position each, in the order the edges leave the
// node; ports of other nodes share their node's position since their order
// is still free.
//
// outgoing selects the left layer of a pair (ports with outgoing edges);
// otherwise the right layer (ports with incoming edges) is numbered.
func (c *Counter) AssignPositions(nodes []*LNode, outgoing bool) int {
	next := 0
	for _, n := range nodes {
		ports := facingPorts(n, outgoing)
		if len(ports) == 0 {
			continue
		}
		for _, p := range ports {
			c.grow(p)
		}
		if !n.PortConstraints.OrderFixed() {
			for _, p := range ports {
				c.pos[p.ID] = next
			}
			next++
			continue
		}
		for _, p := range ports {
			c.pos[p.ID] = next
			next++
		}
	}
	return next
}

// Position returns the position last assigned to p.
func (c *Counter) Position(p *LPort) int {
	if p.ID >= len(c.pos) {
		return 0
	}
	return c.pos[p.ID]
}

// facingPorts returns n's ports with edges toward the other layer, in the
// order they are met walking down the facing side.
func facingPorts(n *LNode, outgoing bool) []*LPort {
	var out []*LPort
	for _, p := range n.Ports {
		if outgoing && hasCrossLayer(p.Outgoing, n, true) || !outgoing && hasCrossLayer(p.Incoming, n, false) {
			out = append(out, p)
		}
	}
	SortFacing(out, outgoing)
	return out
}

func hasCrossLayer(edges []*LEdge, n *LNode, outgoing bool) bool {
	for _, e := range edges {
		other := e.Source.Node
		if outgoing {
			other = e.Target.Node
		}
		if other.Layer != n.Layer && !e.SelfLoop {
			return true
		}
	}
	return false
}

// FacingKey orders ports as seen from the neighbouring layer. Seen from the
// right, a node's ports run clockwise starting at its north side; seen from
// the left they run counter-clockwise.
func FacingKey(p *LPort, outgoing bool) int {
	const span = 1 << 20
	if outgoing {
		switch p.Side {
		case North:
			return 0*span + p.Index
		case East:
			return 1*span + p.Index
		case South:
			return 3*span - p.Index
		case West:
			return 4*span - p.Index
		}
		return 4 * span
	}
	switch p.Side {
	case North:
		return 1*span - p.Index
	case West:
		return 1*span + p.Index
	case South:
		return 2*span + p.Index
	case East:
		return 4*span - p.Index
	}
	return 4 * span
}

// SortFacing sorts ports by [FacingKey].
func SortFacing(ports []*LPort, outgoing bool) {
	slices.SortStableFunc(ports, func(a, b *LPort) int {
		return cmp.Compare(FacingKey(a, outgoing), FacingKey(b, outgoing))
	})
}

// PortRanks fills rank[p.ID] for the ports of nodes facing the neighbouring
// layer. Node i's ports lie in [i, i+1): ports of order-fixed nodes are
// spread evenly in facing order, all others sit at i+0.5. rank must be
// indexed by port ID.
func PortRanks(nodes []*LNode, outgoing bool, rank []float64) {
	for i, n := range nodes {
		ports := facingPorts(n, outgoing)
		if !n.PortConstraints.OrderFixed() {
			for _, p := range n.Ports {
				rank[p.ID] = float64(i) + 0.5
			}
			continue
		}
		m := float64(len(ports) + 1)
		for k, p := range ports {
			rank[p.ID] = float64(i) + float64(k+1)/m
		}
	}
}

// PairCrossings counts the crossings between edges of u and v toward one
// neighbouring layer when u lies directly above v. Positions of the far
// ports must have been assigned with [Counter.AssignPositions]; toWest
// selects incoming edges (neighbours on the left), otherwise outgoing.
func (c *Counter) PairCrossings(u, v *LNode, toWest bool) int {
	far := func(n *LNode) []int {
		var out []int
		for _, p := range n.Ports {
			edges := p.Outgoing
			if toWest {
				edges = p.Incoming
			}
			for _, e := range edges {
				o := e.Target
				if toWest {
					o = e.Source
				}
				if o.Node.Layer == n.Layer || e.SelfLoop {
					continue
				}
				out = append(out, c.Position(o))
			}
		}
		return out
	}
	upper, lower := far(u), far(v)
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	slices.Sort(lower)
	crossings := 0
	for _, a := range upper {
		// lower edges ending strictly above a cross it
		idx, _ := slices.BinarySearch(lower, a)
		crossings += idx
	}
	return crossings
}
