package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// InsertNorthSouthDummies gives every connected port on the north or south
// side of a side-fixed node a NORTH_SOUTH_PORT dummy in the node's layer.
// North dummies are placed directly above the node, south dummies directly
// below; the edges of the port are moved to the dummy (incoming edges to a
// WEST port, outgoing edges to an EAST port) so crossing minimization and
// placement treat them like any other in-layer node. The node and its
// dummies form a layout unit that stays together during ordering.
//
// Dummies are stacked so that their edges do not cross each other: ports
// with only incoming edges lie outermost, the farther east the farther out;
// the remaining ports follow with the farther west the farther out.
//
// Returns the number of dummies inserted.
func InsertNorthSouthDummies(g *lgraph.LGraph) int {
	inserted := 0
	for _, n := range g.LiveNodes() {
		if n.Kind != lgraph.Normal || n.Layer == nil || !n.PortConstraints.SideFixed() {
			continue
		}
		north := nsPorts(n, lgraph.North)
		south := nsPorts(n, lgraph.South)
		if len(north) == 0 && len(south) == 0 {
			continue
		}

		// Outermost first; south dummies are inserted innermost first.
		var above, below []*lgraph.LNode
		for _, p := range north {
			above = append(above, newNSDummy(g, n, p))
		}
		for _, p := range south {
			below = append(below, newNSDummy(g, n, p))
		}
		slices.Reverse(below)

		layer := n.Layer
		at := n.Index
		for i, d := range above {
			layer.Insert(d, at+i)
		}
		at = n.Index + 1
		for i, d := range below {
			layer.Insert(d, at+i)
		}
		inserted += len(above) + len(below)
	}
	return inserted
}

// nsPorts returns n's ports on side s that carry cross-layer edges, sorted
// outermost first.
func nsPorts(n *lgraph.LNode, s lgraph.PortSide) []*lgraph.LPort {
	var ports []*lgraph.LPort
	for _, p := range n.PortsOn(s) {
		if hasLayeredEdge(p) {
			ports = append(ports, p)
		}
	}
	inOnly := func(p *lgraph.LPort) bool { return len(p.Outgoing) == 0 }
	slices.SortStableFunc(ports, func(a, b *lgraph.LPort) int {
		ia, ib := inOnly(a), inOnly(b)
		switch {
		case ia && !ib:
			return -1
		case !ia && ib:
			return 1
		case ia:
			return cmp.Compare(b.Index, a.Index)
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ports
}

func hasLayeredEdge(p *lgraph.LPort) bool {
	for _, e := range p.Incoming {
		if !e.SelfLoop {
			return true
		}
	}
	for _, e := range p.Outgoing {
		if !e.SelfLoop {
			return true
		}
	}
	return false
}

func newNSDummy(g *lgraph.LGraph, owner *lgraph.LNode, p *lgraph.LPort) *lgraph.LNode {
	d := g.AddNode(lgraph.NorthSouthPort, "")
	d.Owner = owner
	d.InLayer = owner.InLayer
	d.Partition = owner.Partition
	p.Dummy = d

	var in, out *lgraph.LPort
	for _, e := range slices.Clone(p.Incoming) {
		if e.SelfLoop {
			continue
		}
		if in == nil {
			in = g.AddPort(d, lgraph.West)
		}
		e.SetTarget(in)
	}
	for _, e := range slices.Clone(p.Outgoing) {
		if e.SelfLoop {
			continue
		}
		if out == nil {
			out = g.AddPort(d, lgraph.East)
		}
		e.SetSource(out)
	}
	return d
}

// NorthSouthPort returns the port of owner that dummy d stands in for.
func NorthSouthPort(d *lgraph.LNode) *lgraph.LPort {
	if d.Owner == nil {
		return nil
	}
	for _, p := range d.Owner.Ports {
		if p.Dummy == d {
			return p
		}
	}
	return nil
}
