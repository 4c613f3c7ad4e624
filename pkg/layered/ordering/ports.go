package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// AssignPortSides puts the ports whose side is still free on the WEST or
// EAST side: a port with more incoming than outgoing edges faces the
// previous layer, every other port faces the next one. Ports of FREE nodes
// are always reassigned; ports of side-fixed nodes only when their side is
// undefined.
func AssignPortSides(g *lgraph.LGraph) {
	for _, n := range g.LiveNodes() {
		if n.Kind != lgraph.Normal {
			continue
		}
		changed := false
		for _, p := range n.Ports {
			if n.PortConstraints.SideFixed() && p.Side != lgraph.SideUndefined {
				continue
			}
			side := lgraph.East
			if len(p.Incoming) > len(p.Outgoing) {
				side = lgraph.West
			}
			if p.Side != side {
				p.Side = side
				changed = true
			}
		}
		if changed {
			for _, s := range []lgraph.PortSide{lgraph.West, lgraph.East} {
				lgraph.ReindexSide(n, s)
			}
		}
	}
}

// DistributePorts orders the ports on the WEST and EAST sides of nodes
// whose port order is free by the position of the nodes at their other
// ends, so edges leave each node without crossing. Ports without
// cross-layer edges keep their relative place at the end. It must run after
// crossing minimization, once layer orders are final.
func DistributePorts(g *lgraph.LGraph) {
	for _, l := range g.Layers {
		for _, n := range l.Nodes {
			if n.PortConstraints.OrderFixed() {
				continue
			}
			for _, side := range []lgraph.PortSide{lgraph.West, lgraph.East} {
				sortSide(n, side)
			}
			lgraph.SortPorts(n)
		}
	}
}

func sortSide(n *lgraph.LNode, side lgraph.PortSide) {
	ports := n.PortsOn(side)
	if len(ports) < 2 {
		return
	}
	key := func(p *lgraph.LPort) float64 {
		sum, count := 0.0, 0
		for _, e := range p.Incoming {
			if o := e.Source.Node; o.Layer != n.Layer && !e.SelfLoop {
				sum += float64(o.Index)
				count++
			}
		}
		for _, e := range p.Outgoing {
			if o := e.Target.Node; o.Layer != n.Layer && !e.SelfLoop {
				sum += float64(o.Index)
				count++
			}
		}
		if count == 0 {
			return float64(1 << 30)
		}
		return sum / float64(count)
	}
	slices.SortStableFunc(ports, func(a, b *lgraph.LPort) int {
		if c := cmp.Compare(key(a), key(b)); c != 0 {
			return c
		}
		return a.Index - b.Index
	})
	for i, p := range ports {
		p.Index = i
	}
}

// PlacePorts computes port positions relative to their node. Ports of
// FIXED_POS nodes keep the position they were given. Other ports are spread
// evenly along their side in index order: EAST ports at x = width, WEST
// ports at x = 0, NORTH ports at y = 0 and SOUTH ports at y = height.
// LABEL dummies carry their edge along the bottom so the labels sit above
// it.
func PlacePorts(g *lgraph.LGraph) {
	for _, n := range g.LiveNodes() {
		if n.PortConstraints == options.PortsFixedPos && n.Kind == lgraph.Normal {
			continue
		}
		for _, side := range []lgraph.PortSide{lgraph.North, lgraph.East, lgraph.South, lgraph.West} {
			ports := n.PortsOn(side)
			slices.SortStableFunc(ports, func(a, b *lgraph.LPort) int { return a.Index - b.Index })
			k := float64(len(ports) + 1)
			for i, p := range ports {
				f := float64(i+1) / k
				switch side {
				case lgraph.West:
					p.Pos = lgraph.Vector{X: 0, Y: n.Size.Y * f}
				case lgraph.East:
					p.Pos = lgraph.Vector{X: n.Size.X, Y: n.Size.Y * f}
				case lgraph.North:
					p.Pos = lgraph.Vector{X: n.Size.X * f, Y: 0}
				case lgraph.South:
					p.Pos = lgraph.Vector{X: n.Size.X * f, Y: n.Size.Y}
				}
				if n.Kind == lgraph.Label {
					p.Pos.Y = n.Size.Y
				}
			}
		}
	}
}
