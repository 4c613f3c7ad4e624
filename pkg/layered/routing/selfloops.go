package routing

import (
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// clockwise lists the sides in clockwise order, starting at north.
var clockwise = [4]lgraph.PortSide{lgraph.North, lgraph.East, lgraph.South, lgraph.West}

func sideIndex(s lgraph.PortSide) int {
	for i, c := range clockwise {
		if c == s {
			return i
		}
	}
	return 1
}

// loopSides returns the sides a self-loop from side s to side t passes,
// both included. Loops take the shorter way around the node; between
// opposite sides they prefer the way over the north side, then the east.
func loopSides(s, t lgraph.PortSide) []lgraph.PortSide {
	i, j := sideIndex(s), sideIndex(t)
	cw := []lgraph.PortSide{clockwise[i]}
	for k := i; k != j; {
		k = (k + 1) % 4
		cw = append(cw, clockwise[k])
	}
	ccw := []lgraph.PortSide{clockwise[i]}
	for k := i; k != j; {
		k = (k + 3) % 4
		ccw = append(ccw, clockwise[k])
	}
	switch {
	case len(cw) < len(ccw):
		return cw
	case len(ccw) < len(cw):
		return ccw
	case len(cw) == 3 && (ccw[1] == lgraph.North || ccw[1] == lgraph.East):
		return ccw
	}
	return cw
}

// ReserveSelfLoops widens the margins of nodes with self-loops routed
// OUTSIDE so placement leaves room for the loops on every side they pass.
func ReserveSelfLoops(g *lgraph.LGraph, placement options.SelfLoopPlacement, spacing float64) int {
	if placement == options.SelfLoopInside {
		return 0
	}
	reserved := 0
	for _, e := range g.LiveEdges() {
		if !e.SelfLoop {
			continue
		}
		n := e.Source.Node
		for _, s := range loopSides(e.Source.Side, e.Target.Side) {
			switch s {
			case lgraph.North:
				n.Margin.Top = max(n.Margin.Top, spacing)
			case lgraph.East:
				n.Margin.Right = max(n.Margin.Right, spacing)
			case lgraph.South:
				n.Margin.Bottom = max(n.Margin.Bottom, spacing)
			case lgraph.West:
				n.Margin.Left = max(n.Margin.Left, spacing)
			}
		}
		reserved++
	}
	return reserved
}

// RouteSelfLoops draws every self-loop as a rectangular path. OUTSIDE
// loops run spacing away from the node border, INSIDE loops the same
// distance within it (shrunk for small nodes). Center labels sit on the
// middle bend point.
func RouteSelfLoops(g *lgraph.LGraph, placement options.SelfLoopPlacement, spacing float64) int {
	routed := 0
	for _, e := range g.LiveEdges() {
		if !e.SelfLoop {
			continue
		}
		n := e.Source.Node
		d := spacing
		if placement == options.SelfLoopInside {
			d = -min(spacing, n.Size.X/4, n.Size.Y/4)
		}
		lo := lgraph.Vector{X: n.Pos.X - d, Y: n.Pos.Y - d}
		hi := lgraph.Vector{X: n.Pos.X + n.Size.X + d, Y: n.Pos.Y + n.Size.Y + d}

		sides := loopSides(e.Source.Side, e.Target.Side)
		pts := []lgraph.Vector{project(e.Source, lo, hi)}
		for i := 0; i+1 < len(sides); i++ {
			pts = appendPoint(pts, corner(sides[i], sides[i+1], lo, hi))
		}
		pts = appendPoint(pts, project(e.Target, lo, hi))
		e.BendPoints = pts
		mid := pts[len(pts)/2]
		for _, l := range e.Labels {
			if l.Placement == options.LabelCenter || l.Placement == "" {
				l.Pos = lgraph.Vector{X: mid.X, Y: mid.Y - l.Size.Y}
				mid.Y -= l.Size.Y
			}
		}
		routed++
	}
	return routed
}

// project moves the anchor of p onto the loop rectangle lo..hi, straight
// away from (or into) the node.
func project(p *lgraph.LPort, lo, hi lgraph.Vector) lgraph.Vector {
	a := p.Anchor()
	switch p.Side {
	case lgraph.North:
		return lgraph.Vector{X: a.X, Y: lo.Y}
	case lgraph.South:
		return lgraph.Vector{X: a.X, Y: hi.Y}
	case lgraph.West:
		return lgraph.Vector{X: lo.X, Y: a.Y}
	}
	return lgraph.Vector{X: hi.X, Y: a.Y}
}

// corner returns the corner of the loop rectangle between sides a and b.
func corner(a, b lgraph.PortSide, lo, hi lgraph.Vector) lgraph.Vector {
	var v lgraph.Vector
	if a == lgraph.West || b == lgraph.West {
		v.X = lo.X
	} else {
		v.X = hi.X
	}
	if a == lgraph.North || b == lgraph.North {
		v.Y = lo.Y
	} else {
		v.Y = hi.Y
	}
	return v
}
