package routing

import (
	"math"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

const eps = 1e-6

func near(a, b lgraph.Vector) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// Points returns the full polyline of e: source anchor, bend points, target
// anchor.
func Points(e *lgraph.LEdge) []lgraph.Vector {
	pts := make([]lgraph.Vector, 0, len(e.BendPoints)+2)
	pts = append(pts, e.Source.Anchor())
	pts = append(pts, e.BendPoints...)
	return append(pts, e.Target.Anchor())
}

// =============================================================================
// Simplification
// =============================================================================

// Simplify drops bend points that coincide with their predecessor or lie on
// the straight line between their neighbours. Self-loops are left alone.
func Simplify(g *lgraph.LGraph) {
	for _, e := range g.LiveEdges() {
		if e.SelfLoop || len(e.BendPoints) == 0 {
			continue
		}
		pts := Points(e)
		out := pts[:1]
		for i := 1; i < len(pts)-1; i++ {
			prev, cur, next := out[len(out)-1], pts[i], pts[i+1]
			if near(prev, cur) || collinear(prev, cur, next) {
				continue
			}
			out = append(out, cur)
		}
		bends := slices.Clone(out[1:])
		if k := len(bends); k > 0 && near(bends[k-1], pts[len(pts)-1]) {
			bends = bends[:k-1]
		}
		e.BendPoints = bends
	}
}

// collinear reports whether b lies on the segment from a to c.
func collinear(a, b, c lgraph.Vector) bool {
	ab, bc := b.Sub(a), c.Sub(b)
	cross := ab.X*bc.Y - ab.Y*bc.X
	scale := max(1, math.Hypot(ab.X, ab.Y)*math.Hypot(bc.X, bc.Y))
	return math.Abs(cross)/scale < eps && ab.X*bc.X+ab.Y*bc.Y >= 0
}

// =============================================================================
// Labels
// =============================================================================

// PlaceEndLabels puts HEAD labels next to the target anchor of their edge
// and TAIL labels next to the source anchor, outside the port's side and
// stacked away from the edge.
func PlaceEndLabels(g *lgraph.LGraph, spacing float64) {
	for _, e := range g.LiveEdges() {
		var head, tail float64
		for _, l := range e.Labels {
			switch l.Placement {
			case options.LabelHead:
				l.Pos = endLabel(e.Target, l, spacing, head)
				head += l.Size.Y + spacing
			case options.LabelTail:
				l.Pos = endLabel(e.Source, l, spacing, tail)
				tail += l.Size.Y + spacing
			}
		}
	}
}

func endLabel(p *lgraph.LPort, l *lgraph.LLabel, spacing, stacked float64) lgraph.Vector {
	a := p.Anchor()
	pos := lgraph.Vector{X: a.X + spacing, Y: a.Y - spacing - l.Size.Y - stacked}
	switch p.Side {
	case lgraph.West:
		pos.X = a.X - spacing - l.Size.X
	case lgraph.South:
		pos.Y = a.Y + spacing + stacked
	}
	return pos
}

// =============================================================================
// Junction Points
// =============================================================================

// Junctions records, for edges that share a port, the point where their
// polylines part. An edge gets a junction point when it runs along another
// edge of the same port for at least one bend point.
func Junctions(g *lgraph.LGraph) {
	for _, p := range g.Ports {
		if p.Removed || p.Degree() < 2 {
			continue
		}
		var edges []*lgraph.LEdge
		var lines [][]lgraph.Vector
		for _, e := range p.Outgoing {
			if !e.SelfLoop {
				edges = append(edges, e)
				lines = append(lines, Points(e))
			}
		}
		for _, e := range p.Incoming {
			if !e.SelfLoop {
				pts := Points(e)
				slices.Reverse(pts)
				edges = append(edges, e)
				lines = append(lines, pts)
			}
		}
		for i, e := range edges {
			shared := 0
			for j := range edges {
				if i != j {
					shared = max(shared, commonPrefix(lines[i], lines[j]))
				}
			}
			// The anchor itself is always shared; the last point is an anchor
			// of another node.
			if shared < 2 || shared >= len(lines[i]) {
				continue
			}
			addJunction(e, lines[i][shared-1])
		}
	}
}

func commonPrefix(a, b []lgraph.Vector) int {
	k := 0
	for k < len(a) && k < len(b) && near(a[k], b[k]) {
		k++
	}
	return k
}

func addJunction(e *lgraph.LEdge, v lgraph.Vector) {
	for _, j := range e.JunctionPoints {
		if near(j, v) {
			return
		}
	}
	e.JunctionPoints = append(e.JunctionPoints, v)
}

// =============================================================================
// Bounds
// =============================================================================

// Bounds moves the drawing so that its bounding box (nodes with margins,
// ports, bend points, and labels) starts at (padding, padding) and sets
// g.Size to the box plus padding on all sides. External port dummies are
// then moved onto the border of the drawing on their side.
func Bounds(g *lgraph.LGraph, padding float64) {
	lo := lgraph.Vector{X: math.Inf(1), Y: math.Inf(1)}
	hi := lgraph.Vector{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(a, b lgraph.Vector) {
		lo.X, lo.Y = min(lo.X, a.X), min(lo.Y, a.Y)
		hi.X, hi.Y = max(hi.X, b.X), max(hi.Y, b.Y)
	}
	for _, n := range g.LiveNodes() {
		if n.Kind == lgraph.ExternalPort {
			continue
		}
		grow(lgraph.Vector{X: n.Pos.X - n.Margin.Left, Y: n.Pos.Y - n.Margin.Top},
			lgraph.Vector{X: n.Pos.X + n.Size.X + n.Margin.Right, Y: n.Pos.Y + n.Size.Y + n.Margin.Bottom})
		for _, p := range n.Ports {
			a := n.Pos.Add(p.Pos)
			grow(a, a.Add(p.Size))
		}
	}
	for _, e := range g.LiveEdges() {
		for _, b := range e.BendPoints {
			grow(b, b)
		}
		for _, l := range e.Labels {
			grow(l.Pos, l.Pos.Add(l.Size))
		}
	}
	if math.IsInf(lo.X, 1) {
		lo, hi = lgraph.Vector{}, lgraph.Vector{}
	}

	shift := lgraph.Vector{X: padding - lo.X, Y: padding - lo.Y}
	Translate(g, shift)
	g.Offset = g.Offset.Add(shift)
	g.Size = lgraph.Vector{X: hi.X - lo.X + 2*padding, Y: hi.Y - lo.Y + 2*padding}

	for _, n := range g.NodesOf(lgraph.ExternalPort) {
		switch n.ExternalSide {
		case lgraph.West:
			n.Pos.X = -n.Size.X
		case lgraph.East:
			n.Pos.X = g.Size.X
		case lgraph.North:
			n.Pos.Y = -n.Size.Y
		case lgraph.South:
			n.Pos.Y = g.Size.Y
		}
	}
}

// Translate moves every node, bend point, junction point, and edge label by
// d.
func Translate(g *lgraph.LGraph, d lgraph.Vector) {
	for _, n := range g.LiveNodes() {
		n.Pos = n.Pos.Add(d)
	}
	for _, e := range g.LiveEdges() {
		for i := range e.BendPoints {
			e.BendPoints[i] = e.BendPoints[i].Add(d)
		}
		for i := range e.JunctionPoints {
			e.JunctionPoints[i] = e.JunctionPoints[i].Add(d)
		}
		for _, l := range e.Labels {
			l.Pos = l.Pos.Add(d)
		}
	}
	for _, l := range g.Layers {
		l.X += d.X
	}
}
