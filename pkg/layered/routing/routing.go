package routing

import (
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Router turns a placed layout graph into final edge geometry.
type Router struct {
	selfLoops options.SelfLoopPlacement
	spacing   options.Spacing
	padding   float64
}

// New returns the router configured by cfg.
func New(cfg *options.Config) *Router {
	return &Router{selfLoops: cfg.SelfLoopPlacement, spacing: cfg.Spacing, padding: cfg.Padding}
}

// Route computes bend points, junction points, and label positions for
// every edge and removes all remaining dummies, leaving one edge per input
// edge in its original direction. It finally moves the drawing so that it
// starts at the padding and records the graph size.
//
// A dummy chain that is broken is an INTERNAL_CONSISTENCY error; the graph
// must then be discarded.
func (r *Router) Route(g *lgraph.LGraph) error {
	if err := JoinLongEdges(g, r.spacing.LabelNode); err != nil {
		return err
	}
	if err := RemoveNorthSouthDummies(g); err != nil {
		return err
	}
	RestoreReversed(g)
	RouteSelfLoops(g, r.selfLoops, r.spacing.SelfLoop)
	Simplify(g)
	PlaceEndLabels(g, r.spacing.LabelNode)
	Junctions(g)
	Bounds(g, r.padding)
	return nil
}

// =============================================================================
// Long Edges
// =============================================================================

// JoinLongEdges replaces every chain of LONG_EDGE and LABEL dummies by the
// chain's first edge, now ending at the chain's real target. The dummies'
// port anchors become bend points; LABEL dummies hand their position to the
// center labels of the edge, stacked labelSpacing apart.
func JoinLongEdges(g *lgraph.LGraph, labelSpacing float64) error {
	for _, e := range g.LiveEdges() {
		// Chain segments behind an earlier head are removed as we go.
		if e.Removed || e.Source.Node.Kind.IsChainMember() || !e.Target.Node.Kind.IsChainMember() {
			continue
		}
		var dummies []*lgraph.LNode
		var bends []lgraph.Vector
		cur := e
		for cur.Target.Node.Kind.IsChainMember() {
			d := cur.Target.Node
			out := d.Outgoing()
			if len(out) != 1 || len(d.Incoming()) != 1 {
				return errors.Inconsistent("dummy %s of edge %s has %d predecessors and %d successors",
					d, e, len(d.Incoming()), len(out))
			}
			bends = appendPoint(bends, cur.Target.Anchor())
			bends = appendPoint(bends, out[0].Source.Anchor())
			if d.Kind == lgraph.Label {
				placeCenterLabels(d, d.OriginEdge, labelSpacing)
			}
			dummies = append(dummies, d)
			cur = out[0]
		}
		target := cur.Target
		e.SetTarget(target)
		e.BendPoints = append(e.BendPoints, bends...)
		for _, d := range dummies {
			g.RemoveNode(d)
		}
	}
	for _, n := range g.LiveNodes() {
		if n.Kind.IsChainMember() {
			return errors.Inconsistent("dummy %s is not reachable from the start of its chain", n)
		}
	}
	return nil
}

// placeCenterLabels stacks the center labels of e inside the label dummy d.
func placeCenterLabels(d *lgraph.LNode, e *lgraph.LEdge, spacing float64) {
	if e == nil {
		return
	}
	y := d.Pos.Y
	for _, l := range e.Labels {
		if l.Placement != options.LabelCenter && l.Placement != "" {
			continue
		}
		l.Pos = lgraph.Vector{X: d.Pos.X + (d.Size.X-l.Size.X)/2, Y: y}
		y += l.Size.Y + spacing
	}
}

func appendPoint(pts []lgraph.Vector, p lgraph.Vector) []lgraph.Vector {
	if k := len(pts); k > 0 && near(pts[k-1], p) {
		return pts
	}
	return append(pts, p)
}

// =============================================================================
// Reversed Edges
// =============================================================================

// RestoreReversed turns every edge reversed during layout back to its input
// direction. The bend points are reversed with it.
func RestoreReversed(g *lgraph.LGraph) int {
	n := 0
	for _, e := range g.LiveEdges() {
		if e.Reversed {
			e.Reverse()
			n++
		}
	}
	return n
}
