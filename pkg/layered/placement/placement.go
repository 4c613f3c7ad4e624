package placement

import (
	"context"
	"math"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// eps absorbs floating point noise in spacing checks.
const eps = 1e-6

// strategy computes the in-layer coordinate (Pos.Y) of every layered node.
type strategy interface {
	place(ctx context.Context, g *lgraph.LGraph, sp spacer) error
}

// Placer assigns coordinates to the nodes of an ordered layout graph.
type Placer struct {
	strategy strategy
	spacing  options.Spacing
}

// New returns the placer selected by cfg.
func New(cfg *options.Config) (*Placer, error) {
	p := &Placer{spacing: cfg.Spacing}
	switch cfg.NodePlacement {
	case options.PlacementBrandesKoepf, "":
		p.strategy = &brandesKoepf{fixed: cfg.FixedAlignment, selection: cfg.BKSelection}
	case options.PlacementLinearSegments:
		p.strategy = &linearSegments{dampening: cfg.DeflectionDampening, thoroughness: max(1, cfg.Thoroughness)}
	case options.PlacementSimple:
		p.strategy = simple{}
	default:
		return nil, errors.Configuration("unknown node placement strategy %q", cfg.NodePlacement)
	}
	return p, nil
}

// Simple returns a placer using the SIMPLE strategy. The orchestrator
// falls back to it to finish a canceled run quickly.
func Simple(s options.Spacing) *Placer {
	return &Placer{strategy: simple{}, spacing: s}
}

// Place computes node positions. The in-layer coordinate comes from the
// strategy; layers are then laid out along x, each node centered in its
// layer, and the drawing is moved so that it starts at (0, 0).
//
// Ports must already have their positions relative to their nodes.
func (p *Placer) Place(ctx context.Context, g *lgraph.LGraph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sp := spacer{p.spacing}
	if err := p.strategy.place(ctx, g, sp); err != nil {
		return err
	}
	placeLayers(g, p.spacing)
	normalize(g)
	return nil
}

// =============================================================================
// Spacing
// =============================================================================

type spacer struct {
	options.Spacing
}

// edgeLike reports whether n only stands in for an edge.
func edgeLike(n *lgraph.LNode) bool {
	switch n.Kind {
	case lgraph.LongEdge, lgraph.NorthSouthPort, lgraph.Label:
		return true
	}
	return false
}

// between returns the gap required between two adjacent nodes of a layer:
// node-node for two nodes, edge-node when one of them stands in for an edge,
// edge-edge when both do.
func (s spacer) between(a, b *lgraph.LNode) float64 {
	switch ea, eb := edgeLike(a), edgeLike(b); {
	case ea && eb:
		return s.EdgeEdge
	case ea || eb:
		return s.EdgeNode
	}
	return s.NodeNode
}

// top and bottom return the extent of n along the in-layer axis relative to
// its position, margins included.
func top(n *lgraph.LNode) float64    { return -n.Margin.Top }
func bottom(n *lgraph.LNode) float64 { return n.Size.Y + n.Margin.Bottom }

// minGap returns the smallest allowed distance between the positions of a
// and b when a lies directly above b.
func (s spacer) minGap(a, b *lgraph.LNode) float64 {
	return bottom(a) + s.between(a, b) - top(b)
}

// =============================================================================
// Layers
// =============================================================================

// placeLayers sets the x position of every layer and node. Each layer is as
// wide as its widest node; consecutive layers are separated by the
// node-node spacing between layers, or the edge-node spacing when one of
// them only holds edge dummies.
func placeLayers(g *lgraph.LGraph, s options.Spacing) {
	x := 0.0
	for i, l := range g.Layers {
		width := 0.0
		for _, n := range l.Nodes {
			width = max(width, n.Size.X+n.Margin.Left+n.Margin.Right)
		}
		if i > 0 {
			if onlyEdges(g.Layers[i-1]) || onlyEdges(l) {
				x += s.EdgeNodeBetweenLayers
			} else {
				x += s.NodeNodeBetweenLayers
			}
		}
		l.X, l.Width = x, width
		for _, n := range l.Nodes {
			n.Pos.X = x + n.Margin.Left + (width-n.Size.X-n.Margin.Left-n.Margin.Right)/2
		}
		x += width
	}
}

func onlyEdges(l *lgraph.Layer) bool {
	for _, n := range l.Nodes {
		if !edgeLike(n) {
			return false
		}
	}
	return true
}

// normalize moves the drawing so that the topmost node margin lies at y = 0.
func normalize(g *lgraph.LGraph) {
	lo := math.Inf(1)
	for _, l := range g.Layers {
		for _, n := range l.Nodes {
			lo = min(lo, n.Pos.Y+top(n))
		}
	}
	if math.IsInf(lo, 1) {
		return
	}
	for _, l := range g.Layers {
		for _, n := range l.Nodes {
			n.Pos.Y -= lo
		}
	}
}

// Overlaps returns the first pair of adjacent nodes that violates the
// spacing, or nil, nil.
func Overlaps(g *lgraph.LGraph, s options.Spacing) (*lgraph.LNode, *lgraph.LNode) {
	sp := spacer{s}
	for _, l := range g.Layers {
		for i := 0; i+1 < len(l.Nodes); i++ {
			a, b := l.Nodes[i], l.Nodes[i+1]
			if b.Pos.Y-a.Pos.Y < sp.minGap(a, b)-eps {
				return a, b
			}
		}
	}
	return nil, nil
}
