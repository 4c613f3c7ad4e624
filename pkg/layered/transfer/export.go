package transfer

import (
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Property keys written by Export.
const (
	ResolvedAlgorithm  = "resolvedAlgorithm"
	ResolvedStrategies = "resolvedStrategies"
)

// Export writes the geometry of a routed layout graph back into parent:
// child positions and port positions relative to parent, one section per
// edge with its bend points, junction points, edge label positions, and
// parent's new size. Elements marked noLayout keep their geometry.
//
// g must already be in the output direction (see [Transform]).
func Export(g *lgraph.LGraph, parent *graph.Node, cfg *options.Config) {
	for _, n := range g.LiveNodes() {
		switch {
		case n.Kind == lgraph.Normal && n.Origin != nil && !n.Fixed:
			exportNode(n)
		case n.Kind == lgraph.ExternalPort && n.OriginPort != nil:
			p := n.OriginPort
			if !noLayout(p.Properties) {
				p.X, p.Y = n.Pos.X, n.Pos.Y
				p.Side = n.ExternalSide.String()
			}
		}
	}

	for _, e := range g.LiveEdges() {
		if e.Origin == nil || noLayout(e.Origin.Properties) {
			continue
		}
		start, end := e.Source.Anchor(), e.Target.Anchor()
		sec := graph.Section{
			Start: graph.Point{X: start.X, Y: start.Y},
			End:   graph.Point{X: end.X, Y: end.Y},
		}
		for _, b := range e.BendPoints {
			sec.BendPoints = append(sec.BendPoints, graph.Point{X: b.X, Y: b.Y})
		}
		e.Origin.Sections = []graph.Section{sec}
		e.Origin.JunctionPoints = nil
		for _, j := range e.JunctionPoints {
			e.Origin.JunctionPoints = append(e.Origin.JunctionPoints, graph.Point{X: j.X, Y: j.Y})
		}
		for _, l := range e.Labels {
			if l.Origin != nil && !noLayout(l.Origin.Properties) {
				l.Origin.X, l.Origin.Y = l.Pos.X, l.Pos.Y
			}
		}
	}

	parent.Width, parent.Height = g.Size.X, g.Size.Y
	if parent.Properties == nil {
		parent.Properties = graph.Properties{}
	}
	parent.Properties[ResolvedAlgorithm] = options.AlgorithmLayered
	parent.Properties[ResolvedStrategies] = map[string]any{
		options.CycleBreaking.ID():   string(cfg.CycleBreaking),
		options.Layering.ID():        string(cfg.Layering),
		options.Heuristic.ID():       string(cfg.Heuristic),
		options.NodePlacement.ID():   string(cfg.NodePlacement),
		options.LayoutDirection.ID(): string(cfg.Direction),
	}
}

func exportNode(n *lgraph.LNode) {
	c := n.Origin
	c.X, c.Y = n.Pos.X, n.Pos.Y
	for _, p := range n.Ports {
		if p.Origin == nil || noLayout(p.Origin.Properties) {
			continue
		}
		p.Origin.X, p.Origin.Y = p.Pos.X, p.Pos.Y
		if p.Side != lgraph.SideUndefined {
			p.Origin.Side = p.Side.String()
		}
	}
}

func noLayout(p graph.Properties) bool {
	v, err := options.NoLayout.Get(p)
	return err == nil && v
}
