package ordering

import (
	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// SplitLongEdges breaks every edge spanning more than one layer into a chain
// of single-layer segments joined by LONG_EDGE dummies, one per skipped
// layer.
//
// The original edge stays in place as the first segment of its chain; every
// dummy records it as OriginEdge so routing can join the chain back into it.
// Chains that continue behind a LABEL dummy keep pointing at the edge the
// label dummy was created for.
//
// Returns the number of dummies inserted.
func SplitLongEdges(g *lgraph.LGraph) int {
	inserted := 0
	for _, e := range g.LiveEdges() {
		if e.SelfLoop || e.Virtual {
			continue
		}
		from, to := e.Source.Node.LayerIndex(), e.Target.Node.LayerIndex()
		if from < 0 || to-from <= 1 {
			continue
		}

		origin := e
		if src := e.Source.Node; src.Kind.IsChainMember() && src.OriginEdge != nil {
			origin = src.OriginEdge
		}
		target := e.Target
		seg := e
		for l := from + 1; l < to; l++ {
			d := g.AddNode(lgraph.LongEdge, "")
			d.OriginEdge = origin
			in := g.AddPort(d, lgraph.West)
			out := g.AddPort(d, lgraph.East)
			g.Layers[l].Append(d)

			seg.SetTarget(in)
			next := g.Connect(out, target)
			next.Priority = e.Priority
			next.Reversed = e.Reversed
			seg = next
			inserted++
		}
	}
	return inserted
}
