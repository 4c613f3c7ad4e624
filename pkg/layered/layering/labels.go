package layering

import (
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// InsertLabelDummies gives every edge with center labels a LABEL dummy in
// its middle, large enough to hold the labels stacked on top of each other.
// The dummy takes part in layering like any node, so the labeled edge spans
// at least two layers. Routing places the labels at the dummy's position.
func InsertLabelDummies(g *lgraph.LGraph, labelSpacing float64) int {
	inserted := 0
	for _, e := range g.LiveEdges() {
		if e.SelfLoop || e.Virtual {
			continue
		}
		var size lgraph.Vector
		count := 0
		for _, l := range e.Labels {
			if l.Placement != options.LabelCenter && l.Placement != "" {
				continue
			}
			size.X = max(size.X, l.Size.X)
			size.Y += l.Size.Y
			count++
		}
		if count == 0 {
			continue
		}
		size.Y += float64(count-1) * labelSpacing

		d := g.AddNode(lgraph.Label, "")
		d.Size = size
		d.OriginEdge = e
		d.Partition = e.Source.Node.Partition

		target := e.Target
		in := g.AddPort(d, lgraph.West)
		out := g.AddPort(d, lgraph.East)
		e.SetTarget(in)
		rest := g.Connect(out, target)
		rest.Priority = e.Priority
		rest.Reversed = e.Reversed
		inserted++
	}
	return inserted
}
