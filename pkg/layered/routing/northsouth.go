package routing

import (
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/layered/ordering"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// RemoveNorthSouthDummies moves the edges of every NORTH_SOUTH_PORT dummy
// back to the port it stands in for. Each edge gets a bend point where it
// turns from the dummy's row onto the port's side of the owner.
func RemoveNorthSouthDummies(g *lgraph.LGraph) error {
	for _, d := range g.NodesOf(lgraph.NorthSouthPort) {
		p := ordering.NorthSouthPort(d)
		if p == nil {
			return errors.Inconsistent("north/south dummy %s has no port on %s", d, d.Owner)
		}
		x := p.Anchor().X
		for _, dp := range slices.Clone(d.Ports) {
			corner := lgraph.Vector{X: x, Y: dp.Anchor().Y}
			for _, e := range slices.Clone(dp.Incoming) {
				e.SetTarget(p)
				e.BendPoints = appendPoint(e.BendPoints, corner)
			}
			for _, e := range slices.Clone(dp.Outgoing) {
				e.SetSource(p)
				if len(e.BendPoints) == 0 || !near(e.BendPoints[0], corner) {
					e.BendPoints = slices.Insert(e.BendPoints, 0, corner)
				}
			}
		}
		p.Dummy = nil
		g.RemoveNode(d)
	}
	return nil
}
