package ordering

import (
	"context"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Switcher is the greedy switch post-pass: it swaps adjacent nodes of a
// layer whenever that strictly reduces the crossings with the neighbouring
// layers. ONE_SIDED only looks at the layer the sweep came from; TWO_SIDED
// looks at both.
type Switcher struct {
	twoSided       bool
	bestOfUpOrDown bool
	threshold      int
	hyperedges     bool
}

// NewSwitcher returns the switcher configured by cfg, or nil when the pass
// is switched off.
func NewSwitcher(cfg *options.Config) (*Switcher, error) {
	s := &Switcher{
		bestOfUpOrDown: cfg.BestOfUpOrDown,
		threshold:      cfg.GreedySwitchThreshold,
		hyperedges:     cfg.HyperedgeCounting,
	}
	switch cfg.GreedySwitch {
	case options.GreedySwitchOff:
		return nil, nil
	case options.GreedySwitchOneSided:
	case options.GreedySwitchTwoSided, "":
		s.twoSided = true
	default:
		return nil, errors.Configuration("unknown greedy switch type %q", cfg.GreedySwitch)
	}
	return s, nil
}

// Switch runs the pass over g and returns the number of swaps kept. Graphs
// with more nodes than the activation threshold are left alone (a threshold
// of 0 never skips). With bestOfUpOrDown the pass runs once sweeping
// forward and once backward, both from the current order, and the order
// with fewer crossings wins.
func (s *Switcher) Switch(ctx context.Context, g *lgraph.LGraph) (int, error) {
	if s == nil || len(g.Layers) < 2 {
		return 0, nil
	}
	if s.threshold > 0 && len(g.LiveNodes()) > s.threshold {
		return 0, nil
	}
	counter := lgraph.NewCounter(g, s.hyperedges)

	if !s.bestOfUpOrDown {
		return s.pass(ctx, g, counter, true)
	}
	start := g.Order()
	down, err := s.pass(ctx, g, counter, true)
	if err != nil {
		return down, err
	}
	downOrder := g.Order()
	downCount := counter.Total(downOrder)

	g.SetOrder(start)
	up, err := s.pass(ctx, g, counter, false)
	if err != nil {
		g.SetOrder(downOrder)
		return down, err
	}
	if counter.Total(g.Order()) < downCount {
		return up, nil
	}
	g.SetOrder(downOrder)
	return down, nil
}

// pass sweeps the layers once in the given direction, switching within
// each layer until no swap helps.
func (s *Switcher) pass(ctx context.Context, g *lgraph.LGraph, c *lgraph.Counter, forward bool) (int, error) {
	swaps := 0
	n := len(g.Layers)
	for k := range n {
		if err := ctx.Err(); err != nil {
			return swaps, err
		}
		i := k
		if !forward {
			i = n - 1 - k
		}
		swaps += s.switchLayer(g, c, i, forward)
	}
	return swaps, nil
}

func (s *Switcher) switchLayer(g *lgraph.LGraph, c *lgraph.Counter, i int, forward bool) int {
	layer := g.Layers[i]
	var west, east *lgraph.Layer
	if i > 0 {
		west = g.Layers[i-1]
	}
	if i+1 < len(g.Layers) {
		east = g.Layers[i+1]
	}
	if !s.twoSided {
		if forward {
			east = nil
		} else {
			west = nil
		}
	}
	if west == nil && east == nil {
		return 0
	}

	swaps := 0
	for improved := true; improved; {
		improved = false
		if west != nil {
			c.AssignPositions(west.Nodes, true)
		}
		if east != nil {
			c.AssignPositions(east.Nodes, false)
		}
		for j := 0; j+1 < len(layer.Nodes); j++ {
			u, v := layer.Nodes[j], layer.Nodes[j+1]
			if !switchable(u, v) {
				continue
			}
			before, after := 0, 0
			if west != nil {
				before += c.PairCrossings(u, v, true)
				after += c.PairCrossings(v, u, true)
			}
			if east != nil {
				before += c.PairCrossings(u, v, false)
				after += c.PairCrossings(v, u, false)
			}
			if after < before {
				layer.Nodes[j], layer.Nodes[j+1] = v, u
				layer.Reindex()
				swaps++
				improved = true
			}
		}
	}
	return swaps
}

// switchable reports whether u and v may trade places: both must share an
// in-layer constraint group and neither may belong to a multi-node layout
// unit.
func switchable(u, v *lgraph.LNode) bool {
	if inLayerGroup(u) != inLayerGroup(v) || sameUnit(u, v) {
		return false
	}
	return !inUnit(u) && !inUnit(v)
}
