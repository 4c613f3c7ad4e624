package lgraph

import (
	"github.com/matzehuels/sugiyama/pkg/errors"
)

// Validate checks the structural consistency of g: endpoints of live edges
// are live ports of live nodes, and every port belongs to the node it names.
// Violations are INTERNAL_CONSISTENCY errors.
func (g *LGraph) Validate() error {
	for _, n := range g.Nodes {
		if n.Removed {
			continue
		}
		for _, p := range n.Ports {
			if p.Node != n || p.Removed {
				return errors.Inconsistent("port %d listed on %s but owned elsewhere", p.ID, n)
			}
		}
	}
	for _, e := range g.Edges {
		if e.Removed {
			continue
		}
		if e.Source == nil || e.Target == nil {
			return errors.Inconsistent("edge %d is detached", e.ID)
		}
		if e.Source.Removed || e.Target.Removed || e.Source.Node.Removed || e.Target.Node.Removed {
			return errors.Inconsistent("edge %s ends at a removed element", e)
		}
	}
	return nil
}

// ValidateLayering checks the layered invariants: every live node sits in
// exactly one layer at the index it records, every edge points from a lower
// layer to a higher one, and, when proper is set, every non-self-loop edge
// spans exactly one layer and every chain dummy has one predecessor and one
// successor.
func (g *LGraph) ValidateLayering(proper bool) error {
	if err := g.Validate(); err != nil {
		return err
	}
	seen := make(map[*LNode]bool, len(g.Nodes))
	for i, l := range g.Layers {
		if l.Index != i {
			return errors.Inconsistent("layer %d records index %d", i, l.Index)
		}
		for j, n := range l.Nodes {
			if n.Layer != l || n.Index != j {
				return errors.Inconsistent("%s misplaced in layer %d", n, i)
			}
			if seen[n] {
				return errors.Inconsistent("%s appears in more than one layer", n)
			}
			seen[n] = true
		}
	}
	for _, n := range g.Nodes {
		if !n.Removed && !seen[n] {
			return errors.Inconsistent("%s has no layer", n)
		}
	}
	for _, e := range g.LiveEdges() {
		if e.SelfLoop {
			continue
		}
		span := e.Target.Node.Layer.Index - e.Source.Node.Layer.Index
		if span < 1 {
			if span == 0 && (e.Source.Node.Kind == NorthSouthPort || e.Target.Node.Kind == NorthSouthPort) {
				continue
			}
			return errors.Inconsistent("edge %s does not point to a later layer", e)
		}
		if proper && span != 1 {
			return errors.Inconsistent("edge %s spans %d layers", e, span)
		}
	}
	if proper {
		for _, n := range g.Nodes {
			if n.Removed || !n.Kind.IsChainMember() {
				continue
			}
			if len(n.Incoming()) != 1 || len(n.Outgoing()) != 1 {
				return errors.Inconsistent("chain dummy %s has %d predecessors and %d successors",
					n, len(n.Incoming()), len(n.Outgoing()))
			}
		}
	}
	return nil
}
