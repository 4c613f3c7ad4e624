package layering

import (
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// CheckConstraints rejects layer constraint and partition combinations that
// no layering can satisfy:
//
//   - two FIRST (or two FIRST_SEPARATE) nodes joined by an edge, and the
//     same for LAST and LAST_SEPARATE; FIRST_SEPARATE to FIRST is allowed
//   - with partitioning active, a FIRST node outside the lowest partition or
//     a LAST node outside the highest
//
// Violations are CONFIGURATION errors and must be reported before any
// layout work starts.
func CheckConstraints(g *lgraph.LGraph, cfg *options.Config) error {
	for _, e := range g.LiveEdges() {
		if e.SelfLoop {
			continue
		}
		cs, ct := e.Source.Node.LayerConstraint, e.Target.Node.LayerConstraint
		if cs == options.LayerConstraintNone || cs != ct {
			continue
		}
		return errors.Configuration("nodes %s and %s are both constrained to %s and must not be connected",
			e.Source.Node, e.Target.Node, cs)
	}

	if !cfg.Partitioning {
		return nil
	}
	lo, hi, found := 0, 0, false
	for _, n := range g.LiveNodes() {
		if n.Partition < 0 {
			continue
		}
		if !found {
			lo, hi, found = n.Partition, n.Partition, true
		}
		lo, hi = min(lo, n.Partition), max(hi, n.Partition)
	}
	for _, n := range g.LiveNodes() {
		if n.Partition < 0 {
			continue
		}
		if n.LayerConstraint.IsFirst() && n.Partition != lo {
			return errors.Configuration("node %s is constrained to %s but lies in partition %d, not the lowest partition %d",
				n, n.LayerConstraint, n.Partition, lo)
		}
		if n.LayerConstraint.IsLast() && n.Partition != hi {
			return errors.Configuration("node %s is constrained to %s but lies in partition %d, not the highest partition %d",
				n, n.LayerConstraint, n.Partition, hi)
		}
	}
	return nil
}

// applyConstraints moves constrained nodes after the strategy ran. FIRST
// nodes go to layer 0 and LAST nodes to the last layer; FIRST_SEPARATE and
// LAST_SEPARATE nodes get a layer of their own before or after all others.
// Layers are normalized to start at 0.
func applyConstraints(net *network, layer []int) {
	real := len(net.nodes)
	if real == 0 {
		return
	}
	lo := layer[0]
	for v := range real {
		lo = min(lo, layer[v])
	}
	for v := range real {
		layer[v] -= lo
	}

	hasFirstSep := false
	for v, n := range net.nodes {
		switch n.LayerConstraint {
		case options.LayerConstraintFirst:
			layer[v] = 0
		case options.LayerConstraintFirstSeparate:
			hasFirstSep = true
		}
	}
	if hasFirstSep {
		for v, n := range net.nodes {
			if n.LayerConstraint == options.LayerConstraintFirstSeparate {
				layer[v] = 0
			} else {
				layer[v]++
			}
		}
	}

	top := 0
	for v, n := range net.nodes {
		if n.LayerConstraint != options.LayerConstraintLastSeparate {
			top = max(top, layer[v])
		}
	}
	for v, n := range net.nodes {
		if n.LayerConstraint == options.LayerConstraintLast {
			layer[v] = top
		}
	}
	for v, n := range net.nodes {
		if n.LayerConstraint != options.LayerConstraintLastSeparate {
			continue
		}
		l := top + 1
		for _, ai := range net.in[v] {
			a := net.arcs[ai]
			if a.from < real {
				l = max(l, layer[a.from]+a.minLen)
			}
		}
		layer[v] = l
	}
}
