package layering

import (
	"context"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// strategy computes a layer value for every vertex of a network.
type strategy interface {
	layers(ctx context.Context, net *network) (layer []int, converged bool, err error)
}

// Layerer assigns the live nodes of an acyclic layout graph to layers.
type Layerer struct {
	strategy    strategy
	wide        options.WideNodesStrategy
	partitioned bool
	nodeSpacing float64
}

// New returns the layerer selected by cfg.
func New(cfg *options.Config) (*Layerer, error) {
	l := &Layerer{
		wide:        cfg.WideNodes,
		partitioned: cfg.Partitioning,
		nodeSpacing: cfg.Spacing.NodeNode,
	}
	switch cfg.Layering {
	case options.LayeringNetworkSimplex, "":
		l.strategy = simplex{thoroughness: cfg.Thoroughness}
	case options.LayeringLongestPath:
		l.strategy = longestPath{}
	case options.LayeringInteractive:
		l.strategy = interactive{}
	default:
		return nil, errors.Configuration("unknown layering strategy %q", cfg.Layering)
	}
	return l, nil
}

// Assign places every live node of g into a layer so that each edge points
// from a lower to a strictly higher layer. Layer constraints and partitions
// are honored; constraint feasibility must have been checked with
// [CheckConstraints] and edges reversed beforehand.
//
// converged is false when an iteration budget stopped the strategy early;
// the layering is valid either way.
//
// With AGGRESSIVE wide-node handling, edges leaving a wide node span at
// least as many layers as the node has chunks, and empty layers are kept so
// [SplitWideNodes] can fill them.
func (l *Layerer) Assign(ctx context.Context, g *lgraph.LGraph) (converged bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(g.Layers) > 0 {
		return false, errors.Inconsistent("graph is already layered")
	}

	minLen := func(*lgraph.LNode) int { return 1 }
	var plan map[*lgraph.LNode]chunking
	if l.wide == options.WideNodesAggressive {
		plan = planChunks(g, l.nodeSpacing)
		minLen = func(n *lgraph.LNode) int {
			if c, ok := plan[n]; ok {
				return c.parts
			}
			return 1
		}
	}

	net := build(g, minLen, l.partitioned)
	layer, converged, err := l.strategy.layers(ctx, net)
	if err != nil {
		return false, err
	}
	applyConstraints(net, layer)

	for i, n := range net.nodes {
		g.AssignLayer(n, layer[i])
	}
	if len(plan) == 0 {
		g.RemoveEmptyLayers()
	}
	return converged, nil
}

// =============================================================================
// Longest Path
// =============================================================================

// longestPath puts every node at its longest path distance from a source.
// Fast, but layers near the sources tend to get crowded.
type longestPath struct{}

func (longestPath) layers(ctx context.Context, net *network) ([]int, bool, error) {
	layer := make([]int, net.n)
	if err := net.relax(layer); err != nil {
		return nil, false, err
	}
	return layer, true, nil
}

// =============================================================================
// Interactive
// =============================================================================

// interactive keeps the layering of a previous drawing. Nodes are swept by
// their interactive position along the layer axis; a node starts a new layer
// when it lies entirely right of the current one. Edges that would then point
// backward push their targets forward.
type interactive struct{}

func (interactive) layers(ctx context.Context, net *network) ([]int, bool, error) {
	layer := make([]int, net.n)
	order := make([]int, len(net.nodes))
	for i := range order {
		order[i] = i
	}
	x := func(v int) float64 {
		if p := net.nodes[v].Interactive; p != nil {
			return p.X
		}
		return 0
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch xa, xb := x(a), x(b); {
		case xa < xb:
			return -1
		case xa > xb:
			return 1
		}
		return 0
	})

	current, right := -1, 0.0
	for _, v := range order {
		left := x(v)
		if current < 0 || left >= right {
			current++
			right = left + net.nodes[v].Size.X
		} else {
			right = max(right, left+net.nodes[v].Size.X)
		}
		layer[v] = current
	}
	if err := net.relax(layer); err != nil {
		return nil, false, err
	}
	return layer, true, nil
}
