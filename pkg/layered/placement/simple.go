package placement

import (
	"context"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// simple stacks the nodes of each layer from the top with the required
// spacing and then centers every layer on the tallest one. Fast, but edges
// are rarely straight.
//
// The chunks of a split wide node share the position of their head, so the
// node can be joined again without overlapping its neighbours. Layers that
// hold chunks are not centered.
type simple struct{}

func (simple) place(_ context.Context, g *lgraph.LGraph, sp spacer) error {
	if !stackBlocks(g, sp) {
		stackLayers(g, sp)
	}

	heights := make([]float64, len(g.Layers))
	tallest := 0.0
	for i, l := range g.Layers {
		if k := len(l.Nodes); k > 0 {
			heights[i] = l.Nodes[k-1].Pos.Y + bottom(l.Nodes[k-1])
		}
		tallest = max(tallest, heights[i])
	}
	for i, l := range g.Layers {
		if holdsChunks(l) {
			continue
		}
		shift := (tallest - heights[i]) / 2
		for _, n := range l.Nodes {
			n.Pos.Y += shift
		}
	}
	return nil
}

// stackLayers stacks every layer on its own.
func stackLayers(g *lgraph.LGraph, sp spacer) {
	for _, l := range g.Layers {
		y := 0.0
		for j, n := range l.Nodes {
			if j == 0 {
				y = -top(n)
			} else {
				y += sp.minGap(l.Nodes[j-1], n)
			}
			n.Pos.Y = y
		}
	}
}

// stackBlocks places every block (a node, or a split node with its chunks)
// as high as the blocks above it in any of its layers allow. It returns
// false, leaving positions untouched, when two blocks lie above each other
// in different layers.
func stackBlocks(g *lgraph.LGraph, sp spacer) bool {
	type bound struct {
		to  *lgraph.LNode
		gap float64
	}
	y := map[*lgraph.LNode]float64{}
	below := map[*lgraph.LNode][]bound{}
	indeg := map[*lgraph.LNode]int{}
	var blocks []*lgraph.LNode

	for _, l := range g.Layers {
		for j, n := range l.Nodes {
			b := blockOf(n)
			if _, ok := y[b]; !ok {
				y[b] = -top(n)
				blocks = append(blocks, b)
			}
			if j == 0 {
				y[b] = max(y[b], -top(n))
				continue
			}
			a := blockOf(l.Nodes[j-1])
			below[a] = append(below[a], bound{b, sp.minGap(l.Nodes[j-1], n)})
			indeg[b]++
		}
	}

	var queue []*lgraph.LNode
	for _, b := range blocks {
		if indeg[b] == 0 {
			queue = append(queue, b)
		}
	}
	done := 0
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		done++
		for _, c := range below[a] {
			y[c.to] = max(y[c.to], y[a]+c.gap)
			if indeg[c.to]--; indeg[c.to] == 0 {
				queue = append(queue, c.to)
			}
		}
	}
	if done < len(blocks) {
		return false
	}
	for _, l := range g.Layers {
		for _, n := range l.Nodes {
			n.Pos.Y = y[blockOf(n)]
		}
	}
	return true
}

// blockOf returns the head of n's block: the split node for its chunks, n
// itself otherwise.
func blockOf(n *lgraph.LNode) *lgraph.LNode {
	if n.Kind == lgraph.BigNode && n.Owner != nil {
		return n.Owner
	}
	return n
}

func holdsChunks(l *lgraph.Layer) bool {
	for _, n := range l.Nodes {
		if n.Chunk > 0 {
			return true
		}
	}
	return false
}
