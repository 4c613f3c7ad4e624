// Package lgraphtest builds small layout graphs for tests.
package lgraphtest

import (
	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// Builder creates nodes by name and connects them with one port per edge,
// incoming on WEST and outgoing on EAST.
type Builder struct {
	G     *lgraph.LGraph
	nodes map[string]*lgraph.LNode
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{G: lgraph.New(), nodes: map[string]*lgraph.LNode{}}
}

// Node returns the node called name, creating a 20x20 NORMAL node on first use.
func (b *Builder) Node(name string) *lgraph.LNode {
	if n, ok := b.nodes[name]; ok {
		return n
	}
	n := b.G.AddNode(lgraph.Normal, name)
	n.Size = lgraph.Vector{X: 20, Y: 20}
	b.nodes[name] = n
	return n
}

// Edge connects from to to.
func (b *Builder) Edge(from, to string) *lgraph.LEdge {
	src := b.G.AddPort(b.Node(from), lgraph.East)
	dst := b.G.AddPort(b.Node(to), lgraph.West)
	return b.G.Connect(src, dst)
}

// Edges connects each pair ("a", "b") in turn.
func (b *Builder) Edges(pairs ...[2]string) *Builder {
	for _, p := range pairs {
		b.Edge(p[0], p[1])
	}
	return b
}

// Layers assigns the named nodes to layers in the given order.
func (b *Builder) Layers(layers ...[]string) *Builder {
	for i, names := range layers {
		for _, name := range names {
			b.G.AssignLayer(b.Node(name), i)
		}
	}
	return b
}

// Names returns the node names of every layer.
func Names(g *lgraph.LGraph) [][]string {
	out := make([][]string, len(g.Layers))
	for i, l := range g.Layers {
		for _, n := range l.Nodes {
			out[i] = append(out[i], n.Name)
		}
	}
	return out
}

// LayerOf returns the layer index of the node called name, or -1.
func LayerOf(g *lgraph.LGraph, name string) int {
	for _, n := range g.Nodes {
		if n.Name == name && !n.Removed {
			return n.LayerIndex()
		}
	}
	return -1
}
