package layering

import (
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// minChunkWidth caps how narrow a chunk of a wide node may get.
const minChunkWidth = 50.0

// chunking describes how a wide node is cut: parts chunks of width each,
// except the last, which takes the rest.
type chunking struct {
	parts int
	width float64
}

// planChunks finds the wide nodes of g. A NORMAL node is wide when it is
// wider than the narrowest NORMAL node (at least minChunkWidth) plus the
// node spacing; it is cut into the fewest chunks no wider than that.
func planChunks(g *lgraph.LGraph, spacing float64) map[*lgraph.LNode]chunking {
	narrowest := -1.0
	for _, n := range g.NodesOf(lgraph.Normal) {
		if narrowest < 0 || n.Size.X < narrowest {
			narrowest = n.Size.X
		}
	}
	minWidth := max(minChunkWidth, narrowest)
	threshold := minWidth + spacing

	plan := map[*lgraph.LNode]chunking{}
	for _, n := range g.NodesOf(lgraph.Normal) {
		if n.Size.X <= threshold || !splittable(n) {
			continue
		}
		parts, width := 1, n.Size.X
		for width > minWidth {
			parts++
			width = (n.Size.X - float64(parts-1)*spacing) / float64(parts)
		}
		plan[n] = chunking{parts: parts, width: width}
	}
	return plan
}

// splittable rejects nodes whose ports or loops cannot follow a split: north
// or south ports at fixed positions, incoming edges on east ports when sides
// are fixed, and self-loops.
func splittable(n *lgraph.LNode) bool {
	for _, p := range n.Ports {
		if n.PortConstraints == options.PortsFixedPos && (p.Side == lgraph.North || p.Side == lgraph.South) {
			return false
		}
		if n.PortConstraints.SideFixed() && p.Side == lgraph.East && len(p.Incoming) > 0 {
			return false
		}
		for _, e := range p.Outgoing {
			if e.SelfLoop {
				return false
			}
		}
	}
	return true
}

// outPorts returns the ports of n that must move to its last chunk.
func outPorts(n *lgraph.LNode) []*lgraph.LPort {
	var out []*lgraph.LPort
	for _, p := range n.Ports {
		if p.Side == lgraph.East || !n.PortConstraints.SideFixed() && len(p.Outgoing) > 0 && len(p.Incoming) == 0 {
			out = append(out, p)
		}
	}
	return out
}

func movePort(p *lgraph.LPort, to *lgraph.LNode) {
	from := p.Node
	from.Ports = slices.DeleteFunc(from.Ports, func(q *lgraph.LPort) bool { return q == p })
	p.Node = to
	p.Index = len(to.Ports)
	to.Ports = append(to.Ports, p)
}

// chunkSizes returns the widths of all chunks of a node of width w.
func chunkSizes(w float64, c chunking, spacing float64) []float64 {
	sizes := []float64{c.width}
	rest := w - c.width
	for range c.parts - 1 {
		sizes = append(sizes, min(rest, c.width))
		rest -= c.width + spacing
	}
	return sizes
}

// newChunk creates the chunk following prev and links the two.
func newChunk(g *lgraph.LGraph, head, prev *lgraph.LNode, j int, width float64) *lgraph.LNode {
	c := g.AddNode(lgraph.BigNode, "")
	c.Owner = head
	c.Chunk = j
	c.Size = lgraph.Vector{X: width, Y: head.Size.Y}
	c.PortConstraints = head.PortConstraints
	c.Partition = head.Partition
	e := g.Connect(g.AddPort(prev, lgraph.East), g.AddPort(c, lgraph.West))
	e.Virtual = true
	return c
}

// SplitWideNodes cuts wide nodes into BIG_NODE chunks occupying consecutive
// layers, so one very wide node does not stretch a single layer.
//
// AGGRESSIVE must run right after layering, which reserved the layers; the
// chunks are appended to them and the node's outgoing edges leave from the
// last chunk. CAREFUL runs after crossing minimization and only splits a
// node when every outgoing edge already crosses the chunk layers as a chain
// of long-edge dummies; each chunk then takes the place of the topmost
// dummy in its layer and the dummies are dropped.
//
// Returns the number of nodes split.
func SplitWideNodes(g *lgraph.LGraph, cfg *options.Config) (int, error) {
	switch cfg.WideNodes {
	case options.WideNodesAggressive:
		n := splitAggressive(g, cfg.Spacing.NodeNode)
		g.RemoveEmptyLayers()
		return n, nil
	case options.WideNodesCareful:
		return splitCareful(g, cfg.Spacing.NodeNode), nil
	case options.WideNodesOff, "":
		return 0, nil
	}
	return 0, errors.Configuration("unknown wide node strategy %q", cfg.WideNodes)
}

func splitAggressive(g *lgraph.LGraph, spacing float64) int {
	plan := planChunks(g, spacing)
	split := 0
	for _, head := range g.NodesOf(lgraph.Normal) {
		c, ok := plan[head]
		if !ok || head.Layer == nil {
			continue
		}
		moving := outPorts(head)
		sizes := chunkSizes(head.Size.X, c, spacing)
		head.OriginWidth = head.Size.X
		head.Size.X = sizes[0]
		head.Chunk = 1

		prev := head
		for j := 1; j < c.parts; j++ {
			chunk := newChunk(g, head, prev, j+1, sizes[j])
			g.Layer(head.LayerIndex() + j).Append(chunk)
			prev = chunk
		}
		for _, p := range moving {
			movePort(p, prev)
		}
		split++
	}
	return split
}

func splitCareful(g *lgraph.LGraph, spacing float64) int {
	plan := planChunks(g, spacing)
	split := 0
	for _, head := range g.NodesOf(lgraph.Normal) {
		c, ok := plan[head]
		if !ok || head.Layer == nil {
			continue
		}
		chains, ok := dummyChains(g, head, c.parts-1)
		if !ok {
			continue
		}

		moving := outPorts(head)
		sizes := chunkSizes(head.Size.X, c, spacing)
		head.OriginWidth = head.Size.X
		head.Size.X = sizes[0]
		head.Chunk = 1

		prev := head
		for j := 1; j < c.parts; j++ {
			layer := g.Layers[head.LayerIndex()+j]
			at := len(layer.Nodes)
			for _, chain := range chains {
				at = min(at, chain.dummies[j-1].Index)
			}
			chunk := newChunk(g, head, prev, j+1, sizes[j])
			layer.Insert(chunk, at)
			prev = chunk
		}
		for _, p := range moving {
			movePort(p, prev)
		}
		for _, chain := range chains {
			last := chain.dummies[len(chain.dummies)-1]
			next := last.Outgoing()[0]
			chain.edge.SetTarget(next.Target)
			g.RemoveEdge(next)
			for _, d := range chain.dummies {
				g.RemoveNode(d)
			}
		}
		split++
	}
	return split
}

type chain struct {
	edge    *lgraph.LEdge
	dummies []*lgraph.LNode
}

// dummyChains follows every outgoing edge of head through k long-edge
// dummies. It fails if any edge reaches a real node sooner or head has no
// outgoing edges.
func dummyChains(g *lgraph.LGraph, head *lgraph.LNode, k int) ([]chain, bool) {
	if head.LayerIndex()+k >= len(g.Layers) {
		return nil, false
	}
	var out []chain
	for _, e := range head.Outgoing() {
		if e.SelfLoop {
			return nil, false
		}
		ch := chain{edge: e}
		n := e.Target.Node
		for len(ch.dummies) < k {
			if n.Kind != lgraph.LongEdge || len(n.Outgoing()) != 1 {
				return nil, false
			}
			ch.dummies = append(ch.dummies, n)
			n = n.Outgoing()[0].Target.Node
		}
		out = append(out, ch)
	}
	return out, len(out) > 0
}

// JoinWideNodes merges the chunks of every split node back into the node
// after placement: ports return to the head (keeping their absolute
// position), the head regains its width, and the chunks are removed.
func JoinWideNodes(g *lgraph.LGraph) int {
	joined := 0
	for _, head := range g.NodesOf(lgraph.Normal) {
		if head.Chunk != 1 {
			continue
		}
		var chunks []*lgraph.LNode
		for _, c := range g.NodesOf(lgraph.BigNode) {
			if c.Owner == head {
				chunks = append(chunks, c)
			}
		}
		head.Size.X = head.OriginWidth
		for _, c := range chunks {
			for _, p := range slices.Clone(c.Ports) {
				if isChunkLink(p) {
					continue
				}
				abs := c.Pos.Add(p.Pos)
				movePort(p, head)
				p.Pos = abs.Sub(head.Pos)
				p.Pos.Y = min(max(p.Pos.Y, 0), head.Size.Y-p.Size.Y)
				if p.Side == lgraph.East {
					p.Pos.X = head.Size.X
				}
			}
		}
		for _, p := range slices.Clone(head.Ports) {
			if isChunkLink(p) {
				for _, e := range slices.Clone(p.Outgoing) {
					g.RemoveEdge(e)
				}
				g.RemovePort(p)
			}
		}
		for _, c := range chunks {
			g.RemoveNode(c)
		}
		head.Chunk = 0
		joined++
	}
	return joined
}

// isChunkLink reports whether p only carries the links between chunks.
func isChunkLink(p *lgraph.LPort) bool {
	if p.Degree() == 0 {
		return false
	}
	for _, e := range p.Incoming {
		if !e.Virtual {
			return false
		}
	}
	for _, e := range p.Outgoing {
		if !e.Virtual {
			return false
		}
	}
	return true
}
