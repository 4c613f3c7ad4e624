package lgraph

import (
	"fmt"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// LGraph is the mutable layout graph shared by all phases of one run.
//
// Nodes, ports, and edges live in arena slices and are addressed by ID, which
// equals their index. Removing an element only marks it Removed; use the Live
// accessors to iterate and [LGraph.Compact] to drop tombstones.
//
// LGraph is not safe for concurrent use. Each hierarchy level gets its own
// graph, owned by exactly one pipeline run.
type LGraph struct {
	Nodes  []*LNode
	Ports  []*LPort
	Edges  []*LEdge
	Layers []*Layer

	// Origin is the input node whose children this graph holds.
	Origin *graph.Node

	// Size and Offset describe the drawing after placement: Offset moves
	// node coordinates so the drawing starts at the padding.
	Size   Vector
	Offset Vector
}

// New creates an empty layout graph.
func New() *LGraph {
	return &LGraph{}
}

// =============================================================================
// Construction
// =============================================================================

// AddNode appends a node of the given kind.
func (g *LGraph) AddNode(kind NodeKind, name string) *LNode {
	n := &LNode{
		ID:              len(g.Nodes),
		Kind:            kind,
		Name:            name,
		Partition:       -1,
		LayerConstraint: options.LayerConstraintNone,
		InLayer:         options.InLayerNone,
		PortConstraints: options.PortsFree,
	}
	if name == "" {
		n.Name = fmt.Sprintf("%s#%d", kind, n.ID)
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

// AddPort appends a port on the given side of n.
func (g *LGraph) AddPort(n *LNode, side PortSide) *LPort {
	p := &LPort{ID: len(g.Ports), Node: n, Side: side, Index: len(n.Ports)}
	g.Ports = append(g.Ports, p)
	n.Ports = append(n.Ports, p)
	return p
}

// Connect adds an edge from src to dst.
func (g *LGraph) Connect(src, dst *LPort) *LEdge {
	e := &LEdge{ID: len(g.Edges)}
	g.Edges = append(g.Edges, e)
	e.SetSource(src)
	e.SetTarget(dst)
	e.SelfLoop = src.Node == dst.Node
	return e
}

// RemoveEdge detaches e from its ports and marks it removed.
func (g *LGraph) RemoveEdge(e *LEdge) {
	e.SetSource(nil)
	e.SetTarget(nil)
	e.Removed = true
}

// RemovePort detaches p from its node and marks it removed. The port must
// have no edges left.
func (g *LGraph) RemovePort(p *LPort) {
	if p.Node != nil {
		p.Node.Ports = slices.DeleteFunc(p.Node.Ports, func(q *LPort) bool { return q == p })
	}
	p.Removed = true
}

// RemoveNode removes n, its ports, and all incident edges.
func (g *LGraph) RemoveNode(n *LNode) {
	for _, p := range slices.Clone(n.Ports) {
		for _, e := range slices.Clone(p.Incoming) {
			g.RemoveEdge(e)
		}
		for _, e := range slices.Clone(p.Outgoing) {
			g.RemoveEdge(e)
		}
		p.Removed = true
	}
	n.Ports = nil
	if n.Layer != nil {
		n.Layer.Remove(n)
	}
	n.Removed = true
}

// SetSource moves the edge's source to p (nil detaches it).
func (e *LEdge) SetSource(p *LPort) {
	if e.Source != nil {
		e.Source.Outgoing = slices.DeleteFunc(e.Source.Outgoing, func(x *LEdge) bool { return x == e })
	}
	e.Source = p
	if p != nil {
		p.Outgoing = append(p.Outgoing, e)
	}
}

// SetTarget moves the edge's target to p (nil detaches it).
func (e *LEdge) SetTarget(p *LPort) {
	if e.Target != nil {
		e.Target.Incoming = slices.DeleteFunc(e.Target.Incoming, func(x *LEdge) bool { return x == e })
	}
	e.Target = p
	if p != nil {
		p.Incoming = append(p.Incoming, e)
	}
}

// Reverse swaps source and target and toggles the Reversed flag. Bend points
// are reversed too so the polyline keeps following the edge direction.
func (e *LEdge) Reverse() {
	src, dst := e.Source, e.Target
	e.SetSource(nil)
	e.SetTarget(nil)
	e.SetSource(dst)
	e.SetTarget(src)
	e.Reversed = !e.Reversed
	slices.Reverse(e.BendPoints)
}

// SourceNode returns the node of the source port.
func (e *LEdge) SourceNode() *LNode { return e.Source.Node }

// TargetNode returns the node of the target port.
func (e *LEdge) TargetNode() *LNode { return e.Target.Node }

// Other returns the endpoint node of e that is not n.
func (e *LEdge) Other(n *LNode) *LNode {
	if e.Source.Node == n {
		return e.Target.Node
	}
	return e.Source.Node
}

// String identifies the edge in logs and errors.
func (e *LEdge) String() string {
	if e.Source == nil || e.Target == nil {
		return fmt.Sprintf("edge#%d(detached)", e.ID)
	}
	return fmt.Sprintf("%s->%s", e.Source.Node.Name, e.Target.Node.Name)
}

// =============================================================================
// Node Queries
// =============================================================================

// Incoming returns all edges entering n, in port order.
func (n *LNode) Incoming() []*LEdge {
	var out []*LEdge
	for _, p := range n.Ports {
		out = append(out, p.Incoming...)
	}
	return out
}

// Outgoing returns all edges leaving n, in port order.
func (n *LNode) Outgoing() []*LEdge {
	var out []*LEdge
	for _, p := range n.Ports {
		out = append(out, p.Outgoing...)
	}
	return out
}

// PortsOn returns n's ports on side s, in port order.
func (n *LNode) PortsOn(s PortSide) []*LPort {
	var out []*LPort
	for _, p := range n.Ports {
		if p.Side == s {
			out = append(out, p)
		}
	}
	return out
}

// IsDummy reports whether n was synthesized by the layout phases.
func (n *LNode) IsDummy() bool { return n.Kind != Normal }

// LayerIndex returns the index of n's layer, or -1 if n is not layered.
func (n *LNode) LayerIndex() int {
	if n.Layer == nil {
		return -1
	}
	return n.Layer.Index
}

// Center returns the center point of n.
func (n *LNode) Center() Vector {
	return Vector{n.Pos.X + n.Size.X/2, n.Pos.Y + n.Size.Y/2}
}

// Anchor returns the absolute position of port p's center.
func (p *LPort) Anchor() Vector {
	return Vector{p.Node.Pos.X + p.Pos.X + p.Size.X/2, p.Node.Pos.Y + p.Pos.Y + p.Size.Y/2}
}

// Degree returns the number of edges at p.
func (p *LPort) Degree() int { return len(p.Incoming) + len(p.Outgoing) }

// String identifies the node in logs and errors.
func (n *LNode) String() string { return n.Name }

// =============================================================================
// Iteration
// =============================================================================

// LiveNodes returns all nodes not marked removed.
func (g *LGraph) LiveNodes() []*LNode {
	out := make([]*LNode, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.Removed {
			out = append(out, n)
		}
	}
	return out
}

// LiveEdges returns all edges not marked removed.
func (g *LGraph) LiveEdges() []*LEdge {
	out := make([]*LEdge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if !e.Removed {
			out = append(out, e)
		}
	}
	return out
}

// LayerlessNodes returns live nodes without a layer.
func (g *LGraph) LayerlessNodes() []*LNode {
	var out []*LNode
	for _, n := range g.Nodes {
		if !n.Removed && n.Layer == nil {
			out = append(out, n)
		}
	}
	return out
}

// NodesOf returns the live nodes of the given kind.
func (g *LGraph) NodesOf(kind NodeKind) []*LNode {
	var out []*LNode
	for _, n := range g.Nodes {
		if !n.Removed && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Compact drops removed elements from the arenas and renumbers IDs.
func (g *LGraph) Compact() {
	g.Nodes = slices.DeleteFunc(g.Nodes, func(n *LNode) bool { return n.Removed })
	for i, n := range g.Nodes {
		n.ID = i
	}
	g.Ports = slices.DeleteFunc(g.Ports, func(p *LPort) bool { return p.Removed })
	for i, p := range g.Ports {
		p.ID = i
	}
	g.Edges = slices.DeleteFunc(g.Edges, func(e *LEdge) bool { return e.Removed })
	for i, e := range g.Edges {
		e.ID = i
	}
}

// =============================================================================
// Layers
// =============================================================================

// Layer returns the layer with index i, creating empty layers up to i.
func (g *LGraph) Layer(i int) *Layer {
	for len(g.Layers) <= i {
		g.Layers = append(g.Layers, &Layer{Index: len(g.Layers)})
	}
	return g.Layers[i]
}

// InsertLayer inserts an empty layer at index i and shifts later layers.
func (g *LGraph) InsertLayer(i int) *Layer {
	l := &Layer{}
	g.Layers = slices.Insert(g.Layers, i, l)
	g.ReindexLayers()
	return l
}

// AssignLayer appends n to layer i, moving it out of its previous layer.
func (g *LGraph) AssignLayer(n *LNode, i int) {
	if n.Layer != nil {
		n.Layer.Remove(n)
	}
	g.Layer(i).Append(n)
}

// ReindexLayers renumbers layers after insertion or removal.
func (g *LGraph) ReindexLayers() {
	for i, l := range g.Layers {
		l.Index = i
	}
}

// RemoveEmptyLayers drops layers without nodes.
func (g *LGraph) RemoveEmptyLayers() {
	g.Layers = slices.DeleteFunc(g.Layers, func(l *Layer) bool { return len(l.Nodes) == 0 })
	g.ReindexLayers()
}

// Order returns a copy of every layer's node order.
func (g *LGraph) Order() [][]*LNode {
	out := make([][]*LNode, len(g.Layers))
	for i, l := range g.Layers {
		out[i] = slices.Clone(l.Nodes)
	}
	return out
}

// SetOrder replaces every layer's node order. order must hold the same nodes
// per layer as the graph.
func (g *LGraph) SetOrder(order [][]*LNode) {
	for i, l := range g.Layers {
		l.Nodes = slices.Clone(order[i])
		l.Reindex()
	}
}

// Append adds n at the end of the layer.
func (l *Layer) Append(n *LNode) {
	n.Layer = l
	n.Index = len(l.Nodes)
	l.Nodes = append(l.Nodes, n)
}

// Insert adds n at position i.
func (l *Layer) Insert(n *LNode, i int) {
	n.Layer = l
	l.Nodes = slices.Insert(l.Nodes, i, n)
	l.Reindex()
}

// Remove takes n out of the layer.
func (l *Layer) Remove(n *LNode) {
	l.Nodes = slices.DeleteFunc(l.Nodes, func(x *LNode) bool { return x == n })
	n.Layer = nil
	l.Reindex()
}

// Reindex refreshes the Index field of every node in the layer.
func (l *Layer) Reindex() {
	for i, n := range l.Nodes {
		n.Index = i
	}
}

// =============================================================================
// Ports
// =============================================================================

// sideRank orders sides clockwise starting at north.
func sideRank(s PortSide) int {
	switch s {
	case North:
		return 0
	case East:
		return 1
	case South:
		return 2
	case West:
		return 3
	}
	return 4
}

// SortPorts orders n's ports clockwise: north left to right, east top to
// bottom, south right to left, west bottom to top.
func SortPorts(n *LNode) {
	slices.SortStableFunc(n.Ports, func(a, b *LPort) int {
		if ra, rb := sideRank(a.Side), sideRank(b.Side); ra != rb {
			return ra - rb
		}
		if a.Side == South || a.Side == West {
			return b.Index - a.Index
		}
		return a.Index - b.Index
	})
}

// ReindexSide renumbers the Index of n's ports on side s to 0..k-1 keeping
// their relative order.
func ReindexSide(n *LNode, s PortSide) {
	ports := n.PortsOn(s)
	slices.SortStableFunc(ports, func(a, b *LPort) int { return a.Index - b.Index })
	for i, p := range ports {
		p.Index = i
	}
}
