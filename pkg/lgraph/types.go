package lgraph

import (
	"math"

	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// NodeKind distinguishes original nodes from the synthetic nodes inserted by
// the layout phases.
type NodeKind int

const (
	// Normal represents a node of the input graph.
	Normal NodeKind = iota
	// LongEdge is one link of a dummy chain that carries an edge across a layer.
	LongEdge
	// NorthSouthPort stands in for a port on the north or south side of its
	// Owner, in the Owner's layer.
	NorthSouthPort
	// BigNode is a chunk of a wide node split across consecutive layers.
	BigNode
	// Label reserves room for the center labels of an edge.
	Label
	// ExternalPort represents a port of the compound node that contains the graph.
	ExternalPort
)

var kindNames = [...]string{"NORMAL", "LONG_EDGE", "NORTH_SOUTH_PORT", "BIG_NODE", "LABEL", "EXTERNAL_PORT"}

// String returns the upper-case name of the kind.
func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsChainMember reports whether nodes of this kind are links of an edge's
// dummy chain and disappear when long edges are joined.
func (k NodeKind) IsChainMember() bool { return k == LongEdge || k == Label }

// PortSide is the side of a node a port sits on.
type PortSide int

const (
	SideUndefined PortSide = iota
	North
	East
	South
	West
)

// String returns the side name used in serialized graphs.
func (s PortSide) String() string {
	switch s {
	case North:
		return graph.SideNorth
	case East:
		return graph.SideEast
	case South:
		return graph.SideSouth
	case West:
		return graph.SideWest
	}
	return "UNDEFINED"
}

// Opposite returns the side facing s.
func (s PortSide) Opposite() PortSide {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return SideUndefined
}

// ParseSide converts a serialized side name; unknown names yield SideUndefined.
func ParseSide(s string) PortSide {
	switch s {
	case graph.SideNorth:
		return North
	case graph.SideEast:
		return East
	case graph.SideSouth:
		return South
	case graph.SideWest:
		return West
	}
	return SideUndefined
}

// Vector is a point or a size.
type Vector struct {
	X, Y float64
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Dist returns the euclidean distance between v and o.
func (v Vector) Dist(o Vector) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Margin is extra space reserved around a node (labels, self-loops).
type Margin struct {
	Top, Right, Bottom, Left float64
}

// LLabel is a label attached to a node or edge.
type LLabel struct {
	Origin    *graph.Label
	Pos       Vector
	Size      Vector
	Placement options.LabelPlacement
}

// Layer is an ordered rank of nodes. The order of Nodes is the decision
// variable of crossing minimization; nodes are moved, never copied.
type Layer struct {
	Index int
	Nodes []*LNode

	// X and Width are set by node placement (internal direction RIGHT).
	X     float64
	Width float64
}

// LNode is a node of the layout graph: an input node or a dummy.
type LNode struct {
	ID      int
	Kind    NodeKind
	Name    string
	Pos     Vector // top-left corner
	Size    Vector
	Margin  Margin
	Layer   *Layer
	Ports   []*LPort
	Labels  []*LLabel
	Origin  *graph.Node
	Removed bool

	// Index is the node's position within its layer. It is kept current by
	// [Layer.Reindex] and by the ordering phase for its working arrays.
	Index int

	// Resolved per-node options.
	LayerConstraint options.LayerConstraint
	Partition       int
	InLayer         options.InLayerConstraint
	PortConstraints options.PortConstraints
	Interactive     *graph.Point
	Fixed           bool

	// Dummy bookkeeping.
	OriginEdge   *LEdge      // chain members: the edge the chain replaces
	Owner        *LNode      // north/south dummies and big-node chunks: the real node
	Chunk        int         // big-node chunks: 1-based chunk number
	OriginWidth  float64     // big-node heads: width before splitting
	ExternalSide PortSide    // external port dummies: side on the compound node
	OriginPort   *graph.Port // external port dummies: the compound node's port, if any
}

// LPort is a connection point of a node. Pos is relative to the node.
type LPort struct {
	ID       int
	Node     *LNode
	Side     PortSide
	Pos      Vector
	Size     Vector
	Index    int // order along the side: top to bottom on E/W, left to right on N/S
	Incoming []*LEdge
	Outgoing []*LEdge
	Origin   *graph.Port
	Removed  bool

	// Dummy is the north/south port dummy that represents this port in the
	// owner's layer, if any.
	Dummy *LNode
}

// LEdge is a directed edge between two ports.
type LEdge struct {
	ID             int
	Source, Target *LPort
	Reversed       bool
	BendPoints     []Vector
	JunctionPoints []Vector
	Labels         []*LLabel
	Priority       int
	Origin         *graph.Edge
	SelfLoop       bool
	Virtual        bool // constraint edges that never reach the output
	Removed        bool
}
