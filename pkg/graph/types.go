package graph

import (
	"errors"
)

// =============================================================================
// Constants
// =============================================================================

// Port sides as they appear in serialized graphs.
const (
	SideNorth = "NORTH"
	SideEast  = "EAST"
	SideSouth = "SOUTH"
	SideWest  = "WEST"
)

// Sentinel errors returned by [Validate] and the readers.
var (
	ErrDuplicateID     = errors.New("duplicate element id")
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")
	ErrInvalidEdge     = errors.New("invalid edge")
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in the coordinate system of the element's container.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Section is the drawable geometry of an edge: a polyline from Start over
// BendPoints to End.
type Section struct {
	Start      Point   `json:"start" yaml:"start"`
	End        Point   `json:"end" yaml:"end"`
	BendPoints []Point `json:"bendPoints,omitempty" yaml:"bendPoints,omitempty"`
}

// Properties holds layout options keyed by option id. Values are whatever the
// decoder produced (float64, string, bool, []any); package options converts
// them into typed values.
type Properties map[string]any

// =============================================================================
// Elements
// =============================================================================

// Label is a text label attached to a node, port, or edge.
type Label struct {
	ID         string     `json:"id,omitempty" yaml:"id,omitempty"`
	Text       string     `json:"text,omitempty" yaml:"text,omitempty"`
	X          float64    `json:"x,omitempty" yaml:"x,omitempty"`
	Y          float64    `json:"y,omitempty" yaml:"y,omitempty"`
	Width      float64    `json:"width,omitempty" yaml:"width,omitempty"`
	Height     float64    `json:"height,omitempty" yaml:"height,omitempty"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Port is a connection point on the border of a node. X and Y are relative to
// the node's top-left corner.
type Port struct {
	ID         string     `json:"id" yaml:"id"`
	X          float64    `json:"x,omitempty" yaml:"x,omitempty"`
	Y          float64    `json:"y,omitempty" yaml:"y,omitempty"`
	Width      float64    `json:"width,omitempty" yaml:"width,omitempty"`
	Height     float64    `json:"height,omitempty" yaml:"height,omitempty"`
	Side       string     `json:"side,omitempty" yaml:"side,omitempty"`
	Labels     []*Label   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Node is a graph node. A node with children is a compound node whose
// children are laid out as an independent graph; Edges lists the edges
// contained in this node, so the root node owns the top-level edges.
//
// X and Y are relative to the parent's top-left corner.
type Node struct {
	ID         string     `json:"id" yaml:"id"`
	X          float64    `json:"x,omitempty" yaml:"x,omitempty"`
	Y          float64    `json:"y,omitempty" yaml:"y,omitempty"`
	Width      float64    `json:"width,omitempty" yaml:"width,omitempty"`
	Height     float64    `json:"height,omitempty" yaml:"height,omitempty"`
	Labels     []*Label   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Ports      []*Port    `json:"ports,omitempty" yaml:"ports,omitempty"`
	Children   []*Node    `json:"children,omitempty" yaml:"children,omitempty"`
	Edges      []*Edge    `json:"edges,omitempty" yaml:"edges,omitempty"`
	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// IsCompound reports whether n has children.
func (n *Node) IsCompound() bool { return len(n.Children) > 0 }

// Port returns the port with the given id, or nil.
func (n *Node) Port(id string) *Port {
	for _, p := range n.Ports {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Edge is a directed edge. Sources and Targets hold node or port ids; the
// layout engine supports exactly one of each. Coordinates in Sections and
// JunctionPoints are relative to the node that contains the edge.
type Edge struct {
	ID             string     `json:"id" yaml:"id"`
	Sources        []string   `json:"sources" yaml:"sources"`
	Targets        []string   `json:"targets" yaml:"targets"`
	Labels         []*Label   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Sections       []Section  `json:"sections,omitempty" yaml:"sections,omitempty"`
	JunctionPoints []Point    `json:"junctionPoints,omitempty" yaml:"junctionPoints,omitempty"`
	Properties     Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Source returns the single source id, or "" when the edge is malformed.
func (e *Edge) Source() string {
	if len(e.Sources) != 1 {
		return ""
	}
	return e.Sources[0]
}

// Target returns the single target id, or "" when the edge is malformed.
func (e *Edge) Target() string {
	if len(e.Targets) != 1 {
		return ""
	}
	return e.Targets[0]
}
