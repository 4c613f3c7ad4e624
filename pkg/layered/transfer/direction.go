package transfer

import (
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Layout runs internally in direction RIGHT. frame maps rectangles between
// the internal frame and the requested direction, relative to a container
// of the given size.
type frame struct {
	dir options.Direction
}

// out maps an internal rectangle inside a container of internal size c to
// the output frame.
func (f frame) out(pos, size, c lgraph.Vector) (lgraph.Vector, lgraph.Vector) {
	switch f.dir {
	case options.DirectionLeft:
		return lgraph.Vector{X: c.X - pos.X - size.X, Y: pos.Y}, size
	case options.DirectionDown:
		return lgraph.Vector{X: pos.Y, Y: pos.X}, lgraph.Vector{X: size.Y, Y: size.X}
	case options.DirectionUp:
		return lgraph.Vector{X: pos.Y, Y: c.X - pos.X - size.X}, lgraph.Vector{X: size.Y, Y: size.X}
	}
	return pos, size
}

// in maps a rectangle of the input frame inside a container of input size c
// to the internal frame.
func (f frame) in(pos, size, c lgraph.Vector) (lgraph.Vector, lgraph.Vector) {
	switch f.dir {
	case options.DirectionLeft:
		return lgraph.Vector{X: c.X - pos.X - size.X, Y: pos.Y}, size
	case options.DirectionDown:
		return lgraph.Vector{X: pos.Y, Y: pos.X}, lgraph.Vector{X: size.Y, Y: size.X}
	case options.DirectionUp:
		return lgraph.Vector{X: c.Y - pos.Y - size.Y, Y: pos.X}, lgraph.Vector{X: size.Y, Y: size.X}
	}
	return pos, size
}

func (f frame) size(v lgraph.Vector) lgraph.Vector {
	if f.dir.Horizontal() || f.dir == "" {
		return v
	}
	return lgraph.Vector{X: v.Y, Y: v.X}
}

func (f frame) outSide(s lgraph.PortSide) lgraph.PortSide {
	switch f.dir {
	case options.DirectionLeft:
		if s == lgraph.East || s == lgraph.West {
			return s.Opposite()
		}
	case options.DirectionDown:
		return transpose(s)
	case options.DirectionUp:
		switch s {
		case lgraph.West:
			return lgraph.South
		case lgraph.East:
			return lgraph.North
		}
		return transpose(s)
	}
	return s
}

func (f frame) inSide(s lgraph.PortSide) lgraph.PortSide {
	switch f.dir {
	case options.DirectionLeft, options.DirectionDown:
		return f.outSide(s)
	case options.DirectionUp:
		switch s {
		case lgraph.South:
			return lgraph.West
		case lgraph.North:
			return lgraph.East
		}
		return transpose(s)
	}
	return s
}

// transpose swaps the roles of the axes: west and north, east and south.
func transpose(s lgraph.PortSide) lgraph.PortSide {
	switch s {
	case lgraph.West:
		return lgraph.North
	case lgraph.North:
		return lgraph.West
	case lgraph.East:
		return lgraph.South
	case lgraph.South:
		return lgraph.East
	}
	return s
}

// Transform moves a routed layout graph from the internal RIGHT frame into
// direction dir. Node, port, bend point, junction point, and edge label
// coordinates are rewritten together with the graph size.
func Transform(g *lgraph.LGraph, dir options.Direction) {
	f := frame{dir}
	if dir == options.DirectionRight || dir == "" {
		return
	}
	c := g.Size
	point := func(v lgraph.Vector) lgraph.Vector {
		p, _ := f.out(v, lgraph.Vector{}, c)
		return p
	}
	for _, n := range g.LiveNodes() {
		inner := n.Size
		for _, p := range n.Ports {
			p.Pos, p.Size = f.out(p.Pos, p.Size, inner)
			p.Side = f.outSide(p.Side)
		}
		n.Pos, n.Size = f.out(n.Pos, n.Size, c)
		n.ExternalSide = f.outSide(n.ExternalSide)
		n.Margin = f.margin(n.Margin)
	}
	for _, e := range g.LiveEdges() {
		for i, b := range e.BendPoints {
			e.BendPoints[i] = point(b)
		}
		for i, j := range e.JunctionPoints {
			e.JunctionPoints[i] = point(j)
		}
		for _, l := range e.Labels {
			l.Pos, l.Size = f.out(l.Pos, l.Size, c)
		}
	}
	g.Size = f.size(c)
}

func (f frame) margin(m lgraph.Margin) lgraph.Margin {
	switch f.dir {
	case options.DirectionLeft:
		return lgraph.Margin{Top: m.Top, Right: m.Left, Bottom: m.Bottom, Left: m.Right}
	case options.DirectionDown:
		return lgraph.Margin{Top: m.Left, Right: m.Bottom, Bottom: m.Right, Left: m.Top}
	case options.DirectionUp:
		return lgraph.Margin{Top: m.Right, Right: m.Bottom, Bottom: m.Left, Left: m.Top}
	}
	return m
}
