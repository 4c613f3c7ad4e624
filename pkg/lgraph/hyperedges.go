package lgraph

import (
	"cmp"
	"slices"
)

// Hyperedge is a maximal set of edges between two adjacent layers that are
// connected through shared ports.
type Hyperedge struct {
	Edges []*LEdge
	Ports []*LPort

	// Bounding positions on the left and right layer, set by the counter.
	upperLeft, lowerLeft   int
	upperRight, lowerRight int
}

// Hyperedges groups the edges running from left into layer right. Groups
// are computed on demand and never stored on the graph. Order follows the
// first edge of each group in left-to-right port order.
func Hyperedges(left []*LNode, right *Layer) []*Hyperedge {
	return groupHyperedges(crossingEdges(left, right))
}

func groupHyperedges(edges []*LEdge) []*Hyperedge {
	byPort := map[*LPort]*Hyperedge{}
	var groups []*Hyperedge
	for _, e := range edges {
		src, dst := byPort[e.Source], byPort[e.Target]
		switch {
		case src == nil && dst == nil:
			h := &Hyperedge{Edges: []*LEdge{e}, Ports: []*LPort{e.Source, e.Target}}
			groups = append(groups, h)
			byPort[e.Source], byPort[e.Target] = h, h
		case src == nil:
			dst.Edges = append(dst.Edges, e)
			dst.Ports = append(dst.Ports, e.Source)
			byPort[e.Source] = dst
		case dst == nil:
			src.Edges = append(src.Edges, e)
			src.Ports = append(src.Ports, e.Target)
			byPort[e.Target] = src
		case src == dst:
			src.Edges = append(src.Edges, e)
		default:
			src.Edges = append(src.Edges, e)
			src.Edges = append(src.Edges, dst.Edges...)
			src.Ports = append(src.Ports, dst.Ports...)
			for _, p := range dst.Ports {
				byPort[p] = src
			}
			groups = slices.DeleteFunc(groups, func(h *Hyperedge) bool { return h == dst })
		}
	}
	return groups
}

type corner struct {
	hyperedge int
	pos       int
	opposite  int
	lower     bool
}

// hyperedgeCrossings approximates crossings between hyperedges: straight
// crossings of their topmost branches plus overlaps of their spans on each
// side.
func (c *Counter) hyperedgeCrossings(edges []*LEdge, leftCount, rightCount int) int {
	groups := groupHyperedges(edges)
	if len(groups) == 0 {
		return 0
	}
	rightLayer := edges[0].Target.Node.Layer

	for _, h := range groups {
		h.upperLeft, h.upperRight = leftCount, rightCount
		h.lowerLeft, h.lowerRight = 0, 0
		for _, p := range h.Ports {
			pos := c.pos[p.ID]
			if p.Node.Layer == rightLayer {
				h.upperRight = min(h.upperRight, pos)
				h.lowerRight = max(h.lowerRight, pos)
			} else {
				h.upperLeft = min(h.upperLeft, pos)
				h.lowerLeft = max(h.lowerLeft, pos)
			}
		}
	}
	slices.SortStableFunc(groups, func(a, b *Hyperedge) int {
		if a.upperLeft != b.upperLeft {
			return a.upperLeft - b.upperLeft
		}
		return a.upperRight - b.upperRight
	})

	seq := make([]int, len(groups))
	for i, h := range groups {
		seq[i] = h.upperRight
	}
	crossings := c.inversions(seq, rightCount)

	leftCorners := make([]corner, 0, 2*len(groups))
	rightCorners := make([]corner, 0, 2*len(groups))
	for i, h := range groups {
		leftCorners = append(leftCorners,
			corner{i, h.upperLeft, h.lowerLeft, false},
			corner{i, h.lowerLeft, h.upperLeft, true})
		rightCorners = append(rightCorners,
			corner{i, h.upperRight, h.lowerRight, false},
			corner{i, h.lowerRight, h.upperRight, true})
	}
	crossings += sweepCorners(leftCorners)
	crossings += sweepCorners(rightCorners)
	return crossings
}

// sweepCorners counts, for every hyperedge span that closes, the spans still
// open at that point.
func sweepCorners(corners []corner) int {
	slices.SortFunc(corners, func(a, b corner) int {
		if a.pos != b.pos {
			return cmp.Compare(a.pos, b.pos)
		}
		if a.opposite != b.opposite {
			return cmp.Compare(a.opposite, b.opposite)
		}
		if a.hyperedge != b.hyperedge {
			return cmp.Compare(a.hyperedge, b.hyperedge)
		}
		if a.lower == b.lower {
			return 0
		}
		if !a.lower {
			return -1
		}
		return 1
	})
	open, crossings := 0, 0
	for _, k := range corners {
		if k.lower {
			open--
			crossings += open
		} else {
			open++
		}
	}
	return crossings
}
