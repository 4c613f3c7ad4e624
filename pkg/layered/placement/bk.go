package placement

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// alignment identifies one of the four Brandes-Köpf candidate layouts.
// RIGHT candidates sweep from the first layer and align nodes with their
// predecessors, LEFT candidates sweep from the last layer and align with
// successors. DOWN candidates compact toward the top of each layer, UP
// candidates toward the bottom.
type alignment int

const (
	rightDown alignment = iota
	rightUp
	leftDown
	leftUp
)

func (a alignment) forward() bool  { return a == rightDown || a == rightUp }
func (a alignment) mirrored() bool { return a == rightUp || a == leftUp }

func alignmentOf(f options.FixedAlignment) (alignment, bool) {
	switch f {
	case options.AlignmentRightDown:
		return rightDown, true
	case options.AlignmentRightUp:
		return rightUp, true
	case options.AlignmentLeftDown:
		return leftDown, true
	case options.AlignmentLeftUp:
		return leftUp, true
	}
	return 0, false
}

// brandesKoepf places nodes after Brandes and Köpf, "Fast and Simple
// Horizontal Coordinate Assignment". Nodes are aligned into blocks with a
// median neighbour in four directions, each block is compacted, and the
// four candidates are combined. Edges between aligned nodes run straight
// because blocks are aligned on the ports their edges use.
type brandesKoepf struct {
	fixed     options.FixedAlignment
	selection options.BKSelection
}

// candidate is the y position per node ID of one alignment, nil where the
// alignment could not be compacted.
type candidate []float64

func (bk *brandesKoepf) place(ctx context.Context, g *lgraph.LGraph, sp spacer) error {
	layers := g.Order()
	if len(layers) == 0 {
		return nil
	}
	conflicts := markConflicts(layers)

	var cands [4]candidate
	for a := rightDown; a <= leftUp; a++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cands[a] = bk.compute(g, layers, a, conflicts, sp)
	}

	ys := bk.choose(g, layers, cands, sp)
	for _, l := range layers {
		for _, n := range l {
			n.Pos.Y = ys[n.ID]
		}
	}
	return nil
}

// =============================================================================
// Type 1 Conflicts
// =============================================================================

// innerKind reports whether n belongs to a chain whose segments should be
// kept straight in preference to others.
func innerKind(n *lgraph.LNode) bool {
	return n.Kind.IsChainMember() || n.Kind == lgraph.BigNode || n.Chunk > 0
}

// predecessors returns the distinct nodes in the previous layer with an edge
// into n.
func predecessors(n *lgraph.LNode) []*lgraph.LNode {
	return neighbours(n, true)
}

func neighbours(n *lgraph.LNode, west bool) []*lgraph.LNode {
	var out []*lgraph.LNode
	want := n.LayerIndex() + 1
	if west {
		want = n.LayerIndex() - 1
	}
	for _, p := range n.Ports {
		edges := p.Outgoing
		if west {
			edges = p.Incoming
		}
		for _, e := range edges {
			o := e.Other(n)
			if e.SelfLoop || o == nil || o.LayerIndex() != want || slices.Contains(out, o) {
				continue
			}
			out = append(out, o)
		}
	}
	return out
}

func conflictKey(a, b *lgraph.LNode) [2]int {
	return [2]int{min(a.ID, b.ID), max(a.ID, b.ID)}
}

// markConflicts finds type 1 conflicts: non-inner segments crossing an
// inner segment between two chain nodes. Those segments must not be
// aligned so that the chains stay straight.
func markConflicts(layers [][]*lgraph.LNode) map[[2]int]bool {
	conflicts := map[[2]int]bool{}
	for i := 1; i < len(layers); i++ {
		prev, layer := layers[i-1], layers[i]
		k0, scan := 0, 0
		for l, v := range layer {
			var w *lgraph.LNode
			if innerKind(v) {
				for _, u := range predecessors(v) {
					if innerKind(u) {
						w = u
						break
					}
				}
			}
			k1 := len(prev)
			if w != nil {
				k1 = w.Index
			}
			if w == nil && l != len(layer)-1 {
				continue
			}
			for _, s := range layer[scan : l+1] {
				for _, u := range predecessors(s) {
					if (u.Index < k0 || k1 < u.Index) && !(innerKind(u) && innerKind(s)) {
						conflicts[conflictKey(u, s)] = true
					}
				}
			}
			scan, k0 = l+1, k1
		}
	}
	return conflicts
}

// =============================================================================
// Alignment and Compaction
// =============================================================================

type bkState struct {
	a       alignment
	sp      spacer
	pos     []int // position within the adjusted layer, by node ID
	root    []int
	align   []int
	link    []*lgraph.LEdge // edge to the previous block member
	shift   []float64
	nodes   []*lgraph.LNode // by node ID
	layered [][]*lgraph.LNode
}

// compute runs alignment and compaction for one direction and returns the
// resulting positions in the real frame.
func (bk *brandesKoepf) compute(g *lgraph.LGraph, layers [][]*lgraph.LNode, a alignment,
	conflicts map[[2]int]bool, sp spacer) candidate {
	n := len(g.Nodes)
	st := &bkState{
		a:     a,
		sp:    sp,
		pos:   make([]int, n),
		root:  make([]int, n),
		align: make([]int, n),
		link:  make([]*lgraph.LEdge, n),
		shift: make([]float64, n),
		nodes: g.Nodes,
	}

	// Adjusted layering: layer order reversed for LEFT, in-layer order
	// reversed for UP.
	for _, l := range layers {
		l = slices.Clone(l)
		if a.mirrored() {
			slices.Reverse(l)
		}
		st.layered = append(st.layered, l)
	}
	if !a.forward() {
		slices.Reverse(st.layered)
	}
	for _, l := range st.layered {
		for i, v := range l {
			st.pos[v.ID] = i
			st.root[v.ID] = v.ID
			st.align[v.ID] = v.ID
		}
	}

	st.verticalAlignment(conflicts)
	st.innerShifts()
	ys, ok := st.compact()
	if !ok {
		return nil
	}

	out := make(candidate, n)
	for _, l := range layers {
		for _, v := range l {
			y := ys[st.root[v.ID]] + st.shift[v.ID]
			if a.mirrored() {
				y = -y - v.Size.Y
			}
			out[v.ID] = y
		}
	}
	return out
}

// verticalAlignment links every node with its median neighbour in the
// previous adjusted layer unless that would cross an earlier alignment or a
// marked conflict.
func (st *bkState) verticalAlignment(conflicts map[[2]int]bool) {
	west := st.a.forward()
	for _, l := range st.layered {
		prevIdx := -1
		for _, v := range l {
			ws := neighbours(v, west)
			if len(ws) == 0 {
				continue
			}
			slices.SortFunc(ws, func(x, y *lgraph.LNode) int { return cmp.Compare(st.pos[x.ID], st.pos[y.ID]) })
			mp := float64(len(ws)-1) / 2
			for i := int(math.Floor(mp)); i <= int(math.Ceil(mp)); i++ {
				w := ws[i]
				if st.align[v.ID] != v.ID || prevIdx >= st.pos[w.ID] || conflicts[conflictKey(v, w)] {
					continue
				}
				st.align[w.ID] = v.ID
				st.root[v.ID] = st.root[w.ID]
				st.align[v.ID] = st.root[v.ID]
				st.link[v.ID] = connecting(w, v)
				prevIdx = st.pos[w.ID]
			}
		}
	}
}

// connecting returns an edge between a and b.
func connecting(a, b *lgraph.LNode) *lgraph.LEdge {
	for _, p := range a.Ports {
		for _, e := range p.Outgoing {
			if e.Target.Node == b {
				return e
			}
		}
		for _, e := range p.Incoming {
			if e.Source.Node == b {
				return e
			}
		}
	}
	return nil
}

// portY returns the in-layer offset of p's center within its node, in the
// frame of the current alignment.
func (st *bkState) portY(p *lgraph.LPort) float64 {
	c := p.Pos.Y + p.Size.Y/2
	if st.a.mirrored() {
		return p.Node.Size.Y - c
	}
	return c
}

// innerShifts offsets every block member relative to the block root so
// that the ports joining consecutive members line up.
func (st *bkState) innerShifts() {
	for _, l := range st.layered {
		for _, v := range l {
			if st.root[v.ID] != v.ID {
				continue
			}
			cur := v.ID
			for next := st.align[cur]; next != v.ID; cur, next = next, st.align[next] {
				e := st.link[next]
				if e == nil {
					continue
				}
				pc, pn := e.Source, e.Target
				if pc.Node.ID != cur {
					pc, pn = pn, pc
				}
				st.shift[next] = st.shift[cur] + st.portY(pc) - st.portY(pn)
			}
		}
	}
}

// gap is the minimal distance between the positions of u and v when u
// directly precedes v in the adjusted layer.
func (st *bkState) gap(u, v *lgraph.LNode) float64 {
	if !st.a.mirrored() {
		return st.sp.minGap(u, v)
	}
	return u.Size.Y + u.Margin.Top + st.sp.between(u, v) + v.Margin.Bottom
}

// compact places blocks as close to the start of their layers as the
// separation constraints allow, then pulls blocks toward their successors
// where there is slack. Returns positions per root ID; ok is false if the
// block graph is cyclic.
func (st *bkState) compact() ([]float64, bool) {
	type arc struct {
		to int
		w  float64
	}
	out := map[int][]arc{}
	in := map[int][]arc{}
	weights := map[[2]int]float64{}
	roots := map[int]bool{}
	for _, l := range st.layered {
		for j, v := range l {
			roots[st.root[v.ID]] = true
			if j == 0 {
				continue
			}
			u := l[j-1]
			ru, rv := st.root[u.ID], st.root[v.ID]
			w := st.shift[u.ID] + st.gap(u, v) - st.shift[v.ID]
			key := [2]int{ru, rv}
			if old, ok := weights[key]; !ok || w > old {
				weights[key] = w
			}
		}
	}
	for key, w := range weights {
		out[key[0]] = append(out[key[0]], arc{key[1], w})
		in[key[1]] = append(in[key[1]], arc{key[0], w})
	}

	ids := make([]int, 0, len(roots))
	for r := range roots {
		ids = append(ids, r)
	}
	slices.Sort(ids)
	indeg := map[int]int{}
	for _, r := range ids {
		indeg[r] = len(in[r])
	}
	var order []int
	for _, r := range ids {
		if indeg[r] == 0 {
			order = append(order, r)
		}
	}
	for i := 0; i < len(order); i++ {
		for _, a := range out[order[i]] {
			if indeg[a.to]--; indeg[a.to] == 0 {
				order = append(order, a.to)
			}
		}
	}
	if len(order) != len(ids) {
		return nil, false
	}

	ys := make([]float64, len(st.nodes))
	for _, r := range order {
		y := 0.0
		for i, a := range in[r] {
			if i == 0 || ys[a.to]+a.w > y {
				y = ys[a.to] + a.w
			}
		}
		ys[r] = y
	}
	for i := len(order) - 1; i >= 0; i-- {
		r := order[i]
		if len(out[r]) == 0 {
			continue
		}
		lim := math.Inf(1)
		for _, a := range out[r] {
			lim = min(lim, ys[a.to]-a.w)
		}
		ys[r] = max(ys[r], lim)
	}
	return ys, true
}

// =============================================================================
// Selection
// =============================================================================

func extent(layers [][]*lgraph.LNode, c candidate) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, l := range layers {
		for _, n := range l {
			lo = min(lo, c[n.ID]+top(n))
			hi = max(hi, c[n.ID]+bottom(n))
		}
	}
	return lo, hi
}

func valid(layers [][]*lgraph.LNode, c candidate, sp spacer) bool {
	if c == nil {
		return false
	}
	for _, l := range layers {
		for i := 0; i+1 < len(l); i++ {
			if c[l[i+1].ID]-c[l[i].ID] < sp.minGap(l[i], l[i+1])-eps {
				return false
			}
		}
	}
	return true
}

// choose combines the candidates. Candidates are first aligned to the
// narrowest one: DOWN candidates on its top, UP candidates on its bottom.
// A fixed alignment wins if it is valid; otherwise the balanced layout (the
// mean of the two median candidates per node) or the narrowest layout is
// used, as selected. An invalid result falls back to the narrowest valid
// candidate and finally to the first one computed.
func (bk *brandesKoepf) choose(g *lgraph.LGraph, layers [][]*lgraph.LNode, cands [4]candidate, sp spacer) candidate {
	smallest := -1
	best := math.Inf(1)
	for a, c := range cands {
		if c == nil {
			continue
		}
		lo, hi := extent(layers, c)
		if hi-lo < best {
			best, smallest = hi-lo, a
		}
	}
	if smallest < 0 {
		// No candidate could be compacted; stack the layers instead.
		_ = simple{}.place(context.Background(), g, sp)
		out := make(candidate, len(g.Nodes))
		for _, l := range layers {
			for _, n := range l {
				out[n.ID] = n.Pos.Y
			}
		}
		return out
	}

	refLo, refHi := extent(layers, cands[smallest])
	for a, c := range cands {
		if c == nil || a == smallest {
			continue
		}
		lo, hi := extent(layers, c)
		delta := refLo - lo
		if alignment(a).mirrored() {
			delta = refHi - hi
		}
		for _, l := range layers {
			for _, n := range l {
				c[n.ID] += delta
			}
		}
	}

	if a, ok := alignmentOf(bk.fixed); ok && valid(layers, cands[a], sp) {
		return cands[a]
	}

	var result candidate
	if bk.selection == options.SelectionSmallestWidth && bk.fixed != options.AlignmentBalanced {
		result = cands[smallest]
	} else {
		result = balance(g, layers, cands)
	}
	if valid(layers, result, sp) {
		return result
	}

	fallback := -1
	best = math.Inf(1)
	for a, c := range cands {
		if !valid(layers, c, sp) {
			continue
		}
		lo, hi := extent(layers, c)
		if hi-lo < best {
			best, fallback = hi-lo, a
		}
	}
	if fallback >= 0 {
		return cands[fallback]
	}
	for _, c := range cands {
		if c != nil {
			return c
		}
	}
	return result
}

// balance averages the two median candidate positions of every node.
func balance(g *lgraph.LGraph, layers [][]*lgraph.LNode, cands [4]candidate) candidate {
	out := make(candidate, len(g.Nodes))
	vals := make([]float64, 0, 4)
	for _, l := range layers {
		for _, n := range l {
			vals = vals[:0]
			for _, c := range cands {
				if c != nil {
					vals = append(vals, c[n.ID])
				}
			}
			slices.Sort(vals)
			k := len(vals)
			if k%2 == 1 {
				out[n.ID] = vals[k/2]
			} else {
				out[n.ID] = (vals[k/2-1] + vals[k/2]) / 2
			}
		}
	}
	return out
}
