package layering

import (
	"context"
	"math"
	"slices"
)

// iterFactor scales the pivot budget of network simplex:
// thoroughness * iterFactor * sqrt(vertices).
const iterFactor = 4

// simplex minimizes the total weighted edge length with the network simplex
// method of Gansner et al. It runs per connected component; each component
// starts at layer 0. Reaching the pivot budget keeps the current, feasible
// layering and reports converged == false.
type simplex struct {
	thoroughness int
}

func (s simplex) layers(ctx context.Context, net *network) ([]int, bool, error) {
	layer := make([]int, net.n)
	if err := net.relax(layer); err != nil {
		return nil, false, err
	}
	converged := true
	st := newSimplexState(net, layer)
	for _, comp := range net.components() {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		limit := max(1, s.thoroughness) * iterFactor * int(math.Ceil(math.Sqrt(float64(len(comp)))))
		if !st.solve(comp, limit) {
			converged = false
		}
		lo := math.MaxInt
		for _, v := range comp {
			lo = min(lo, layer[v])
		}
		for _, v := range comp {
			layer[v] -= lo
		}
	}
	balance(net, layer)
	return layer, converged, nil
}

type simplexState struct {
	net       *network
	rank      []int
	tree      []bool // per arc
	cut       []int  // per arc, valid for tree arcs
	parent    []int  // per vertex, -1 at the root
	parentArc []int
	low, lim  []int
	inTree    []bool // per vertex, during tree construction
}

func newSimplexState(net *network, rank []int) *simplexState {
	return &simplexState{
		net:       net,
		rank:      rank,
		tree:      make([]bool, len(net.arcs)),
		cut:       make([]int, len(net.arcs)),
		parent:    make([]int, net.n),
		parentArc: make([]int, net.n),
		low:       make([]int, net.n),
		lim:       make([]int, net.n),
		inTree:    make([]bool, net.n),
	}
}

func (s *simplexState) slack(ai int) int {
	a := s.net.arcs[ai]
	return s.rank[a.to] - s.rank[a.from] - a.minLen
}

func (s *simplexState) incident(v int) []int {
	return append(slices.Clone(s.net.out[v]), s.net.in[v]...)
}

// solve runs the simplex on one component and reports whether it reached an
// optimum within limit pivots.
func (s *simplexState) solve(comp []int, limit int) bool {
	if len(comp) < 2 {
		return true
	}
	root := comp[0]
	s.feasibleTree(comp, root)
	s.lowLim(root)
	s.cutValues(comp)

	arcs := s.componentArcs(comp)
	for iter := 0; ; iter++ {
		leave := -1
		for _, ai := range arcs {
			if s.tree[ai] && s.cut[ai] < 0 {
				leave = ai
				break
			}
		}
		if leave < 0 {
			return true
		}
		if iter >= limit {
			return false
		}
		enter := s.enterArc(leave, arcs)
		if enter < 0 {
			return true
		}
		s.tree[leave] = false
		s.tree[enter] = true
		s.lowLim(root)
		s.cutValues(comp)
		s.updateRanks(root)
	}
}

func (s *simplexState) componentArcs(comp []int) []int {
	var out []int
	for _, v := range comp {
		out = append(out, s.net.out[v]...)
	}
	slices.Sort(out)
	return out
}

// feasibleTree grows a spanning tree of tight arcs, shifting the tree's
// ranks to make the cheapest incident arc tight whenever it gets stuck.
func (s *simplexState) feasibleTree(comp []int, root int) {
	s.inTree[root] = true
	size := 1
	var grow func(v int)
	grow = func(v int) {
		for _, ai := range s.incident(v) {
			a := s.net.arcs[ai]
			w := a.to
			if w == v {
				w = a.from
			}
			if !s.inTree[w] && s.slack(ai) == 0 {
				s.inTree[w] = true
				s.tree[ai] = true
				size++
				grow(w)
			}
		}
	}
	for {
		for _, v := range comp {
			if s.inTree[v] {
				grow(v)
			}
		}
		if size >= len(comp) {
			return
		}
		best, bestSlack := -1, math.MaxInt
		for _, v := range comp {
			for _, ai := range s.net.out[v] {
				a := s.net.arcs[ai]
				if s.inTree[a.from] != s.inTree[a.to] && s.slack(ai) < bestSlack {
					best, bestSlack = ai, s.slack(ai)
				}
			}
		}
		delta := bestSlack
		if !s.inTree[s.net.arcs[best].from] {
			delta = -delta
		}
		for _, v := range comp {
			if s.inTree[v] {
				s.rank[v] += delta
			}
		}
	}
}

// lowLim numbers the tree in postorder: lim is the vertex's own number and
// low the smallest number in its subtree.
func (s *simplexState) lowLim(root int) {
	next := 1
	var dfs func(v, parent, via int)
	dfs = func(v, parent, via int) {
		low := next
		s.parent[v], s.parentArc[v] = parent, via
		for _, ai := range s.incident(v) {
			if !s.tree[ai] || ai == via {
				continue
			}
			a := s.net.arcs[ai]
			w := a.to
			if w == v {
				w = a.from
			}
			dfs(w, v, ai)
		}
		s.low[v] = low
		s.lim[v] = next
		next++
	}
	dfs(root, -1, -1)
}

// cutValues computes the cut value of every tree arc, children first.
func (s *simplexState) cutValues(comp []int) {
	order := slices.Clone(comp)
	slices.SortFunc(order, func(a, b int) int { return s.lim[a] - s.lim[b] })
	for _, child := range order {
		via := s.parentArc[child]
		if via < 0 {
			continue
		}
		childIsTail := s.net.arcs[via].from == child
		cut := s.net.arcs[via].weight
		for _, ai := range s.incident(child) {
			if ai == via {
				continue
			}
			a := s.net.arcs[ai]
			pointsToHead := (a.from == child) == childIsTail
			if pointsToHead {
				cut += a.weight
			} else {
				cut -= a.weight
			}
			if s.tree[ai] {
				if pointsToHead {
					cut -= s.cut[ai]
				} else {
					cut += s.cut[ai]
				}
			}
		}
		s.cut[via] = cut
	}
}

func (s *simplexState) isDescendant(v, root int) bool {
	return s.low[root] <= s.lim[v] && s.lim[v] <= s.lim[root]
}

// enterArc picks the non-tree arc with minimum slack that reconnects the two
// halves of the tree after removing leave.
func (s *simplexState) enterArc(leave int, arcs []int) int {
	v, w := s.net.arcs[leave].from, s.net.arcs[leave].to
	tail, flip := v, false
	if s.lim[v] > s.lim[w] {
		tail, flip = w, true
	}
	best, bestSlack := -1, math.MaxInt
	for _, ai := range arcs {
		if s.tree[ai] {
			continue
		}
		a := s.net.arcs[ai]
		if flip == s.isDescendant(a.from, tail) && flip != s.isDescendant(a.to, tail) {
			if sl := s.slack(ai); sl < bestSlack {
				best, bestSlack = ai, sl
			}
		}
	}
	return best
}

// updateRanks recomputes ranks from the root so every tree arc is tight.
func (s *simplexState) updateRanks(root int) {
	var dfs func(v int)
	dfs = func(v int) {
		for _, ai := range s.incident(v) {
			if !s.tree[ai] || ai == s.parentArc[v] {
				continue
			}
			a := s.net.arcs[ai]
			if a.from == v {
				s.rank[a.to] = s.rank[v] + a.minLen
				dfs(a.to)
			} else {
				s.rank[a.from] = s.rank[v] - a.minLen
				dfs(a.from)
			}
		}
	}
	dfs(root)
}

// balance moves every node whose incoming and outgoing weights are equal to
// the least populated layer within its feasible range. Such moves never
// change the total edge length.
func balance(net *network, layer []int) {
	real := len(net.nodes)
	top := 0
	for v := range real {
		top = max(top, layer[v])
	}
	fill := make([]int, top+1)
	for v := range real {
		fill[layer[v]]++
	}
	for v := range real {
		inW, outW := 0, 0
		lo, hi := 0, top
		for _, ai := range net.in[v] {
			a := net.arcs[ai]
			inW += a.weight
			lo = max(lo, layer[a.from]+a.minLen)
		}
		for _, ai := range net.out[v] {
			a := net.arcs[ai]
			outW += a.weight
			hi = min(hi, layer[a.to]-a.minLen)
		}
		if inW != outW {
			continue
		}
		best := layer[v]
		for l := lo; l <= hi; l++ {
			if fill[l] < fill[best] {
				best = l
			}
		}
		if best != layer[v] {
			fill[layer[v]]--
			fill[best]++
			layer[v] = best
		}
	}
}
