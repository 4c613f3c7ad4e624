package ordering

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// maxSweepsPerRun bounds the improving sweeps of one run, scaled by
// thoroughness.
const maxSweepsPerRun = 8

// Result reports the outcome of crossing minimization.
type Result struct {
	Crossings int
	Sweeps    int
	Converged bool
}

// Minimizer reorders the nodes of every layer to reduce edge crossings with
// the layer sweep heuristic.
type Minimizer struct {
	median       bool
	thoroughness int
	seed         uint64
	hyperedges   bool
}

// New returns the minimizer configured by cfg.
func New(cfg *options.Config) (*Minimizer, error) {
	m := &Minimizer{
		thoroughness: max(1, cfg.Thoroughness),
		seed:         uint64(cfg.RandomSeed),
		hyperedges:   cfg.HyperedgeCounting,
	}
	switch cfg.Heuristic {
	case options.HeuristicBarycenter, "":
	case options.HeuristicMedian:
		m.median = true
	default:
		return nil, errors.Configuration("unknown crossing minimization heuristic %q", cfg.Heuristic)
	}
	return m, nil
}

// Minimize runs thoroughness sweep runs over g and leaves the best ordering
// seen in place. The first run starts from the current order, so running
// Minimize on its own output never increases the crossing count. Later runs
// start from a shuffled first layer and a random direction, drawn from a PCG
// source seeded with the configured seed.
//
// A run alternates sweep directions while the crossing count drops. Runs
// stop early once an ordering without crossings is found. Converged is false
// when a run was still improving when its sweep budget ran out.
//
// The context is checked between sweeps; on cancellation the best ordering
// so far is restored and ctx.Err() returned along with it.
func (m *Minimizer) Minimize(ctx context.Context, g *lgraph.LGraph) (Result, error) {
	res := Result{Converged: true}
	if len(g.Layers) == 0 {
		return res, nil
	}
	s := newSweeper(g, m)
	best := g.Order()
	for i := range best {
		best[i] = groupUnits(layoutUnits(best[i]))
	}
	bestCount := s.counter.Total(best)
	res.Crossings = bestCount
	if len(g.Layers) < 2 || bestCount == 0 {
		g.SetOrder(best)
		return res, nil
	}

	rng := rand.New(rand.NewPCG(m.seed, m.seed^0xdeadbeef))
	budget := maxSweepsPerRun * m.thoroughness
	for run := range m.thoroughness {
		forward := true
		order := slices.Clone(best)
		for i := range order {
			order[i] = slices.Clone(order[i])
		}
		if run > 0 {
			forward = rng.IntN(2) == 0
			first := 0
			if !forward {
				first = len(order) - 1
			}
			order[first] = s.shuffle(order[first], rng)
		}

		current := s.counter.Total(order)
		runBest, runOrder := current, order
		sweeps := 0
		for {
			if err := ctx.Err(); err != nil {
				g.SetOrder(best)
				res.Crossings = bestCount
				return res, err
			}
			next := s.sweep(runOrder, forward)
			sweeps++
			res.Sweeps++
			count := s.counter.Total(next)
			if count >= runBest {
				break
			}
			runBest, runOrder = count, next
			forward = !forward
			if runBest == 0 {
				break
			}
			if sweeps >= budget {
				res.Converged = false
				break
			}
		}

		if runBest < bestCount {
			best, bestCount = runOrder, runBest
		}
		if bestCount == 0 {
			break
		}
	}

	g.SetOrder(best)
	res.Crossings = bestCount
	return res, nil
}

// =============================================================================
// Sweeping
// =============================================================================

type sweeper struct {
	g       *lgraph.LGraph
	m       *Minimizer
	counter *lgraph.Counter
	rank    []float64
}

func newSweeper(g *lgraph.LGraph, m *Minimizer) *sweeper {
	return &sweeper{
		g:       g,
		m:       m,
		counter: lgraph.NewCounter(g, m.hyperedges),
		rank:    make([]float64, len(g.Ports)),
	}
}

// sweep reorders every layer but the first one in sweep direction by the
// positions of its neighbours in the previous layer.
func (s *sweeper) sweep(order [][]*lgraph.LNode, forward bool) [][]*lgraph.LNode {
	out := make([][]*lgraph.LNode, len(order))
	for i := range order {
		out[i] = slices.Clone(order[i])
	}
	n := len(out)
	if forward {
		for i := 1; i < n; i++ {
			out[i] = s.sortLayer(out[i], out[i-1], true)
		}
	} else {
		for i := n - 2; i >= 0; i-- {
			out[i] = s.sortLayer(out[i], out[i+1], false)
		}
	}
	return out
}

// sortLayer orders free by the rank of their neighbours in fixed. fromWest
// tells whether fixed lies west of free.
func (s *sweeper) sortLayer(free, fixed []*lgraph.LNode, fromWest bool) []*lgraph.LNode {
	if len(free) < 2 {
		return free
	}
	lgraph.PortRanks(fixed, fromWest, s.rank)

	units := layoutUnits(free)
	keys := make([]float64, len(units))
	known := make([]bool, len(units))
	for i, u := range units {
		keys[i], known[i] = s.unitKey(u, fromWest)
	}
	fillUnknown(keys, known)

	idx := make([]int, len(units))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if c := cmp.Compare(inLayerGroup(units[a][0]), inLayerGroup(units[b][0])); c != 0 {
			return c
		}
		return cmp.Compare(keys[a], keys[b])
	})

	out := make([]*lgraph.LNode, 0, len(free))
	for _, i := range idx {
		out = append(out, units[i]...)
	}
	return out
}

// unitKey computes the barycenter or median of the ranks of all neighbours
// of a unit in the fixed layer.
func (s *sweeper) unitKey(unit []*lgraph.LNode, fromWest bool) (float64, bool) {
	var ranks []float64
	for _, n := range unit {
		for _, p := range n.Ports {
			edges := p.Outgoing
			if fromWest {
				edges = p.Incoming
			}
			for _, e := range edges {
				if e.SelfLoop {
					continue
				}
				other := e.Target
				if fromWest {
					other = e.Source
				}
				if other.Node.Layer == n.Layer {
					continue
				}
				ranks = append(ranks, s.rank[other.ID])
			}
		}
	}
	if len(ranks) == 0 {
		return 0, false
	}
	if s.m.median {
		slices.Sort(ranks)
		mid := len(ranks) / 2
		if len(ranks)%2 == 1 {
			return ranks[mid], true
		}
		return (ranks[mid-1] + ranks[mid]) / 2, true
	}
	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	return sum / float64(len(ranks)), true
}

// fillUnknown gives units without neighbours a key between those of the
// nearest known units before and after them, so they keep their place
// relative to their surroundings.
func fillUnknown(keys []float64, known []bool) {
	for i := range keys {
		if known[i] {
			continue
		}
		prev, next := -1, -1
		for j := i - 1; j >= 0; j-- {
			if known[j] {
				prev = j
				break
			}
		}
		for j := i + 1; j < len(keys); j++ {
			if known[j] {
				next = j
				break
			}
		}
		switch {
		case prev >= 0 && next >= 0:
			keys[i] = (keys[prev] + keys[next]) / 2
		case prev >= 0:
			keys[i] = keys[prev]
		case next >= 0:
			keys[i] = keys[next]
		default:
			keys[i] = float64(i)
		}
	}
}

// shuffle randomly permutes the units of a layer, keeping in-layer
// constraint groups in place.
func (s *sweeper) shuffle(layer []*lgraph.LNode, rng *rand.Rand) []*lgraph.LNode {
	units := layoutUnits(layer)
	rng.Shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })
	return groupUnits(units)
}

// groupUnits flattens units after moving TOP units first and BOTTOM units
// last, keeping the order within each group.
func groupUnits(units [][]*lgraph.LNode) []*lgraph.LNode {
	slices.SortStableFunc(units, func(a, b []*lgraph.LNode) int {
		return cmp.Compare(inLayerGroup(a[0]), inLayerGroup(b[0]))
	})
	var out []*lgraph.LNode
	for _, u := range units {
		out = append(out, u...)
	}
	return out
}

// =============================================================================
// Layout Units
// =============================================================================

// unitHead returns the node a north/south port dummy belongs to, or n.
func unitHead(n *lgraph.LNode) *lgraph.LNode {
	if n.Kind == lgraph.NorthSouthPort && n.Owner != nil {
		return n.Owner
	}
	return n
}

// layoutUnits groups a layer into units: each node with the north/south
// dummies around it. Members keep their relative order; the first member
// decides the unit's in-layer group.
func layoutUnits(layer []*lgraph.LNode) [][]*lgraph.LNode {
	var units [][]*lgraph.LNode
	index := map[*lgraph.LNode]int{}
	for _, n := range layer {
		head := unitHead(n)
		if i, ok := index[head]; ok {
			units[i] = append(units[i], n)
			continue
		}
		index[head] = len(units)
		units = append(units, []*lgraph.LNode{n})
	}
	return units
}

// inLayerGroup sorts TOP nodes before unconstrained ones before BOTTOM ones.
func inLayerGroup(n *lgraph.LNode) int {
	switch unitHead(n).InLayer {
	case options.InLayerTop:
		return 0
	case options.InLayerBottom:
		return 2
	}
	return 1
}

// sameUnit reports whether a and b belong to one layout unit.
func sameUnit(a, b *lgraph.LNode) bool { return unitHead(a) == unitHead(b) }

// inUnit reports whether n is part of a unit with more than one member.
func inUnit(n *lgraph.LNode) bool {
	if n.Kind == lgraph.NorthSouthPort {
		return true
	}
	for _, p := range n.Ports {
		if p.Dummy != nil && !p.Dummy.Removed {
			return true
		}
	}
	return false
}
