package layering

import (
	"slices"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// arc is a layering constraint layer(to) - layer(from) >= minLen. weight is
// the cost per layer of stretching it.
type arc struct {
	from, to int
	minLen   int
	weight   int
}

// network is the constraint graph the strategies solve. Vertices
// 0..len(nodes)-1 are the graph's nodes; higher vertices are partition
// barriers that never reach a layer. Parallel arcs are merged.
type network struct {
	nodes   []*lgraph.LNode
	n       int
	arcs    []arc
	out, in [][]int
	index   map[[2]int]int
}

func newNetwork(nodes []*lgraph.LNode) *network {
	n := len(nodes)
	return &network{
		nodes: nodes,
		n:     n,
		out:   make([][]int, n),
		in:    make([][]int, n),
		index: map[[2]int]int{},
	}
}

func (net *network) addVertex() int {
	net.out = append(net.out, nil)
	net.in = append(net.in, nil)
	net.n++
	return net.n - 1
}

func (net *network) addArc(from, to, minLen, weight int) {
	key := [2]int{from, to}
	if i, ok := net.index[key]; ok {
		net.arcs[i].minLen = max(net.arcs[i].minLen, minLen)
		net.arcs[i].weight += weight
		return
	}
	i := len(net.arcs)
	net.arcs = append(net.arcs, arc{from, to, minLen, weight})
	net.index[key] = i
	net.out[from] = append(net.out[from], i)
	net.in[to] = append(net.in[to], i)
}

// build derives the network from g's live edges. minLen gives the minimum
// span of edges leaving a node (1 except for wide nodes about to be split).
// With partitioned set, a barrier vertex between consecutive partitions
// forces every node of the lower partition strictly left of every node of
// the higher one.
func build(g *lgraph.LGraph, minLen func(*lgraph.LNode) int, partitioned bool) *network {
	nodes := g.LiveNodes()
	net := newNetwork(nodes)
	pos := make(map[*lgraph.LNode]int, len(nodes))
	for i, n := range nodes {
		pos[n] = i
	}
	for _, e := range g.LiveEdges() {
		if e.SelfLoop {
			continue
		}
		u, okU := pos[e.Source.Node]
		v, okV := pos[e.Target.Node]
		if !okU || !okV || u == v {
			continue
		}
		net.addArc(u, v, minLen(e.Source.Node), max(1, e.Priority))
	}

	if partitioned {
		byPartition := map[int][]int{}
		for i, n := range nodes {
			if n.Partition >= 0 {
				byPartition[n.Partition] = append(byPartition[n.Partition], i)
			}
		}
		keys := make([]int, 0, len(byPartition))
		for k := range byPartition {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for k := 0; k+1 < len(keys); k++ {
			b := net.addVertex()
			for _, v := range byPartition[keys[k]] {
				net.addArc(v, b, 0, 0)
			}
			for _, v := range byPartition[keys[k+1]] {
				net.addArc(b, v, 1, 0)
			}
		}
	}
	return net
}

// topoOrder returns the vertices in topological order, or an
// INTERNAL_CONSISTENCY error if the network still has a cycle.
func (net *network) topoOrder() ([]int, error) {
	indeg := make([]int, net.n)
	for _, a := range net.arcs {
		indeg[a.to]++
	}
	order := make([]int, 0, net.n)
	for v := range net.n {
		if indeg[v] == 0 {
			order = append(order, v)
		}
	}
	for i := 0; i < len(order); i++ {
		for _, ai := range net.out[order[i]] {
			to := net.arcs[ai].to
			if indeg[to]--; indeg[to] == 0 {
				order = append(order, to)
			}
		}
	}
	if len(order) != net.n {
		return nil, errors.Inconsistent("layering input still contains a cycle")
	}
	return order, nil
}

// relax raises layer values until every arc is satisfied, keeping existing
// values as lower bounds.
func (net *network) relax(layer []int) error {
	order, err := net.topoOrder()
	if err != nil {
		return err
	}
	for _, v := range order {
		for _, ai := range net.out[v] {
			a := net.arcs[ai]
			layer[a.to] = max(layer[a.to], layer[v]+a.minLen)
		}
	}
	return nil
}

// components returns the weakly connected components in vertex order.
func (net *network) components() [][]int {
	comp := make([]int, net.n)
	for i := range comp {
		comp[i] = -1
	}
	var out [][]int
	for s := range net.n {
		if comp[s] >= 0 {
			continue
		}
		id := len(out)
		members := []int{s}
		comp[s] = id
		for i := 0; i < len(members); i++ {
			v := members[i]
			for _, ai := range append(slices.Clone(net.out[v]), net.in[v]...) {
				a := net.arcs[ai]
				for _, w := range [2]int{a.from, a.to} {
					if comp[w] < 0 {
						comp[w] = id
						members = append(members, w)
					}
				}
			}
		}
		slices.Sort(members)
		out = append(out, members)
	}
	return out
}
