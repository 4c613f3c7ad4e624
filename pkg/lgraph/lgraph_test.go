package lgraph_test

import (
	"testing"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/lgraph/lgraphtest"
)

func TestConnectAndReverse(t *testing.T) {
	b := lgraphtest.New()
	e := b.Edge("a", "b")
	e.BendPoints = []lgraph.Vector{{X: 1}, {X: 2}}

	e.Reverse()

	if e.SourceNode().Name != "b" || e.TargetNode().Name != "a" {
		t.Errorf("Reverse() = %v, want b->a", e)
	}
	if !e.Reversed {
		t.Error("Reversed = false, want true")
	}
	if e.BendPoints[0].X != 2 {
		t.Errorf("BendPoints[0].X = %v, want 2", e.BendPoints[0].X)
	}
	if got := len(b.Node("a").Incoming()); got != 1 {
		t.Errorf("a.Incoming() = %d edges, want 1", got)
	}
	if got := len(b.Node("a").Outgoing()); got != 0 {
		t.Errorf("a.Outgoing() = %d edges, want 0", got)
	}

	e.Reverse()
	if e.Reversed {
		t.Error("double Reverse() should clear Reversed")
	}
}

func TestRemoveNode(t *testing.T) {
	b := lgraphtest.New()
	b.Edges([2]string{"a", "b"}, [2]string{"b", "c"})
	b.Layers([]string{"a"}, []string{"b"}, []string{"c"})

	b.G.RemoveNode(b.Node("b"))

	if got := len(b.G.LiveEdges()); got != 0 {
		t.Errorf("LiveEdges() = %d, want 0", got)
	}
	if got := len(b.G.Layers[1].Nodes); got != 0 {
		t.Errorf("layer 1 has %d nodes, want 0", got)
	}
	if got := len(b.Node("a").Outgoing()); got != 0 {
		t.Errorf("a.Outgoing() = %d, want 0", got)
	}

	b.G.RemoveEmptyLayers()
	b.G.Compact()
	if len(b.G.Layers) != 2 || b.Node("c").LayerIndex() != 1 {
		t.Errorf("layers = %v, want [[a] [c]]", lgraphtest.Names(b.G))
	}
	if err := b.G.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLayerOperations(t *testing.T) {
	b := lgraphtest.New()
	b.Layers([]string{"a", "b"}, []string{"c"})

	l := b.G.InsertLayer(1)
	b.G.Layers[0].Remove(b.Node("b"))
	l.Append(b.Node("b"))
	b.G.Layers[0].Insert(b.Node("x"), 0)

	want := [][]string{{"x", "a"}, {"b"}, {"c"}}
	got := lgraphtest.Names(b.G)
	if len(got) != len(want) {
		t.Fatalf("layers = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("layers = %v, want %v", got, want)
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("layers = %v, want %v", got, want)
			}
		}
	}
	if b.Node("a").Index != 1 || b.Node("c").LayerIndex() != 2 {
		t.Errorf("a.Index = %d, c layer = %d", b.Node("a").Index, b.Node("c").LayerIndex())
	}
}

func TestValidateLayering(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *lgraph.LGraph
		proper bool
		ok     bool
	}{
		{
			name: "proper chain",
			build: func() *lgraph.LGraph {
				b := lgraphtest.New()
				b.Edges([2]string{"a", "b"}, [2]string{"b", "c"})
				b.Layers([]string{"a"}, []string{"b"}, []string{"c"})
				return b.G
			},
			proper: true,
			ok:     true,
		},
		{
			name: "long edge allowed when not proper",
			build: func() *lgraph.LGraph {
				b := lgraphtest.New()
				b.Edge("a", "c")
				b.Layers([]string{"a"}, []string{}, []string{"c"})
				b.G.Layer(1)
				return b.G
			},
			ok: true,
		},
		{
			name: "long edge rejected when proper",
			build: func() *lgraph.LGraph {
				b := lgraphtest.New()
				b.Edge("a", "c")
				b.Layers([]string{"a"}, []string{"b"}, []string{"c"})
				return b.G
			},
			proper: true,
		},
		{
			name: "backward edge",
			build: func() *lgraph.LGraph {
				b := lgraphtest.New()
				b.Edge("b", "a")
				b.Layers([]string{"a"}, []string{"b"})
				return b.G
			},
		},
		{
			name: "unlayered node",
			build: func() *lgraph.LGraph {
				b := lgraphtest.New()
				b.Node("a")
				return b.G
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().ValidateLayering(tt.proper)
			if tt.ok && err != nil {
				t.Errorf("ValidateLayering() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInternalConsistency) {
				t.Errorf("ValidateLayering() error = %v, want INTERNAL_CONSISTENCY", err)
			}
		})
	}
}

func TestSortPorts(t *testing.T) {
	g := lgraph.New()
	n := g.AddNode(lgraph.Normal, "n")
	w1 := g.AddPort(n, lgraph.West)
	e0 := g.AddPort(n, lgraph.East)
	n0 := g.AddPort(n, lgraph.North)
	w0 := g.AddPort(n, lgraph.West)
	w0.Index, w1.Index = 0, 1

	lgraph.SortPorts(n)

	want := []*lgraph.LPort{n0, e0, w1, w0}
	for i, p := range want {
		if n.Ports[i] != p {
			t.Errorf("Ports[%d] = %v/%d, want %v/%d", i, n.Ports[i].Side, n.Ports[i].Index, p.Side, p.Index)
		}
	}
}

func TestCounterBetween(t *testing.T) {
	tests := []struct {
		name       string
		edges      [][2]string
		left       []string
		right      []string
		hyperedges bool
		want       int
	}{
		{"parallel", [][2]string{{"a", "x"}, {"b", "y"}}, []string{"a", "b"}, []string{"x", "y"}, false, 0},
		{"single crossing", [][2]string{{"a", "y"}, {"b", "x"}}, []string{"a", "b"}, []string{"x", "y"}, false, 1},
		{"complete bipartite", [][2]string{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}},
			[]string{"a", "b"}, []string{"x", "y"}, false, 1},
		{"three reversed", [][2]string{{"a", "z"}, {"b", "y"}, {"c", "x"}},
			[]string{"a", "b", "c"}, []string{"x", "y", "z"}, false, 3},
		{"hyperedge parallel", [][2]string{{"a", "x"}, {"b", "y"}}, []string{"a", "b"}, []string{"x", "y"}, true, 0},
		{"hyperedge crossing", [][2]string{{"a", "y"}, {"b", "x"}}, []string{"a", "b"}, []string{"x", "y"}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := lgraphtest.New()
			b.Edges(tt.edges...)
			b.Layers(tt.left, tt.right)
			c := lgraph.NewCounter(b.G, tt.hyperedges)
			if got := c.Total(b.G.Order()); got != tt.want {
				t.Errorf("Total() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHyperedgeSharedPort(t *testing.T) {
	// a fans out from one port to x and z; b's edge to y passes through
	// the fan exactly once.
	g := lgraph.New()
	a := g.AddNode(lgraph.Normal, "a")
	b := g.AddNode(lgraph.Normal, "b")
	x := g.AddNode(lgraph.Normal, "x")
	y := g.AddNode(lgraph.Normal, "y")
	z := g.AddNode(lgraph.Normal, "z")
	for _, n := range []*lgraph.LNode{a, b} {
		g.AssignLayer(n, 0)
	}
	for _, n := range []*lgraph.LNode{x, y, z} {
		g.AssignLayer(n, 1)
	}
	out := g.AddPort(a, lgraph.East)
	g.Connect(out, g.AddPort(x, lgraph.West))
	g.Connect(out, g.AddPort(z, lgraph.West))
	g.Connect(g.AddPort(b, lgraph.East), g.AddPort(y, lgraph.West))

	if got := len(lgraph.Hyperedges(g.Layers[0].Nodes, g.Layers[1])); got != 2 {
		t.Errorf("Hyperedges() = %d groups, want 2", got)
	}
	if got := lgraph.NewCounter(g, false).Total(g.Order()); got != 1 {
		t.Errorf("plain Total() = %d, want 1", got)
	}
	if got := lgraph.NewCounter(g, true).Total(g.Order()); got != 1 {
		t.Errorf("hyperedge Total() = %d, want 1", got)
	}
}

func TestPairCrossings(t *testing.T) {
	b := lgraphtest.New()
	b.Edges([2]string{"a", "y"}, [2]string{"b", "x"})
	b.Layers([]string{"a", "b"}, []string{"x", "y"})
	c := lgraph.NewCounter(b.G, false)
	c.AssignPositions(b.G.Layers[1].Nodes, false)

	if got := c.PairCrossings(b.Node("a"), b.Node("b"), false); got != 1 {
		t.Errorf("PairCrossings(a, b) = %d, want 1", got)
	}
	if got := c.PairCrossings(b.Node("b"), b.Node("a"), false); got != 0 {
		t.Errorf("PairCrossings(b, a) = %d, want 0", got)
	}
}
