package cycles

import (
	"context"
	"testing"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/lgraph/lgraphtest"
	"github.com/matzehuels/sugiyama/pkg/options"
)

func breakers() map[string]Breaker {
	return map[string]Breaker{
		"greedy":      &Greedy{},
		"depth-first": &DepthFirst{},
		"interactive": &Interactive{},
	}
}

// acyclic reports whether the live, non-self-loop edges of g form a DAG.
func acyclic(g *lgraph.LGraph) bool {
	indeg := map[*lgraph.LNode]int{}
	for _, e := range g.LiveEdges() {
		if !e.SelfLoop {
			indeg[e.Target.Node]++
		}
	}
	var queue []*lgraph.LNode
	for _, n := range g.LiveNodes() {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	seen := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		seen++
		for _, e := range n.Outgoing() {
			if e.SelfLoop {
				continue
			}
			if indeg[e.Target.Node]--; indeg[e.Target.Node] == 0 {
				queue = append(queue, e.Target.Node)
			}
		}
	}
	return seen == len(g.LiveNodes())
}

func reversedCount(g *lgraph.LGraph) int {
	n := 0
	for _, e := range g.LiveEdges() {
		if e.Reversed {
			n++
		}
	}
	return n
}

func TestBreak_Acyclic(t *testing.T) {
	for name, br := range breakers() {
		t.Run(name, func(t *testing.T) {
			b := lgraphtest.New()
			b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"}, [2]string{"c", "d"})

			got, err := br.Break(context.Background(), b.G)
			if err != nil {
				t.Fatalf("Break() error = %v", err)
			}
			if got != 0 || reversedCount(b.G) != 0 {
				t.Errorf("Break() reversed %d edges, want 0", got)
			}
		})
	}
}

func TestBreak_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  int // -1: only acyclicity is checked
	}{
		{"two-cycle", [][2]string{{"a", "b"}, {"b", "a"}}, 1},
		{"triangle", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1},
		{"two disjoint cycles", [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2},
		{"nested", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}, {"d", "b"}}, -1},
	}

	for _, tt := range tests {
		for name, br := range breakers() {
			t.Run(tt.name+"/"+name, func(t *testing.T) {
				b := lgraphtest.New()
				b.Edges(tt.edges...)

				got, err := br.Break(context.Background(), b.G)
				if err != nil {
					t.Fatalf("Break() error = %v", err)
				}
				if !acyclic(b.G) {
					t.Fatal("graph still has a cycle")
				}
				if got != reversedCount(b.G) {
					t.Errorf("Break() = %d, but %d edges are flagged", got, reversedCount(b.G))
				}
				if tt.want >= 0 && got != tt.want {
					t.Errorf("Break() reversed %d edges, want %d", got, tt.want)
				}
			})
		}
	}
}

func TestGreedy_TieBreakByInputOrder(t *testing.T) {
	b := lgraphtest.New()
	b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	if _, err := (&Greedy{}).Break(context.Background(), b.G); err != nil {
		t.Fatal(err)
	}
	// a is picked first, so the edge closing the cycle at a is reversed.
	for _, e := range b.G.LiveEdges() {
		if e.Reversed && (e.SourceNode().Name != "a" || e.TargetNode().Name != "c") {
			t.Errorf("reversed %v, want a->c (was c->a)", e)
		}
	}
}

func TestGreedy_PriorityKeepsEdge(t *testing.T) {
	b := lgraphtest.New()
	ab := b.Edge("a", "b")
	ba := b.Edge("b", "a")
	ba.Priority = 5

	if _, err := (&Greedy{}).Break(context.Background(), b.G); err != nil {
		t.Fatal(err)
	}
	if ba.Reversed || !ab.Reversed {
		t.Errorf("reversed a->b = %v, b->a = %v; want the low-priority edge reversed", ab.Reversed, ba.Reversed)
	}
}

func TestSelfLoopsIgnored(t *testing.T) {
	for name, br := range breakers() {
		t.Run(name, func(t *testing.T) {
			b := lgraphtest.New()
			loop := b.Edge("a", "a")

			if got, _ := br.Break(context.Background(), b.G); got != 0 || loop.Reversed {
				t.Errorf("Break() = %d, loop reversed = %v", got, loop.Reversed)
			}
		})
	}
}

func TestInteractive_FollowsPositions(t *testing.T) {
	b := lgraphtest.New()
	ab, ba := b.Edge("a", "b"), b.Edge("b", "a")
	b.Node("a").Interactive = &graph.Point{X: 100}
	b.Node("b").Interactive = &graph.Point{X: 0}

	got, err := (&Interactive{}).Break(context.Background(), b.G)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 || !ab.Reversed || ba.Reversed {
		t.Errorf("Break() = %d, a->b reversed = %v, b->a reversed = %v; want 1, true, false",
			got, ab.Reversed, ba.Reversed)
	}
}

func TestInteractive_AcyclicUntouched(t *testing.T) {
	tests := []struct {
		name  string
		prior map[string]*graph.Point
	}{
		{"no positions", nil},
		{"positions agree", map[string]*graph.Point{"a": {X: 0}, "b": {X: 100}, "c": {X: 200}}},
		{"positions disagree", map[string]*graph.Point{"a": {X: 200}, "b": {X: 100}, "c": {X: 0}}},
		{"partly placed", map[string]*graph.Point{"c": {X: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := lgraphtest.New()
			b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})
			b.Node("a").Size.X = 80
			b.Node("b").Size.X = 20
			for name, p := range tt.prior {
				b.Node(name).Interactive = p
			}
			if got, err := (&Interactive{}).Break(context.Background(), b.G); err != nil || got != 0 {
				t.Errorf("Break() = %d, %v; want 0, nil", got, err)
			}
		})
	}
}

func TestPartitionedEdgesKeepDirection(t *testing.T) {
	b := lgraphtest.New()
	b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})
	b.Node("a").Partition = 0
	b.Node("b").Partition = 1
	b.Node("c").Partition = 1

	if got := ReversePartitionEdges(b.G); got != 1 {
		t.Errorf("ReversePartitionEdges() = %d, want 1", got)
	}
	if _, err := (&Greedy{Partitioned: true}).Break(context.Background(), b.G); err != nil {
		t.Fatal(err)
	}
	for _, e := range b.G.LiveEdges() {
		if e.SourceNode().Partition > e.TargetNode().Partition {
			t.Errorf("edge %v runs from partition %d to %d", e, e.SourceNode().Partition, e.TargetNode().Partition)
		}
	}
}

func TestReverseConstraintEdges(t *testing.T) {
	b := lgraphtest.New()
	b.Edges([2]string{"a", "f"}, [2]string{"l", "a"})
	b.Node("f").LayerConstraint = options.LayerConstraintFirst
	b.Node("l").LayerConstraint = options.LayerConstraintLastSeparate

	if got := ReverseConstraintEdges(b.G); got != 2 {
		t.Errorf("ReverseConstraintEdges() = %d, want 2", got)
	}
	if len(b.Node("f").Incoming()) != 0 {
		t.Error("FIRST node still has incoming edges")
	}
	if len(b.Node("l").Outgoing()) != 0 {
		t.Error("LAST node still has outgoing edges")
	}
}

func TestBreak_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := lgraphtest.New()
	b.Edges([2]string{"a", "b"}, [2]string{"b", "a"})

	if _, err := (&Greedy{}).Break(ctx, b.G); err == nil {
		t.Error("Break() on canceled context should fail")
	}
	if reversedCount(b.G) != 0 {
		t.Error("canceled Break() must not modify the graph")
	}
}

func TestNew(t *testing.T) {
	cfg := options.Default()
	cfg.CycleBreaking = "BOGUS"
	if _, err := New(&cfg); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("New() error = %v, want CONFIGURATION", err)
	}
	cfg.CycleBreaking = options.CycleBreakingDepthFirst
	if br, err := New(&cfg); err != nil {
		t.Errorf("New() error = %v", err)
	} else if _, ok := br.(*DepthFirst); !ok {
		t.Errorf("New() = %T, want *DepthFirst", br)
	}
}
