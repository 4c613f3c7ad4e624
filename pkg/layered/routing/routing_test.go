package routing_test

import (
	"context"
	"testing"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/layered/ordering"
	"github.com/matzehuels/sugiyama/pkg/layered/placement"
	"github.com/matzehuels/sugiyama/pkg/layered/routing"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/lgraph/lgraphtest"
	"github.com/matzehuels/sugiyama/pkg/options"
)

func defaults() *options.Config {
	cfg := options.Default()
	return &cfg
}

// place runs the phases between layering and routing on a layered graph.
func place(t *testing.T, g *lgraph.LGraph, cfg *options.Config) {
	t.Helper()
	ordering.SplitLongEdges(g)
	ordering.InsertNorthSouthDummies(g)
	ordering.PlacePorts(g)
	routing.ReserveSelfLoops(g, cfg.SelfLoopPlacement, cfg.Spacing.SelfLoop)
	p, err := placement.New(cfg)
	if err != nil {
		t.Fatalf("placement.New() error = %v", err)
	}
	if err := p.Place(context.Background(), g); err != nil {
		t.Fatalf("Place() error = %v", err)
	}
}

func route(t *testing.T, g *lgraph.LGraph, cfg *options.Config) {
	t.Helper()
	if err := routing.New(cfg).Route(g); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() after routing = %v", err)
	}
}

func near(a, b lgraph.Vector) bool {
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y < 1e-9
}

func TestRoute_StraightEdge(t *testing.T) {
	b := lgraphtest.New()
	e := b.Edge("a", "b")
	b.Layers([]string{"a"}, []string{"b"})
	cfg := defaults()
	place(t, b.G, cfg)
	route(t, b.G, cfg)

	if len(e.BendPoints) != 0 {
		t.Errorf("BendPoints = %v, want none", e.BendPoints)
	}
	if a := b.Node("a"); a.Pos.X != cfg.Padding || a.Pos.Y != cfg.Padding {
		t.Errorf("a at %v, want (%v, %v)", a.Pos, cfg.Padding, cfg.Padding)
	}
	want := lgraph.Vector{X: 40 + cfg.Spacing.NodeNodeBetweenLayers + 2*cfg.Padding, Y: 20 + 2*cfg.Padding}
	if b.G.Size != want {
		t.Errorf("Size = %v, want %v", b.G.Size, want)
	}
}

func TestJoinLongEdges(t *testing.T) {
	b := lgraphtest.New()
	e := b.Edge("a", "d")
	b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"x", "c"})
	b.Layers([]string{"a"}, []string{"b", "x"}, []string{"c"}, []string{"d"})
	cfg := defaults()
	place(t, b.G, cfg)
	src, dst := e.Source, b.Node("d").Ports[0]

	route(t, b.G, cfg)
	if got := b.G.NodesOf(lgraph.LongEdge); len(got) != 0 {
		t.Errorf("dummies left after routing: %v", got)
	}
	if e.Source != src || e.Target != dst {
		t.Errorf("edge runs %v -> %v, want a -> d", e.Source.Node, e.Target.Node)
	}
	pts := routing.Points(e)
	if !near(pts[0], src.Anchor()) || !near(pts[len(pts)-1], dst.Anchor()) {
		t.Errorf("polyline %v does not start and end at the anchors", pts)
	}
}

func TestJoinLongEdges_ManyChains(t *testing.T) {
	b := lgraphtest.New()
	ad, xd := b.Edge("a", "d"), b.Edge("x", "d")
	b.Edges([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	b.Layers([]string{"a", "x"}, []string{"b"}, []string{"c"}, []string{"d"})
	cfg := defaults()
	place(t, b.G, cfg)
	if got := len(b.G.NodesOf(lgraph.LongEdge)); got != 4 {
		t.Fatalf("SplitLongEdges() left %d dummies, want 4", got)
	}

	route(t, b.G, cfg)
	if got := b.G.NodesOf(lgraph.LongEdge); len(got) != 0 {
		t.Errorf("dummies left after routing: %v", got)
	}
	for _, e := range []*lgraph.LEdge{ad, xd} {
		if e.Removed || e.Target.Node != b.Node("d") {
			t.Errorf("edge %v does not end at d after routing", e)
		}
	}
}

func TestRestoreReversed(t *testing.T) {
	b := lgraphtest.New()
	e := b.Edge("b", "a")
	b.Edges([2]string{"a", "c"}, [2]string{"c", "b"})
	e.Reverse()
	b.Layers([]string{"a"}, []string{"c"}, []string{"b"})
	cfg := defaults()
	place(t, b.G, cfg)
	route(t, b.G, cfg)

	if e.Reversed {
		t.Error("edge still reversed after routing")
	}
	if e.Source.Node != b.Node("b") || e.Target.Node != b.Node("a") {
		t.Errorf("edge runs %v -> %v, want b -> a", e.Source.Node, e.Target.Node)
	}
}

func TestJoinLongEdges_BrokenChain(t *testing.T) {
	b := lgraphtest.New()
	b.Edge("a", "d")
	b.Edge("d", "c")
	d := b.Node("d")
	d.Kind = lgraph.LongEdge
	b.Edge("d", "e")
	b.Layers([]string{"a"}, []string{"d"}, []string{"c", "e"})

	err := routing.JoinLongEdges(b.G, 5)
	if !errors.Is(err, errors.ErrCodeInternalConsistency) {
		t.Errorf("JoinLongEdges() error = %v, want %s", err, errors.ErrCodeInternalConsistency)
	}
}

func TestJoinLongEdges_PlacesCenterLabels(t *testing.T) {
	b := lgraphtest.New()
	e := b.Edge("a", "lbl")
	b.Edge("lbl", "b")
	lbl := b.Node("lbl")
	lbl.Kind = lgraph.Label
	lbl.OriginEdge = e
	lbl.Pos = lgraph.Vector{X: 50, Y: 30}
	lbl.Size = lgraph.Vector{X: 40, Y: 25}
	e.Labels = []*lgraph.LLabel{
		{Size: lgraph.Vector{X: 40, Y: 10}},
		{Size: lgraph.Vector{X: 20, Y: 10}, Placement: options.LabelCenter},
	}
	b.Layers([]string{"a"}, []string{"lbl"}, []string{"b"})

	if err := routing.JoinLongEdges(b.G, 5); err != nil {
		t.Fatalf("JoinLongEdges() error = %v", err)
	}
	if got, want := e.Labels[0].Pos, (lgraph.Vector{X: 50, Y: 30}); got != want {
		t.Errorf("first label at %v, want %v", got, want)
	}
	if got, want := e.Labels[1].Pos, (lgraph.Vector{X: 60, Y: 45}); got != want {
		t.Errorf("second label at %v, want %v", got, want)
	}
}

func TestRemoveNorthSouthDummies(t *testing.T) {
	b := lgraphtest.New()
	a, n := b.Node("a"), b.Node("n")
	n.PortConstraints = options.PortsFixedSide
	north := b.G.AddPort(n, lgraph.North)
	e := b.G.Connect(b.G.AddPort(a, lgraph.East), north)
	b.Layers([]string{"a"}, []string{"n"})
	cfg := defaults()
	place(t, b.G, cfg)
	dummy := north.Dummy
	if dummy == nil {
		t.Fatal("no north/south dummy inserted")
	}
	row := dummy.Ports[0].Anchor().Y

	if err := routing.RemoveNorthSouthDummies(b.G); err != nil {
		t.Fatalf("RemoveNorthSouthDummies() error = %v", err)
	}
	if e.Target != north {
		t.Errorf("edge ends at %v, want the north port", e.Target.Node)
	}
	want := lgraph.Vector{X: north.Anchor().X, Y: row}
	if k := len(e.BendPoints); k == 0 || !near(e.BendPoints[k-1], want) {
		t.Errorf("BendPoints = %v, want last %v", e.BendPoints, want)
	}
	if !dummy.Removed {
		t.Error("dummy not removed")
	}
}

func TestRouteSelfLoops(t *testing.T) {
	for _, tt := range []struct {
		name      string
		placement options.SelfLoopPlacement
		outside   bool
	}{
		{"outside", options.SelfLoopOutside, true},
		{"inside", options.SelfLoopInside, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			b := lgraphtest.New()
			n := b.Node("n")
			n.Size = lgraph.Vector{X: 60, Y: 40}
			n.PortConstraints = options.PortsFixedSide
			e := b.G.Connect(b.G.AddPort(n, lgraph.East), b.G.AddPort(n, lgraph.North))
			b.Layers([]string{"n"})
			cfg := defaults()
			cfg.SelfLoopPlacement = tt.placement
			place(t, b.G, cfg)
			route(t, b.G, cfg)

			if len(e.BendPoints) != 3 {
				t.Fatalf("BendPoints = %v, want 3 points", e.BendPoints)
			}
			for _, p := range e.BendPoints {
				in := p.X > n.Pos.X && p.X < n.Pos.X+n.Size.X && p.Y > n.Pos.Y && p.Y < n.Pos.Y+n.Size.Y
				if in == tt.outside {
					t.Errorf("bend point %v inside node = %v, want %v", p, in, !tt.outside)
				}
			}
		})
	}
}

func TestJunctions(t *testing.T) {
	g := lgraph.New()
	a := g.AddNode(lgraph.Normal, "a")
	b := g.AddNode(lgraph.Normal, "b")
	c := g.AddNode(lgraph.Normal, "c")
	a.Size, b.Size, c.Size = lgraph.Vector{X: 10, Y: 10}, lgraph.Vector{X: 10, Y: 10}, lgraph.Vector{X: 10, Y: 10}
	b.Pos = lgraph.Vector{X: 100, Y: 0}
	c.Pos = lgraph.Vector{X: 100, Y: 100}
	out := g.AddPort(a, lgraph.East)
	e1 := g.Connect(out, g.AddPort(b, lgraph.West))
	e2 := g.Connect(out, g.AddPort(c, lgraph.West))
	joint := lgraph.Vector{X: 50, Y: 0}
	e1.BendPoints = []lgraph.Vector{joint}
	e2.BendPoints = []lgraph.Vector{joint, {X: 50, Y: 100}}

	routing.Junctions(g)
	for _, e := range []*lgraph.LEdge{e1, e2} {
		if len(e.JunctionPoints) != 1 || e.JunctionPoints[0] != joint {
			t.Errorf("%v JunctionPoints = %v, want [%v]", e, e.JunctionPoints, joint)
		}
	}
}

func TestSimplify(t *testing.T) {
	g := lgraph.New()
	a := g.AddNode(lgraph.Normal, "a")
	b := g.AddNode(lgraph.Normal, "b")
	b.Pos = lgraph.Vector{X: 100, Y: 0}
	e := g.Connect(g.AddPort(a, lgraph.East), g.AddPort(b, lgraph.West))
	e.BendPoints = []lgraph.Vector{{X: 25}, {X: 25}, {X: 50}, {X: 50, Y: 20}}

	routing.Simplify(g)
	want := []lgraph.Vector{{X: 50}, {X: 50, Y: 20}}
	if len(e.BendPoints) != len(want) || e.BendPoints[0] != want[0] || e.BendPoints[1] != want[1] {
		t.Errorf("BendPoints = %v, want %v", e.BendPoints, want)
	}
}
