package layered_test

import (
	"context"
	"math"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
	"github.com/matzehuels/sugiyama/pkg/layered/transfer"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/lgraph/lgraphtest"
	"github.com/matzehuels/sugiyama/pkg/options"
)

func node(id string) *graph.Node {
	return &graph.Node{ID: id, Width: 30, Height: 20}
}

func edge(id, from, to string) *graph.Edge {
	return &graph.Edge{ID: id, Sources: []string{from}, Targets: []string{to}}
}

// build returns a root whose children are the named nodes, connected by
// the given edges ("e0", "e1", ...).
func build(names []string, pairs ...[2]string) *graph.Node {
	root := &graph.Node{ID: "root"}
	for _, n := range names {
		root.Children = append(root.Children, node(n))
	}
	for i, p := range pairs {
		root.Edges = append(root.Edges, edge("e"+string(rune('0'+i)), p[0], p[1]))
	}
	return root
}

func child(root *graph.Node, id string) *graph.Node {
	for _, c := range root.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// layers records the layer of every node right after layering.
type layers struct {
	mu sync.Mutex
	of map[string]int
}

func (l *layers) inspector() layered.Option {
	l.of = map[string]int{}
	return layered.WithInspector(func(phase string, g *lgraph.LGraph) {
		if phase != layered.PhaseLayering {
			return
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, n := range g.NodesOf(lgraph.Normal) {
			l.of[n.Name] = lgraphtest.LayerOf(g, n.Name)
		}
	})
}

func run(t *testing.T, root *graph.Node, props graph.Properties, opts ...layered.Option) *layered.Result {
	t.Helper()
	opts = append(opts, layered.WithValidation())
	res, err := layered.Layout(context.Background(), root, props, opts...)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	return res
}

func overlap(a, b *graph.Node) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func TestLayout_SingleEdge(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	var l layers
	res := run(t, root, nil, l.inspector())

	if l.of["a"] != 0 || l.of["b"] != 1 {
		t.Errorf("layers = %v, want a:0 b:1", l.of)
	}
	a, b := child(root, "a"), child(root, "b")
	if a.X >= b.X {
		t.Errorf("a.X = %v, b.X = %v, want a left of b", a.X, b.X)
	}
	e := root.Edges[0]
	if len(e.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(e.Sections))
	}
	sec := e.Sections[0]
	if len(sec.BendPoints) != 0 {
		t.Errorf("BendPoints = %v, want none", sec.BendPoints)
	}
	if want := (graph.Point{X: a.X + a.Width, Y: a.Y + a.Height/2}); sec.Start != want {
		t.Errorf("Start = %v, want %v", sec.Start, want)
	}
	if want := (graph.Point{X: b.X, Y: b.Y + b.Height/2}); sec.End != want {
		t.Errorf("End = %v, want %v", sec.End, want)
	}
	if res.Layers != 2 || res.Nodes != 2 || res.Edges != 1 {
		t.Errorf("Stats = %+v, want 2 layers, 2 nodes, 1 edge", res.Stats)
	}
	if root.Width < b.X+b.Width || root.Height < b.Y+b.Height {
		t.Errorf("root size = %vx%v, too small for b", root.Width, root.Height)
	}
	if got := root.Properties[transfer.ResolvedAlgorithm]; got != options.AlgorithmLayered {
		t.Errorf("%s = %v, want %q", transfer.ResolvedAlgorithm, got, options.AlgorithmLayered)
	}
}

func TestLayout_ThreeCycle(t *testing.T) {
	for _, strategy := range []string{"GREEDY", "DEPTH_FIRST"} {
		t.Run(strategy, func(t *testing.T) {
			root := build([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})
			res := run(t, root, graph.Properties{options.CycleBreaking.ID(): strategy})
			if res.Reversed != 1 {
				t.Errorf("Reversed = %d, want 1", res.Reversed)
			}
			for _, e := range root.Edges {
				if len(e.Sections) != 1 {
					t.Errorf("edge %s has %d sections, want 1", e.ID, len(e.Sections))
				}
			}
		})
	}
}

func TestLayout_DisjointEdges(t *testing.T) {
	root := build([]string{"a", "b", "c", "d"}, [2]string{"a", "b"}, [2]string{"c", "d"})
	res := run(t, root, nil)
	if res.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", res.Crossings)
	}
}

func TestLayout_Partitions(t *testing.T) {
	root := build([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"c", "a"})
	child(root, "a").Properties = graph.Properties{options.NodePartition.ID(): 1}
	child(root, "b").Properties = graph.Properties{options.NodePartition.ID(): 0}
	child(root, "c").Properties = graph.Properties{options.NodePartition.ID(): 1}

	var l layers
	run(t, root, graph.Properties{options.PartitioningActivate.ID(): true}, l.inspector())
	for _, hi := range []string{"a", "c"} {
		if l.of["b"] >= l.of[hi] {
			t.Errorf("layer(b) = %d, layer(%s) = %d, want partition 0 first", l.of["b"], hi, l.of[hi])
		}
	}
}

func TestLayout_NoLayoutRoundTrip(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	root.Properties = graph.Properties{options.NoLayout.ID(): true}
	child(root, "a").X = 7
	want, err := graph.Clone(root)
	if err != nil {
		t.Fatal(err)
	}

	res := run(t, root, nil)
	if !reflect.DeepEqual(root, want) {
		t.Errorf("noLayout graph changed:\ngot  %+v\nwant %+v", root, want)
	}
	if !slices.Equal(res.Skipped, []string{"root"}) {
		t.Errorf("Skipped = %v, want [root]", res.Skipped)
	}
}

func TestLayout_InteractiveAcyclic(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	child(root, "a").Width = 80
	child(root, "b").Width = 20
	res := run(t, root, graph.Properties{
		options.CycleBreaking.ID(): string(options.CycleBreakingInteractive),
	})
	if res.Reversed != 0 {
		t.Errorf("Reversed = %d, want 0", res.Reversed)
	}
	if a, b := child(root, "a"), child(root, "b"); b.X < a.X+a.Width {
		t.Errorf("b.X = %v, want right of a (%v..%v)", b.X, a.X, a.X+a.Width)
	}
}

func TestLayout_NonLayeredAlgorithm(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	want, _ := graph.Clone(root)
	res := run(t, root, graph.Properties{options.Algorithm.ID(): options.AlgorithmFixed})
	if !reflect.DeepEqual(root, want) {
		t.Error("graph with algorithm fixed was modified")
	}
	if res.Graphs != 0 || len(res.Skipped) != 1 {
		t.Errorf("Graphs = %d, Skipped = %v, want 0 and [root]", res.Graphs, res.Skipped)
	}
}

func TestLayout_ConfigurationError(t *testing.T) {
	tests := []struct {
		name  string
		props graph.Properties
	}{
		{"negative spacing", graph.Properties{options.SpacingNodeNode.ID(): -1}},
		{"unknown strategy", graph.Properties{options.Layering.ID(): "STACKED"}},
		{"bad thoroughness", graph.Properties{options.Thoroughness.ID(): 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := build([]string{"a", "b"}, [2]string{"a", "b"})
			want, _ := graph.Clone(root)
			_, err := layered.Layout(context.Background(), root, tt.props)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Fatalf("Layout() error = %v, want CONFIGURATION", err)
			}
			if !reflect.DeepEqual(root, want) {
				t.Error("graph modified despite configuration error")
			}
		})
	}
}

func TestLayout_ConflictingConstraints(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	for _, c := range root.Children {
		c.Properties = graph.Properties{
			options.NodeLayerConstraint.ID(): string(options.LayerConstraintFirst),
		}
	}
	want, _ := graph.Clone(root)

	_, err := layered.Layout(context.Background(), root, nil)
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("Layout() error = %v, want CONFIGURATION", err)
	}
	if !reflect.DeepEqual(root, want) {
		t.Error("graph modified despite configuration error")
	}
}

func TestLayout_Directions(t *testing.T) {
	tests := []struct {
		dir   options.Direction
		after func(a, b *graph.Node) bool
	}{
		{options.DirectionRight, func(a, b *graph.Node) bool { return b.X >= a.X+a.Width }},
		{options.DirectionLeft, func(a, b *graph.Node) bool { return a.X >= b.X+b.Width }},
		{options.DirectionDown, func(a, b *graph.Node) bool { return b.Y >= a.Y+a.Height }},
		{options.DirectionUp, func(a, b *graph.Node) bool { return a.Y >= b.Y+b.Height }},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			root := build([]string{"a", "b"}, [2]string{"a", "b"})
			run(t, root, graph.Properties{options.LayoutDirection.ID(): string(tt.dir)})
			a, b := child(root, "a"), child(root, "b")
			if !tt.after(a, b) {
				t.Errorf("a = (%v,%v), b = (%v,%v): b not after a in direction %s", a.X, a.Y, b.X, b.Y, tt.dir)
			}
			if a.Width != 30 || a.Height != 20 {
				t.Errorf("a size = %vx%v, want 30x20", a.Width, a.Height)
			}
			if len(root.Edges[0].Sections[0].BendPoints) != 0 {
				t.Errorf("BendPoints = %v, want none", root.Edges[0].Sections[0].BendPoints)
			}
		})
	}
}

func TestLayout_Strategies(t *testing.T) {
	pairs := [][2]string{
		{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}, {"a", "d"},
		{"d", "e"}, {"e", "b"}, {"c", "f"}, {"f", "f"}, {"b", "f"},
	}
	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, cb := range []string{"GREEDY", "DEPTH_FIRST", "INTERACTIVE"} {
		for _, ly := range []string{"NETWORK_SIMPLEX", "LONGEST_PATH", "INTERACTIVE"} {
			for _, np := range []string{"BRANDES_KOEPF", "LINEAR_SEGMENTS", "SIMPLE"} {
				t.Run(cb+"/"+ly+"/"+np, func(t *testing.T) {
					root := build(names, pairs...)
					run(t, root, graph.Properties{
						options.CycleBreaking.ID(): cb,
						options.Layering.ID():      ly,
						options.NodePlacement.ID(): np,
					})
					for i, a := range root.Children {
						for _, b := range root.Children[i+1:] {
							if overlap(a, b) {
								t.Errorf("%s at (%v,%v) overlaps %s at (%v,%v)", a.ID, a.X, a.Y, b.ID, b.X, b.Y)
							}
						}
					}
					for _, e := range root.Edges {
						if len(e.Sections) != 1 {
							t.Errorf("edge %s has %d sections, want 1", e.ID, len(e.Sections))
						}
					}
				})
			}
		}
	}
}

func TestLayout_WideNodesSimplePlacement(t *testing.T) {
	names := []string{"a", "w", "b", "c", "d", "e", "f", "g"}
	pairs := [][2]string{
		{"a", "w"}, {"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "e"},
		{"w", "e"}, {"a", "f"}, {"f", "c"}, {"g", "d"}, {"b", "g"},
	}
	for _, wide := range []options.WideNodesStrategy{options.WideNodesAggressive, options.WideNodesCareful} {
		for seed := 1; seed <= 8; seed++ {
			root := build(names, pairs...)
			child(root, "w").Width = 150
			child(root, "f").Height = 45
			run(t, root, graph.Properties{
				options.WideNodes.ID():     string(wide),
				options.NodePlacement.ID(): string(options.PlacementSimple),
				options.RandomSeed.ID():    float64(seed),
			})
			for i, a := range root.Children {
				for _, b := range root.Children[i+1:] {
					if overlap(a, b) {
						t.Errorf("%s seed %d: %s at (%v,%v) overlaps %s at (%v,%v)",
							wide, seed, a.ID, a.X, a.Y, b.ID, b.X, b.Y)
					}
				}
			}
		}
	}
}

func TestLayout_Hierarchy(t *testing.T) {
	inner := build([]string{"x", "y"}, [2]string{"x", "y"})
	inner.ID = "c"
	inner.Edges[0].ID = "inner"
	root := &graph.Node{
		ID:       "root",
		Children: []*graph.Node{inner, node("d")},
		Edges:    []*graph.Edge{edge("out", "c", "d"), edge("deep", "y", "d")},
	}

	res := run(t, root, nil)
	if res.Graphs != 2 {
		t.Errorf("Graphs = %d, want 2", res.Graphs)
	}
	if inner.Width <= 0 || inner.Height <= 0 {
		t.Fatalf("compound size = %vx%v, want positive", inner.Width, inner.Height)
	}
	x, y := child(inner, "x"), child(inner, "y")
	if x.X+x.Width > inner.Width || y.X+y.Width > inner.Width {
		t.Errorf("children exceed compound width %v", inner.Width)
	}
	if d := child(root, "d"); overlap(inner, d) {
		t.Errorf("compound overlaps d")
	}
	for _, e := range root.Edges {
		if len(e.Sections) != 1 {
			t.Errorf("edge %s has %d sections, want 1", e.ID, len(e.Sections))
		}
	}
}

func TestLayout_ExternalPorts(t *testing.T) {
	inner := build([]string{"x"})
	inner.ID = "c"
	inner.Ports = []*graph.Port{{ID: "c.in"}}
	inner.Edges = []*graph.Edge{edge("enter", "c.in", "x")}
	root := &graph.Node{
		ID:       "root",
		Children: []*graph.Node{node("s"), inner},
		Edges:    []*graph.Edge{edge("feed", "s", "c.in")},
	}

	run(t, root, nil)
	p := inner.Ports[0]
	if p.Side != graph.SideWest {
		t.Errorf("port side = %q, want %q", p.Side, graph.SideWest)
	}
	x := child(inner, "x")
	if p.X > x.X {
		t.Errorf("port x = %v, want left of x at %v", p.X, x.X)
	}
}

func TestLayout_Canceled(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	want, _ := graph.Clone(root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := layered.Layout(ctx, root, nil)
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Layout() error = %v, want CANCELED", err)
	}
	if res == nil || res.Graphs != 0 || !slices.Equal(res.Skipped, []string{"root"}) {
		t.Errorf("Result = %+v, want root skipped", res)
	}
	if !reflect.DeepEqual(root, want) {
		t.Error("graph modified although cancellation came before layering")
	}
}

func TestLayout_CanceledAfterLayering(t *testing.T) {
	root := build([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "c"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := layered.WithInspector(func(phase string, _ *lgraph.LGraph) {
		if phase == layered.PhaseLayering {
			cancel()
		}
	})

	res, err := layered.Layout(ctx, root, nil, stop, layered.WithValidation())
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Layout() error = %v, want CANCELED", err)
	}
	if res == nil || res.Graphs != 1 {
		t.Fatalf("Result = %+v, want the best-effort layout", res)
	}
	if _, ok := res.PhaseTimes[layered.PhaseCrossings]; ok {
		t.Error("crossing minimization ran after cancellation")
	}
	if _, ok := res.PhaseTimes[layered.PhaseRouting]; !ok {
		t.Error("routing skipped after cancellation")
	}
	for _, e := range root.Edges {
		if len(e.Sections) != 1 {
			t.Errorf("edge %s has %d sections, want 1", e.ID, len(e.Sections))
		}
	}
	for i, a := range root.Children {
		for _, b := range root.Children[i+1:] {
			if overlap(a, b) {
				t.Errorf("%s overlaps %s", a.ID, b.ID)
			}
		}
	}
}

func TestLayout_Labels(t *testing.T) {
	root := build([]string{"a", "b"}, [2]string{"a", "b"})
	root.Edges[0].Labels = []*graph.Label{{ID: "l", Width: 40, Height: 10}}
	run(t, root, nil)

	l := root.Edges[0].Labels[0]
	a, b := child(root, "a"), child(root, "b")
	if l.X < a.X+a.Width || l.X+l.Width > b.X {
		t.Errorf("label x = %v, want between a (%v) and b (%v)", l.X, a.X+a.Width, b.X)
	}
}

func TestNewPipeline_Phases(t *testing.T) {
	cfg := options.Default()
	cfg.GreedySwitch = options.GreedySwitchOff
	p, err := layered.NewPipeline(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ph := range p.Phases() {
		names = append(names, ph.Name())
	}
	want := []string{
		layered.PhaseConstraints, layered.PhaseConstraintEdges, layered.PhaseCycleBreaking,
		layered.PhasePortSides, layered.PhaseLabelDummies, layered.PhaseLayering,
		layered.PhaseLongEdges, layered.PhaseNorthSouth, layered.PhaseCrossings,
		layered.PhasePortDistribution, layered.PhaseSelfLoops, layered.PhasePlacement,
		layered.PhaseWideNodeJoin, layered.PhaseRouting, layered.PhaseDirection,
	}
	if !slices.Equal(names, want) {
		t.Errorf("Phases() = %v, want %v", names, want)
	}
}

func TestNewPipeline_UnknownStrategy(t *testing.T) {
	cfg := options.Default()
	cfg.NodePlacement = "GRID"
	if _, err := layered.NewPipeline(&cfg); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("NewPipeline() error = %v, want CONFIGURATION", err)
	}
}

func TestPipeline_Run(t *testing.T) {
	root := build([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})
	cfg := options.Default()
	g, err := transfer.Import(root, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	p, err := layered.NewPipeline(&cfg, layered.WithValidation())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(context.Background(), g); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !p.Complete() {
		t.Error("Complete() = false after a successful run")
	}
	st := p.Stats()
	if st.Layers != 3 || st.Dummies != 1 {
		t.Errorf("Stats = %+v, want 3 layers and 1 dummy", st)
	}
	if n := len(g.NodesOf(lgraph.LongEdge)); n != 0 {
		t.Errorf("%d long-edge dummies left after routing", n)
	}
	for _, n := range g.NodesOf(lgraph.Normal) {
		if math.IsNaN(n.Pos.X) || math.IsNaN(n.Pos.Y) {
			t.Errorf("%s has no position", n)
		}
	}
}
