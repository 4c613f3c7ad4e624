package pipeline

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
	"github.com/matzehuels/sugiyama/pkg/observability"
)

func chain(names ...string) *graph.Node {
	root := &graph.Node{ID: "root"}
	for _, n := range names {
		root.Children = append(root.Children, &graph.Node{ID: n, Width: 30, Height: 20})
	}
	for i := 1; i < len(names); i++ {
		root.Edges = append(root.Edges, &graph.Edge{
			ID:      names[i-1] + names[i],
			Sources: []string{names[i-1]},
			Targets: []string{names[i]},
		})
	}
	return root
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil)
}

// countingHooks records cache events.
type countingHooks struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v, want all defaults set", r)
	}
}

func TestRunnerLayout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	root := chain("a", "b", "c")

	res, err := r.Layout(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if res.CacheHit {
		t.Error("NullCache should never hit")
	}
	if res.RunID == "" || len(res.GraphHash) != 64 {
		t.Errorf("RunID = %q, GraphHash = %q", res.RunID, res.GraphHash)
	}
	if res.Stats.Layers != 3 {
		t.Errorf("Layers = %d, want 3", res.Stats.Layers)
	}
	if res.Graph.Children[1].X <= res.Graph.Children[0].X {
		t.Errorf("b.X = %v, want > a.X = %v", res.Graph.Children[1].X, res.Graph.Children[0].X)
	}
}

func TestRunnerLayout_InputUntouched(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	root := chain("a", "b")
	before, _ := graph.Clone(root)

	if _, err := r.Layout(context.Background(), root, Options{}); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !reflect.DeepEqual(root, before) {
		t.Error("Layout modified its input")
	}
}

func TestRunnerLayout_Cache(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newFileRunner(t)
	ctx := context.Background()
	root := chain("a", "b", "c")

	first, err := r.Layout(ctx, root, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	second, err := r.Layout(ctx, root, Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v, %v, want false, true", first.CacheHit, second.CacheHit)
	}
	if first.RunID == second.RunID {
		t.Error("RunID should differ between calls")
	}
	want, _ := graph.MarshalGraph(first.Graph)
	got, _ := graph.MarshalGraph(second.Graph)
	if !bytes.Equal(got, want) {
		t.Error("cached graph differs from computed graph")
	}
	if second.Stats.Layers != first.Stats.Layers {
		t.Errorf("cached Layers = %d, want %d", second.Stats.Layers, first.Stats.Layers)
	}
	if hooks.misses != 1 || hooks.hits != 1 || hooks.set != 1 {
		t.Errorf("hooks = %d misses, %d hits, %d sets, want 1 each", hooks.misses, hooks.hits, hooks.set)
	}

	// Different options miss.
	third, err := r.Layout(ctx, root, Options{Properties: graph.Properties{"direction": "DOWN"}})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if third.CacheHit {
		t.Error("different properties should miss the cache")
	}

	// NoCache bypasses a warm cache.
	fourth, err := r.Layout(ctx, root, Options{NoCache: true})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if fourth.CacheHit {
		t.Error("NoCache should bypass the cache")
	}
}

func TestRunnerLayout_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		root *graph.Node
		opts Options
		code errors.Code
	}{
		{"nil graph", nil, Options{}, errors.ErrCodeInvalidInput},
		{"too many nodes", chain("a", "b", "c"), Options{MaxNodes: 2}, errors.ErrCodeInvalidInput},
		{"unknown option", chain("a"), Options{Properties: graph.Properties{"x": 1.0}}, errors.ErrCodeConfiguration},
		{"bad value", chain("a"), Options{Properties: graph.Properties{"spacing.nodeNode": -1.0}}, errors.ErrCodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Layout(ctx, tt.root, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Layout() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunnerLayout_Canceled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Layout(ctx, chain("a", "b"), Options{})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("Layout() error = %v, want CANCELED", err)
	}
	if res == nil || res.Graph == nil {
		t.Fatal("canceled layout should return the partial result")
	}
}

func TestRunnerBatch(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	roots := []*graph.Node{
		chain("a", "b"),
		nil,
		chain("x", "y", "z"),
	}

	results, errs := r.Batch(context.Background(), roots, Options{})
	if len(results) != 3 || len(errs) != 3 {
		t.Fatalf("Batch() returned %d results, %d errors, want 3 each", len(results), len(errs))
	}
	if errs[0] != nil || errs[2] != nil {
		t.Errorf("errs = %v, want only errs[1]", errs)
	}
	if errs[1] == nil || results[1] != nil {
		t.Errorf("nil graph: result = %v, err = %v", results[1], errs[1])
	}
	if results[2].Stats.Layers != 3 {
		t.Errorf("results[2].Layers = %d, want 3", results[2].Stats.Layers)
	}
}

func TestRunnerDebug(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	root := chain("a", "b", "c")
	root.Edges = append(root.Edges, &graph.Edge{ID: "ac", Sources: []string{"a"}, Targets: []string{"c"}})

	tests := []struct {
		phase, format string
		want          []string
	}{
		{layered.PhaseLayering, FormatDOT, []string{"digraph G", "subgraph layer_2"}},
		{layered.PhaseLongEdges, FormatDOT, []string{"shape=point"}},
		{layered.PhaseCrossings, FormatJSON, []string{`"layers"`, `"crossings": 0`, `"dummies": 1`}},
		{layered.PhaseRouting, FormatSVG, []string{"<svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.phase+"/"+tt.format, func(t *testing.T) {
			out, err := r.Debug(ctx, root, Options{}, tt.phase, tt.format)
			if err != nil {
				t.Fatalf("Debug: %v", err)
			}
			for _, w := range tt.want {
				if !bytes.Contains(out, []byte(w)) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRunnerDebug_Cache(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	root := chain("a", "b")

	first, err := r.Debug(ctx, root, Options{}, layered.PhaseLayering, FormatDOT)
	if err != nil {
		t.Fatalf("Debug: %v", err)
	}
	key := r.Keyer.DebugKey(mustHash(t, root), Options{}.DebugKeyOpts(layered.PhaseLayering, FormatDOT))
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("Get(%s) = hit %v, err %v, want a hit", key, hit, err)
	}
	if !bytes.Equal(data, first) {
		t.Error("cached debug output differs")
	}
}

func TestRunnerDebug_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Debug(ctx, chain("a"), Options{}, "render", FormatDOT)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown phase: error = %v, want INVALID_INPUT", err)
	}
	_, err = r.Debug(ctx, chain("a"), Options{}, layered.PhaseLayering, "png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown format: error = %v, want INVALID_INPUT", err)
	}

	opts := Options{Properties: graph.Properties{"crossingMinimization.greedySwitch.type": "OFF"}}
	_, err = r.Debug(ctx, chain("a", "b"), opts, layered.PhaseGreedySwitch, FormatDOT)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("skipped phase: error = %v, want NOT_FOUND", err)
	}
	if err != nil && !strings.Contains(err.Error(), layered.PhaseGreedySwitch) {
		t.Errorf("error %q should name the phase", err)
	}
}

func mustHash(t *testing.T, root *graph.Node) string {
	t.Helper()
	h, err := hashGraph(root)
	if err != nil {
		t.Fatalf("hashGraph: %v", err)
	}
	return h
}
