package layered

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered/layering"
	"github.com/matzehuels/sugiyama/pkg/layered/transfer"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// =============================================================================
// Options
// =============================================================================

// Option configures a layout run.
type Option func(*settings)

type settings struct {
	logger   *log.Logger
	validate bool
	inspect  func(phase string, g *lgraph.LGraph)
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// WithLogger sets the logger used for phase timings and convergence notes.
// Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithValidation checks the layout graph invariants after layering, long-edge
// splitting, and routing. Violations fail the run with INTERNAL_CONSISTENCY.
func WithValidation() Option {
	return func(s *settings) { s.validate = true }
}

// WithInspector calls fn after every successful phase. Sibling graphs are
// laid out concurrently, so fn must be safe for concurrent use.
func WithInspector(fn func(phase string, g *lgraph.LGraph)) Option {
	return func(s *settings) { s.inspect = fn }
}

// =============================================================================
// Results
// =============================================================================

// Stats summarizes one or more layout runs.
type Stats struct {
	Nodes     int // input children laid out
	Edges     int // input edges routed
	Dummies   int // dummy nodes inserted
	Layers    int // most layers in any graph
	Crossings int // crossings after minimization
	Reversed  int // edges reversed to make the graphs acyclic

	PhaseTimes map[string]time.Duration
	// Limited names the phases that stopped on their iteration budget.
	Limited []string
}

func (s *Stats) add(o Stats) {
	s.Nodes += o.Nodes
	s.Edges += o.Edges
	s.Dummies += o.Dummies
	s.Layers = max(s.Layers, o.Layers)
	s.Crossings += o.Crossings
	s.Reversed += o.Reversed
	if s.PhaseTimes == nil {
		s.PhaseTimes = map[string]time.Duration{}
	}
	for k, v := range o.PhaseTimes {
		s.PhaseTimes[k] += v
	}
	s.Limited = append(s.Limited, o.Limited...)
}

// Result reports a layout of a whole hierarchy.
type Result struct {
	Stats
	// Converged is false when any heuristic stopped on its iteration budget.
	// The layout is valid either way.
	Converged bool
	// Graphs counts the compound nodes whose children were laid out.
	Graphs int
	// Skipped lists compound nodes left untouched: noLayout, or an
	// algorithm other than layered.
	Skipped []string
}

func (r *Result) merge(o *Result) {
	r.Stats.add(o.Stats)
	r.Converged = r.Converged && o.Converged
	r.Graphs += o.Graphs
	r.Skipped = append(r.Skipped, o.Skipped...)
}

// =============================================================================
// Layout
// =============================================================================

// job is the resolved work for one compound node.
type job struct {
	cfg  options.Config
	skip bool
}

// Layout computes a layered drawing for every compound node below root,
// root included, and writes positions, port sides, edge sections, and sizes
// back into the graph.
//
// props override the properties of every compound node. All options are
// resolved and checked before any graph is touched; a CONFIGURATION error
// leaves root unchanged. Children are laid out before their parent so the
// parent sees their final sizes, and siblings run concurrently.
//
// The timeout option of root bounds the whole run. On cancellation Layout
// returns a CANCELED error together with the partial Result. A compound node
// whose graph was already layered still gets a complete best-effort drawing,
// finished with the cheapest strategies. A compound node canceled before
// layering keeps its input coordinates and is listed in Result.Skipped.
func Layout(ctx context.Context, root *graph.Node, props graph.Properties, opts ...Option) (*Result, error) {
	if err := graph.Validate(root); err != nil {
		return nil, err
	}
	l := &layouter{opts: opts, s: newSettings(opts), jobs: map[*graph.Node]*job{}}
	if err := l.plan(root, nil, props); err != nil {
		return nil, err
	}
	if t := l.jobs[root].cfg.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	res, err := l.layout(ctx, root)
	if err == nil {
		err = l.canceled
	}
	return res, err
}

type layouter struct {
	opts []Option
	s    settings
	jobs map[*graph.Node]*job

	mu       sync.Mutex
	canceled error
}

// plan resolves the configuration of n and its compound descendants and
// dry-runs the checks that can fail on configuration alone.
func (l *layouter) plan(n *graph.Node, inherited, overrides graph.Properties) error {
	if !n.IsCompound() {
		return nil
	}
	props := options.Merge(inherited, n.Properties, overrides)
	cfg, err := options.Resolve(props)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	nodeOpts, err := options.ResolveNode(n.Properties)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	j := &job{cfg: cfg}
	l.jobs[n] = j
	if nodeOpts.NoLayout {
		j.skip = true
		return nil
	}
	if cfg.Algorithm == options.AlgorithmLayered {
		if _, err := NewPipeline(&j.cfg, l.opts...); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
		g, err := transfer.Import(n, &j.cfg)
		if err != nil {
			return err
		}
		if err := layering.CheckConstraints(g, &j.cfg); err != nil {
			return err
		}
	} else {
		j.skip = true
	}
	for _, c := range n.Children {
		if err := l.plan(c, props, overrides); err != nil {
			return err
		}
	}
	return nil
}

// layout lays out the compound descendants of n, then n itself.
func (l *layouter) layout(ctx context.Context, n *graph.Node) (*Result, error) {
	j := l.jobs[n]
	res := &Result{Converged: true}
	if j.skip && !l.descend(n) {
		res.Skipped = append(res.Skipped, n.ID)
		return res, nil
	}

	var children []*graph.Node
	for _, c := range n.Children {
		if c.IsCompound() {
			children = append(children, c)
		}
	}
	results := make([]*Result, len(children))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range children {
		eg.Go(func() error {
			r, err := l.layout(gctx, c)
			results[i] = r
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, r := range results {
		res.merge(r)
	}

	if j.skip {
		res.Skipped = append(res.Skipped, n.ID)
		return res, nil
	}
	r, err := l.run(ctx, n, j)
	if err != nil {
		return nil, err
	}
	res.merge(r)
	return res, nil
}

// descend reports whether a skipped node's children still need a layout.
// noLayout freezes the whole subtree.
func (l *layouter) descend(n *graph.Node) bool {
	nodeOpts, _ := options.ResolveNode(n.Properties)
	return !nodeOpts.NoLayout
}

// run lays out the children of one compound node. Cancellation is recorded
// rather than returned so that sibling graphs keep their best-effort
// layouts.
func (l *layouter) run(ctx context.Context, n *graph.Node, j *job) (*Result, error) {
	res := &Result{Converged: true}
	p, err := NewPipeline(&j.cfg, l.opts...)
	if err != nil {
		return nil, err
	}
	g, err := transfer.Import(n, &j.cfg)
	if err != nil {
		return nil, err
	}
	nodes, edges := len(g.NodesOf(lgraph.Normal)), len(g.LiveEdges())

	start := time.Now()
	err = p.Run(ctx, g)
	if err != nil && !errors.Is(err, errors.ErrCodeCanceled) {
		return nil, err
	}
	if err != nil {
		l.mu.Lock()
		if l.canceled == nil {
			l.canceled = err
		}
		l.mu.Unlock()
	}
	if !p.Complete() {
		res.Skipped = append(res.Skipped, n.ID)
		return res, nil
	}

	transfer.Export(g, n, &j.cfg)
	res.Stats = p.Stats()
	res.Nodes, res.Edges = nodes, edges
	res.Converged = len(res.Limited) == 0
	res.Graphs = 1
	l.s.logger.Debug("graph laid out", "graph", n.ID, "nodes", nodes, "edges", edges,
		"layers", res.Layers, "crossings", res.Crossings, "duration", time.Since(start))
	return res, nil
}
