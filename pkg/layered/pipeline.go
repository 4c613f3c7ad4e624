package layered

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/layered/cycles"
	"github.com/matzehuels/sugiyama/pkg/layered/layering"
	"github.com/matzehuels/sugiyama/pkg/layered/ordering"
	"github.com/matzehuels/sugiyama/pkg/layered/placement"
	"github.com/matzehuels/sugiyama/pkg/layered/routing"
	"github.com/matzehuels/sugiyama/pkg/layered/transfer"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/observability"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// Phase names, in pipeline order.
const (
	PhaseConstraints      = "constraints"
	PhasePartitions       = "partitions"
	PhaseConstraintEdges  = "constraintEdges"
	PhaseCycleBreaking    = "cycleBreaking"
	PhasePortSides        = "portSides"
	PhaseLabelDummies     = "labelDummies"
	PhaseLayering         = "layering"
	PhaseWideNodeSplit    = "wideNodeSplit"
	PhaseLongEdges        = "longEdges"
	PhaseNorthSouth       = "northSouthPorts"
	PhaseCrossings        = "crossingMinimization"
	PhaseGreedySwitch     = "greedySwitch"
	PhaseCarefulSplit     = "wideNodeSplitCareful"
	PhasePortDistribution = "portDistribution"
	PhaseSelfLoops        = "selfLoops"
	PhasePlacement        = "nodePlacement"
	PhaseWideNodeJoin     = "wideNodeJoin"
	PhaseRouting          = "edgeRouting"
	PhaseDirection        = "direction"
)

// Phase is one step of the layered pipeline. A phase reads the resolved
// configuration and transforms the layout graph in place.
type Phase interface {
	Name() string
	Run(ctx context.Context, g *lgraph.LGraph, cfg *options.Config) error
}

// step is the Phase implementation used by the pipeline. Steps marked
// required must run even after cancellation for the graph to be exportable;
// fallback, if set, replaces run in that case.
type step struct {
	name     string
	run      func(ctx context.Context, g *lgraph.LGraph, cfg *options.Config) error
	required bool
	fallback func(g *lgraph.LGraph) error
}

func (s *step) Name() string { return s.name }

func (s *step) Run(ctx context.Context, g *lgraph.LGraph, cfg *options.Config) error {
	return s.run(ctx, g, cfg)
}

// Pipeline is the ordered phase list for one layout graph, with strategies
// selected once from the configuration. A Pipeline collects statistics and
// must not be shared between concurrent runs.
type Pipeline struct {
	cfg     *options.Config
	steps   []*step
	layered int // index of the layering step
	stats   Stats
	logger  *log.Logger

	validate bool
	inspect  func(phase string, g *lgraph.LGraph)
	complete bool
}

// NewPipeline selects the strategies configured in cfg and returns the
// pipeline that runs them. Unknown strategies yield a CONFIGURATION error.
func NewPipeline(cfg *options.Config, opts ...Option) (*Pipeline, error) {
	breaker, err := cycles.New(cfg)
	if err != nil {
		return nil, err
	}
	layerer, err := layering.New(cfg)
	if err != nil {
		return nil, err
	}
	minimizer, err := ordering.New(cfg)
	if err != nil {
		return nil, err
	}
	switcher, err := ordering.NewSwitcher(cfg)
	if err != nil {
		return nil, err
	}
	placer, err := placement.New(cfg)
	if err != nil {
		return nil, err
	}
	router := routing.New(cfg)

	o := newSettings(opts)
	p := &Pipeline{
		cfg:      cfg,
		logger:   o.logger,
		validate: o.validate,
		inspect:  o.inspect,
		stats:    Stats{PhaseTimes: map[string]time.Duration{}},
	}
	st := &p.stats

	p.add(PhaseConstraints, func(_ context.Context, g *lgraph.LGraph, cfg *options.Config) error {
		return layering.CheckConstraints(g, cfg)
	})
	if cfg.Partitioning {
		p.add(PhasePartitions, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
			st.Reversed += cycles.ReversePartitionEdges(g)
			return nil
		})
	}
	p.add(PhaseConstraintEdges, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		st.Reversed += cycles.ReverseConstraintEdges(g)
		return nil
	})
	p.add(PhaseCycleBreaking, func(ctx context.Context, g *lgraph.LGraph, _ *options.Config) error {
		n, err := breaker.Break(ctx, g)
		st.Reversed += n
		return err
	})
	p.add(PhasePortSides, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		ordering.AssignPortSides(g)
		return nil
	})
	p.add(PhaseLabelDummies, func(_ context.Context, g *lgraph.LGraph, cfg *options.Config) error {
		st.Dummies += layering.InsertLabelDummies(g, cfg.Spacing.LabelNode)
		return nil
	})
	p.layered = len(p.steps)
	p.add(PhaseLayering, func(ctx context.Context, g *lgraph.LGraph, _ *options.Config) error {
		converged, err := layerer.Assign(ctx, g)
		if err != nil {
			return err
		}
		p.limit(PhaseLayering, converged)
		st.Layers = len(g.Layers)
		return p.check(g, false)
	})
	if cfg.WideNodes == options.WideNodesAggressive {
		p.add(PhaseWideNodeSplit, p.splitWide)
	}
	p.require(PhaseLongEdges, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		st.Dummies += ordering.SplitLongEdges(g)
		st.Layers = len(g.Layers)
		return p.check(g, true)
	}, nil)
	p.add(PhaseNorthSouth, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		st.Dummies += ordering.InsertNorthSouthDummies(g)
		return nil
	})
	p.add(PhaseCrossings, func(ctx context.Context, g *lgraph.LGraph, _ *options.Config) error {
		res, err := minimizer.Minimize(ctx, g)
		st.Crossings = res.Crossings
		if err != nil {
			return err
		}
		p.limit(PhaseCrossings, res.Converged)
		p.logger.Debug("crossings minimized", "graph", graphID(g), "crossings", res.Crossings, "sweeps", res.Sweeps)
		return nil
	})
	if switcher != nil {
		p.add(PhaseGreedySwitch, func(ctx context.Context, g *lgraph.LGraph, cfg *options.Config) error {
			if _, err := switcher.Switch(ctx, g); err != nil {
				return err
			}
			st.Crossings = lgraph.NewCounter(g, cfg.HyperedgeCounting).Total(g.Order())
			return nil
		})
	}
	if cfg.WideNodes == options.WideNodesCareful {
		p.add(PhaseCarefulSplit, p.splitWide)
	}
	p.require(PhasePortDistribution, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		ordering.DistributePorts(g)
		ordering.PlacePorts(g)
		return nil
	}, nil)
	p.require(PhaseSelfLoops, func(_ context.Context, g *lgraph.LGraph, cfg *options.Config) error {
		routing.ReserveSelfLoops(g, cfg.SelfLoopPlacement, cfg.Spacing.SelfLoop)
		return nil
	}, nil)
	p.require(PhasePlacement, func(ctx context.Context, g *lgraph.LGraph, _ *options.Config) error {
		return placer.Place(ctx, g)
	}, func(g *lgraph.LGraph) error {
		return placement.Simple(cfg.Spacing).Place(context.Background(), g)
	})
	p.require(PhaseWideNodeJoin, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		layering.JoinWideNodes(g)
		return nil
	}, nil)
	p.require(PhaseRouting, func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
		if err := router.Route(g); err != nil {
			return err
		}
		if p.validate {
			return g.Validate()
		}
		return nil
	}, nil)
	p.require(PhaseDirection, func(_ context.Context, g *lgraph.LGraph, cfg *options.Config) error {
		transfer.Transform(g, cfg.Direction)
		return nil
	}, nil)
	return p, nil
}

func (p *Pipeline) add(name string, run func(context.Context, *lgraph.LGraph, *options.Config) error) {
	p.steps = append(p.steps, &step{name: name, run: run})
}

func (p *Pipeline) require(name string, run func(context.Context, *lgraph.LGraph, *options.Config) error,
	fallback func(*lgraph.LGraph) error) {
	p.steps = append(p.steps, &step{name: name, run: run, required: true, fallback: fallback})
}

func (p *Pipeline) splitWide(_ context.Context, g *lgraph.LGraph, cfg *options.Config) error {
	n, err := layering.SplitWideNodes(g, cfg)
	p.stats.Dummies += n
	p.stats.Layers = len(g.Layers)
	return err
}

// limit records a heuristic that stopped on its iteration budget.
func (p *Pipeline) limit(phase string, converged bool) {
	if converged {
		return
	}
	p.stats.Limited = append(p.stats.Limited, phase)
	p.logger.Info(errors.ErrConvergenceLimit.Error(), "phase", phase)
}

func (p *Pipeline) check(g *lgraph.LGraph, proper bool) error {
	if !p.validate {
		return nil
	}
	return g.ValidateLayering(proper)
}

// Phases returns the phases in the order Run executes them.
func (p *Pipeline) Phases() []Phase {
	out := make([]Phase, len(p.steps))
	for i, s := range p.steps {
		out[i] = s
	}
	return out
}

// Stats returns the statistics collected by the last Run.
func (p *Pipeline) Stats() Stats { return p.stats }

// Run executes every phase on g. The context is checked between phases
// (and by the long-running phases themselves).
//
// When ctx is done before layering has finished, Run returns a CANCELED
// error, Complete reports false, and g must be discarded; Layout then leaves
// the input node untouched. Once the graph is layered, cancellation
// skips the optional phases and finishes the required ones with their
// cheapest strategy (SIMPLE placement), so g holds a complete best-effort
// layout when the CANCELED error is returned.
//
// CONFIGURATION and INTERNAL_CONSISTENCY errors abort immediately.
func (p *Pipeline) Run(ctx context.Context, g *lgraph.LGraph) error {
	for i, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, g, i, err)
		}
		err := p.runStep(ctx, g, s)
		if err == nil {
			continue
		}
		if ctx.Err() == nil || errors.Is(err, errors.ErrCodeInternalConsistency) {
			return err
		}
		next := i + 1
		if s.required {
			next = i
		}
		return p.finish(ctx, g, next, ctx.Err())
	}
	p.complete = true
	return nil
}

// Complete reports whether the last Run left a fully routed graph, possibly
// a best-effort one after cancellation.
func (p *Pipeline) Complete() bool { return p.complete }

// finish completes a canceled run from step i on.
func (p *Pipeline) finish(ctx context.Context, g *lgraph.LGraph, i int, cause error) error {
	canceled := errors.Wrap(errors.ErrCodeCanceled, cause, "layout of %q canceled", graphID(g))
	if i <= p.layered {
		return canceled
	}
	p.logger.Debug("finishing canceled layout", "graph", graphID(g), "from", p.steps[min(i, len(p.steps)-1)].name)
	bg := context.WithoutCancel(ctx)
	for _, s := range p.steps[i:] {
		if !s.required {
			continue
		}
		quick := s
		if s.fallback != nil {
			quick = &step{name: s.name, run: func(_ context.Context, g *lgraph.LGraph, _ *options.Config) error {
				return s.fallback(g)
			}}
		}
		if err := p.runStep(bg, g, quick); err != nil {
			return err
		}
	}
	p.complete = true
	return canceled
}

func (p *Pipeline) runStep(ctx context.Context, g *lgraph.LGraph, s *step) error {
	hooks := observability.Pipeline()
	hooks.OnPhaseStart(ctx, s.name)
	start := time.Now()
	err := s.Run(ctx, g, p.cfg)
	d := time.Since(start)
	p.stats.PhaseTimes[s.name] += d
	hooks.OnPhaseComplete(ctx, s.name, d, err)
	p.logger.Debug("phase", "graph", graphID(g), "phase", s.name, "duration", d)
	if err == nil && p.inspect != nil {
		p.inspect(s.name, g)
	}
	return err
}

func graphID(g *lgraph.LGraph) string {
	if g.Origin == nil {
		return ""
	}
	return g.Origin.ID
}
