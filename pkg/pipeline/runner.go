package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/debug"
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLayout = "layout"
	keyTypeDebug  = "debug"
)

// Runner encapsulates layout execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Layout lays out a copy of root. The input graph is never modified.
//
// When the layout is canceled, Layout returns the partial Result together
// with the CANCELED error; partial layouts are never cached.
func (r *Runner) Layout(ctx context.Context, root *graph.Node, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no graph")
	}

	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	nodes, err := checkSize(root, opts.MaxNodes)
	if err != nil {
		return nil, err
	}
	if result.GraphHash, err = hashGraph(root); err != nil {
		return nil, err
	}
	logger := opts.Logger.With("run", result.RunID)

	key := r.Keyer.LayoutKey(result.GraphHash, opts.LayoutKeyOpts())
	if !opts.NoCache {
		if data, hit := r.lookup(ctx, key, keyTypeLayout); hit {
			var c cached
			if err := json.Unmarshal(data, &c); err == nil && c.Graph != nil {
				result.Graph = c.Graph
				result.Stats = c.Stats
				result.CacheHit = true
				result.Duration = time.Since(start)
				logger.Info("layout from cache", "hash", result.GraphHash[:12])
				return result, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	work, err := graph.Clone(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy graph")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, result.GraphHash, nodes)
	stats, err := layered.Layout(ctx, work, opts.Properties, r.layoutOptions(opts, logger)...)
	result.Duration = time.Since(start)
	hooks.OnLayoutComplete(ctx, result.GraphHash, result.Duration, err)

	if err != nil {
		if errors.Is(err, errors.ErrCodeCanceled) && stats != nil {
			logger.Warn("layout canceled", "graphs", stats.Graphs, "duration", result.Duration)
			result.Graph = work
			result.Stats = *stats
			return result, err
		}
		return nil, err
	}
	result.Graph = work
	result.Stats = *stats

	logger.Info("computed layout",
		"nodes", stats.Nodes,
		"layers", stats.Layers,
		"crossings", stats.Crossings,
		"converged", stats.Converged,
		"duration", result.Duration)

	if !opts.NoCache {
		if data, err := json.Marshal(cached{Graph: work, Stats: *stats}); err == nil {
			r.store(ctx, key, keyTypeLayout, data, cache.TTLLayout)
		}
	}
	return result, nil
}

// Batch lays out every graph concurrently. results[i] and errs[i] belong
// to roots[i]; one failing graph does not stop the others.
func (r *Runner) Batch(ctx context.Context, roots []*graph.Node, opts Options) ([]*Result, []error) {
	results := make([]*Result, len(roots))
	errs := make([]error, len(roots))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, root := range roots {
		g.Go(func() error {
			results[i], errs[i] = r.Layout(ctx, root, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// Debug lays out a copy of root and renders the top-level layout graph as
// it was right after phase, in the given format. It fails with NOT_FOUND
// when phase did not run for the top-level graph, for example a greedy
// switch that is turned off.
func (r *Runner) Debug(ctx context.Context, root *graph.Node, opts Options, phase, format string) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ValidatePhase(phase); err != nil {
		return nil, err
	}
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no graph")
	}
	if _, err := checkSize(root, opts.MaxNodes); err != nil {
		return nil, err
	}
	hash, err := hashGraph(root)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.DebugKey(hash, opts.DebugKeyOpts(phase, format))
	if !opts.NoCache {
		if data, hit := r.lookup(ctx, key, keyTypeDebug); hit {
			return data, nil
		}
	}

	work, err := graph.Clone(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "copy graph")
	}

	// The graph keeps changing after the phase, so it is rendered inside
	// the inspector. Nested graphs report concurrently.
	var (
		mu       sync.Mutex
		out      bytes.Buffer
		captured bool
		capErr   error
	)
	inspect := func(name string, g *lgraph.LGraph) {
		if name != phase || g.Origin != work {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		captured = true
		if format == FormatJSON {
			capErr = debug.WriteJSON(&out, g)
		} else {
			capErr = debug.WriteDOT(&out, g)
		}
	}

	lopts := append(r.layoutOptions(opts, opts.Logger), layered.WithInspector(inspect))
	if _, err := layered.Layout(ctx, work, opts.Properties, lopts...); err != nil && !captured {
		return nil, err
	}
	if capErr != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, capErr, "write %s", format)
	}
	if !captured {
		return nil, errors.New(errors.ErrCodeNotFound, "phase %s did not run for graph %q", phase, root.ID)
	}

	data := out.Bytes()
	if format == FormatSVG {
		if data, err = debug.RenderSVG(ctx, data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
	}
	if !opts.NoCache {
		r.store(ctx, key, keyTypeDebug, data, cache.TTLDebug)
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) layoutOptions(opts Options, logger *log.Logger) []layered.Option {
	lopts := []layered.Option{layered.WithLogger(logger)}
	if opts.Validate {
		lopts = append(lopts, layered.WithValidation())
	}
	return lopts
}

// lookup reads key from the cache. Cache errors are logged and count as a
// miss.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
