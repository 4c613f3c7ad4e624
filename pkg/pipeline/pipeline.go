// Package pipeline runs layouts for the CLI and the HTTP service.
//
// It wraps [layered.Layout] with the pieces every entry point needs: option
// validation, a content-addressed result cache, run identifiers, logging,
// and observability hooks. By centralizing this logic, the CLI and the
// server behave the same for the same input.
//
// # Usage
//
// Create a Runner and lay out a graph:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Layout(ctx, root, pipeline.Options{
//	    Properties: graph.Properties{"direction": "DOWN"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = graph.WriteJSON(res.Graph, os.Stdout)
//
// The input graph is never modified; [Result.Graph] is a laid-out copy.
//
// Capture the layout graph after a phase for debugging:
//
//	svg, err := runner.Debug(ctx, root, opts, layered.PhaseCrossings, pipeline.FormatSVG)
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sugiyama/pkg/buildinfo"
	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxNodes bounds the number of nodes in one graph, counted over
	// the whole hierarchy.
	DefaultMaxNodes = 10000
)

// Format constants for debug output.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported debug formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidPhases is the set of phases a debug capture can stop after.
var ValidPhases = map[string]bool{
	layered.PhaseConstraints:      true,
	layered.PhasePartitions:       true,
	layered.PhaseConstraintEdges:  true,
	layered.PhaseCycleBreaking:    true,
	layered.PhasePortSides:        true,
	layered.PhaseLabelDummies:     true,
	layered.PhaseLayering:         true,
	layered.PhaseWideNodeSplit:    true,
	layered.PhaseLongEdges:        true,
	layered.PhaseNorthSouth:       true,
	layered.PhaseCrossings:        true,
	layered.PhaseGreedySwitch:     true,
	layered.PhaseCarefulSplit:     true,
	layered.PhasePortDistribution: true,
	layered.PhaseSelfLoops:        true,
	layered.PhasePlacement:        true,
	layered.PhaseWideNodeJoin:     true,
	layered.PhaseRouting:          true,
	layered.PhaseDirection:        true,
}

// =============================================================================
// Options - Runner Configuration
// =============================================================================

// Options configures a runner call.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Properties override the layout options of every compound node.
	Properties graph.Properties `json:"properties,omitempty"`
	// MaxNodes rejects larger graphs. Zero means DefaultMaxNodes.
	MaxNodes int `json:"max_nodes,omitempty"`
	// NoCache skips both cache lookup and cache write.
	NoCache bool `json:"no_cache,omitempty"`
	// Validate checks layout graph invariants between phases.
	Validate bool `json:"validate,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a layout run.
type Result struct {
	// Graph is the laid-out copy of the input.
	Graph *graph.Node `json:"graph"`

	// GraphHash is the content hash of the input graph.
	GraphHash string `json:"graph_hash"`

	// RunID identifies this call in logs and API responses.
	RunID string `json:"run_id"`

	// Stats are the layout statistics. On a cache hit they are the
	// statistics of the run that filled the cache.
	Stats layered.Result `json:"stats"`

	// Duration is the wall time of this call.
	Duration time.Duration `json:"duration"`

	// CacheHit is true when the layout came from the cache.
	CacheHit bool `json:"cache_hit"`
}

// cached is the cache payload of a layout.
type cached struct {
	Graph *graph.Node    `json:"graph"`
	Stats layered.Result `json:"stats"`
}

// =============================================================================
// Validation
// =============================================================================

// ValidateAndSetDefaults validates the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_nodes must be >= 0, got %d", o.MaxNodes)
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if err := ValidateProperties(o.Properties); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateProperties rejects property keys that name no known option.
// Values are checked later, when the layout resolves them.
func ValidateProperties(p graph.Properties) error {
	for k := range p {
		if _, ok := options.Lookup(k); !ok {
			return errors.Configuration("unknown option %q", k)
		}
	}
	return nil
}

// ValidateFormat checks if a debug format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be dot, svg, or json)", format)
	}
	return nil
}

// ValidatePhase checks if phase names a layout phase.
func ValidatePhase(phase string) error {
	if !ValidPhases[phase] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid phase: %s", phase)
	}
	return nil
}

// LayoutKeyOpts returns the cache key inputs for these options.
func (o Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Properties: o.Properties,
		Version:    buildinfo.Version,
	}
}

// DebugKeyOpts returns the cache key inputs for a debug capture.
func (o Options) DebugKeyOpts(phase, format string) cache.DebugKeyOpts {
	return cache.DebugKeyOpts{
		Phase:         phase,
		Format:        format,
		LayoutKeyOpts: o.LayoutKeyOpts(),
	}
}

func checkSize(root *graph.Node, limit int) (int, error) {
	n := graph.NodeCount(root)
	if n > limit {
		return n, errors.New(errors.ErrCodeInvalidInput, "graph has %d nodes, limit is %d", n, limit)
	}
	return n, nil
}

func hashGraph(root *graph.Node) (string, error) {
	data, err := graph.MarshalGraph(root)
	if err != nil {
		return "", fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return cache.Hash(data), nil
}
