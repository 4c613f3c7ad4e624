package cache

import "github.com/matzehuels/sugiyama/pkg/graph"

// Keyer derives cache keys. Implementations must return equal keys exactly
// when the inputs would produce equal output.
type Keyer interface {
	// LayoutKey identifies the layout of the graph with the given content
	// hash under opts.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// DebugKey identifies a debug rendering of a layout graph.
	DebugKey(graphHash string, opts DebugKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the graph that affect a layout.
type LayoutKeyOpts struct {
	// Properties are the caller's option overrides.
	Properties graph.Properties
	// Version is the engine version; layouts from other versions never hit.
	Version string
}

// DebugKeyOpts are the inputs of a debug rendering.
type DebugKeyOpts struct {
	Phase  string
	Format string
	LayoutKeyOpts
}

// DefaultKeyer hashes every key input with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Properties, opts.Version)
}

// DebugKey returns "debug:<sha256>".
func (DefaultKeyer) DebugKey(graphHash string, opts DebugKeyOpts) string {
	return hashKey("debug", graphHash, opts.Phase, opts.Format, opts.Properties, opts.Version)
}
