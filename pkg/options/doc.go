// Package options is the typed option registry of the layout engine.
//
// Options are looked up by string id in an element's [graph.Properties].
// Each option has a type, a default, and a range check; a missing option
// always means "use the default", and an invalid one is a CONFIGURATION
// error reported before any layout work starts.
//
// # Resolution
//
// Graph-level options are resolved once per run into a [Config]:
//
//	cfg, err := options.Resolve(root.Properties)
//	if err != nil {
//	    return err // errors.ErrCodeConfiguration
//	}
//
// Node, edge, port, and label options are read per element with
// [ResolveNode], [ResolveEdge], [ResolvePort], and [ResolveLabelPlacement].
//
// # Sources
//
// Properties come from the graph itself, from a config file loaded with
// [LoadFile] (TOML or YAML), and from command-line assignments parsed with
// [ParseAssignments]. [Merge] layers them.
//
// The registry ([All], [Lookup]) exists for listings and for rejecting
// unknown ids on the command line; the engine itself never depends on
// registration order.
package options
