// Package pkg provides the libraries of the sugiyama layered graph layout engine.
//
// # Overview
//
// Sugiyama takes a directed graph of nodes, ports, labels, and edges,
// possibly nested, and computes a layered drawing: nodes in vertical layers
// (for the default direction RIGHT), few edge crossings, and polyline edge
// routes. The pkg directory is organized into
// three areas:
//
//  1. Model - [graph] (external JSON/YAML graph) and [options] (typed layout options)
//  2. Engine - [lgraph] (internal layered graph) and [layered] (the phase pipeline)
//  3. Infrastructure - [pipeline], [cache], [observability], [debug], [errors]
//
// # Architecture
//
// The data flow through a layout:
//
//	graph.Node (JSON/YAML)
//	         ↓
//	    [options] resolve properties per compound node
//	         ↓
//	    [layered/transfer] import into an [lgraph.LGraph]
//	         ↓
//	    cycles → layering → ordering → placement → routing
//	         ↓
//	    [layered/transfer] export coordinates back into graph.Node
//
// Compound nodes are laid out bottom-up, each level as its own layered graph.
//
// # Quick Start
//
// Lay out a graph read from a file:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/sugiyama/pkg/graph"
//	    "github.com/matzehuels/sugiyama/pkg/layered"
//	)
//
//	root, _ := graph.ReadFile("graph.json")
//	res, err := layered.Layout(context.Background(), root, graph.Properties{
//	    "direction": "DOWN",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Layers, res.Crossings)
//	graph.WriteJSON(root, os.Stdout)
//
// # Main Packages
//
// ## Layout Engine
//
// [layered] - The phase pipeline and the hierarchical [layered.Layout] entry
// point. Strategies live in subpackages:
//
//   - [layered/cycles]: Cycle breaking (GREEDY, DEPTH_FIRST, INTERACTIVE)
//   - [layered/layering]: Layer assignment (LONGEST_PATH, NETWORK_SIMPLEX, INTERACTIVE), constraints, wide nodes
//   - [layered/ordering]: Layer sweep crossing minimization, greedy switch, port distribution
//   - [layered/placement]: Coordinates (BRANDES_KOEPF, LINEAR_SEGMENTS, SIMPLE)
//   - [layered/routing]: Polyline edge routes, self-loops, junction points
//   - [layered/transfer]: Import, export, and direction transforms
//
// [lgraph] - The mutable layered graph the phases share, with crossing counters.
//
// ## Infrastructure
//
// [pipeline] - Runner used by CLI and server: option validation, caching,
// run ids, batch layouts, and phase debug captures.
//
// [cache] - Result caches: null, file (CLI), and Redis (server).
//
// [observability] - Hooks for layouts, phases, cache, and HTTP, with a
// Prometheus implementation.
//
// [debug] - DOT, SVG, and JSON dumps of the layered graph.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layered/...            # Specific package
//	go test -run Example                 # Examples only
//
// [layered/cycles]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/cycles
// [layered/layering]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/layering
// [layered/ordering]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/ordering
// [layered/placement]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/placement
// [layered/routing]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/routing
// [layered/transfer]: https://pkg.go.dev/github.com/matzehuels/sugiyama/pkg/layered/transfer
package pkg
