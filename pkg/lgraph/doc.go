// Package lgraph is the mutable layered graph every layout phase works on.
//
// # Overview
//
// The importer turns the children of one compound node into an [LGraph]:
// nodes with ports, directed edges between ports, and (once layering has
// run) an ordered list of [Layer] values. Phases then reverse edges, assign
// layers, insert dummies, reorder layers, assign coordinates, and route
// edges, all in place.
//
// Internally the drawing always flows to the RIGHT: layers are columns along
// the x axis and nodes within a layer are stacked along y. Other directions
// are produced by a final transform.
//
// # Storage
//
// Nodes, ports, and edges live in arenas addressed by ID. Removal only marks
// an element; the Live accessors skip tombstones and [LGraph.Compact] drops
// them. Dummy nodes record what they stand for (OriginEdge for chain
// members, Owner for north/south port dummies and wide-node chunks), so
// postprocessing can restore the original structure.
//
//	g := lgraph.New()
//	a := g.AddNode(lgraph.Normal, "a")
//	b := g.AddNode(lgraph.Normal, "b")
//	e := g.Connect(g.AddPort(a, lgraph.East), g.AddPort(b, lgraph.West))
//	e.Reverse() // b -> a, e.Reversed == true
//
// # Node Kinds
//
//   - [Normal]: an input node
//   - [LongEdge]: one link of the dummy chain of an edge spanning layers
//   - [Label]: a chain link that reserves room for center edge labels
//   - [NorthSouthPort]: stands in for a north or south port of its Owner
//   - [BigNode]: a chunk of a wide node split across layers
//   - [ExternalPort]: a port of the enclosing compound node
//
// # Crossings
//
// [Counter] counts crossings between adjacent layers with a Fenwick tree
// over port positions. In hyperedge mode, edges connected through shared
// ports are counted as one [Hyperedge].
//
// # Validation
//
// [LGraph.Validate] and [LGraph.ValidateLayering] report broken invariants
// as INTERNAL_CONSISTENCY errors; phases call them at their boundaries in
// tests and when debugging is enabled.
package lgraph
