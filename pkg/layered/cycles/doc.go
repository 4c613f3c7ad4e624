// Package cycles makes layout graphs acyclic before layering.
//
// Layer assignment needs every edge to point forward, so a feedback set of
// edges is reversed. Reversal never removes an edge: [lgraph.LEdge.Reverse]
// swaps its endpoints and sets Reversed, and routing turns it back at the
// end.
//
// Three strategies implement [Breaker]:
//
//   - [Greedy]: Eades-Lin-Smyth ordering; deterministic for a given input
//     order
//   - [DepthFirst]: reverses DFS back edges
//   - [Interactive]: follows the node positions of a previous drawing
//
// Two preprocessing steps keep constraints satisfiable:
// [ReversePartitionEdges] points every inter-partition edge at the higher
// partition, and [ReverseConstraintEdges] makes FIRST nodes sources and LAST
// nodes sinks.
package cycles
