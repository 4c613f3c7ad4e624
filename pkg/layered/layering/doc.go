// Package layering assigns the nodes of an acyclic layout graph to layers.
//
// Every strategy works on a small constraint network derived from the graph:
// one vertex per live node, one arc per edge demanding a minimum span, and
// with partitioning active one barrier vertex between consecutive
// partitions. The strategies are selected by [New]:
//
//   - LONGEST_PATH: each node at its longest path distance from a source
//   - NETWORK_SIMPLEX: minimal total weighted edge length, weighted by edge
//     priority, with an iteration budget scaled by thoroughness
//   - INTERACTIVE: the layers of a previous drawing, read from interactive
//     positions
//
// Layer constraints are applied after the strategy ran. [CheckConstraints]
// must reject infeasible combinations before any work starts.
//
// Two helpers run around layering: [InsertLabelDummies] reserves a layer
// slot for center edge labels, and [SplitWideNodes] / [JoinWideNodes] cut
// very wide nodes into chunks on consecutive layers and merge them back
// after placement.
package layering
