// Package ordering decides the order of nodes within each layer.
//
// Before ordering, [SplitLongEdges] replaces every edge that skips layers by
// a chain of LONG_EDGE dummies and [InsertNorthSouthDummies] represents
// ports on the north and south sides of side-fixed nodes by dummies in the
// node's own layer. Afterwards every edge connects adjacent layers.
//
// [Minimizer] implements the layer sweep: each layer in turn is sorted by
// the barycenter (or median) of its neighbours' ranks in the layer before
// it, alternating direction while the crossing count drops. Nodes with
// in-layer constraints stay at the top or bottom of their layer, and a node
// moves together with its north/south dummies. Several runs from randomized
// starts are made and the best order is kept.
//
// [Switcher] is an optional post-pass that swaps adjacent nodes while that
// strictly reduces crossings.
//
// Finally [DistributePorts] orders the ports of nodes whose port order is
// free and [PlacePorts] computes port positions along the node borders.
package ordering
