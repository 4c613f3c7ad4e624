// Package placement assigns coordinates to the nodes of an ordered layout
// graph.
//
// Placement works in the internal RIGHT direction: layers run along x and
// the order within a layer runs along y. A [Placer] computes the in-layer
// coordinate with one of three strategies:
//
//   - BRANDES_KOEPF computes four candidate layouts by aligning every node
//     with a median neighbour (left/right, up/down), compacts each into
//     blocks, and combines them by balancing or by picking the narrowest.
//   - LINEAR_SEGMENTS keeps every dummy chain on a straight line and
//     balances the resulting segments with a damped pendulum method.
//   - SIMPLE stacks the nodes of each layer and centers the layers.
//
// All strategies honor the node-node, edge-node and edge-edge spacing
// between neighbours of a layer. Afterwards every layer is given an x range
// as wide as its widest node and the drawing is moved to start at (0, 0).
package placement
