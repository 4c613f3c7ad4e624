// Package routing turns a placed layout graph into final edge geometry.
//
// [Router.Route] runs the postprocessing steps in order:
//
//  1. [JoinLongEdges] folds every dummy chain back into its first edge,
//     collecting the dummies' anchors as bend points and placing center
//     labels at their LABEL dummy.
//  2. [RemoveNorthSouthDummies] reconnects edges to north and south ports
//     with a corner bend point.
//  3. [RestoreReversed] turns reversed edges back to their input direction.
//  4. [RouteSelfLoops] draws self-loops around (or inside) their node.
//  5. [Simplify] drops redundant bend points on straight runs.
//  6. [PlaceEndLabels] and [Junctions] finish labels and hyperedge joints.
//  7. [Bounds] moves the drawing to start at the padding and sizes it.
//
// Polyline routing is used throughout: an edge runs straight from anchor to
// anchor through the positions of its former dummies.
package routing
