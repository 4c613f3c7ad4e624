// Package layered computes layered (Sugiyama style) drawings of directed
// graphs.
//
// # Overview
//
// [Layout] walks a graph hierarchy bottom-up. For every compound node it
// imports the children into a [lgraph.LGraph], runs the phase [Pipeline],
// and exports positions, port sides, edge sections, and the resulting size
// back into the input graph. Compound children are laid out first so their
// parent sees their final size; siblings run concurrently.
//
// # Phases
//
// [NewPipeline] selects every strategy once from the resolved
// [options.Config] and returns the phases in this order:
//
//   - layer constraint check, partition and constraint edge reversal
//   - cycle breaking (package cycles)
//   - port sides, label dummies, layering, wide-node splitting
//     (package layering)
//   - long-edge splitting, north/south dummies, crossing minimization,
//     greedy switch, port distribution (package ordering)
//   - node placement (package placement)
//   - wide-node joining, edge routing, direction transform (packages
//     layering, routing, transfer)
//
// The layout runs in direction RIGHT internally; the last phase maps the
// drawing into the requested direction.
//
// # Errors and Cancellation
//
// Options are resolved and checked for the whole hierarchy before any graph
// is modified, so a CONFIGURATION error leaves the input untouched.
// INTERNAL_CONSISTENCY errors abort the run. Heuristics that run out of
// iterations are not errors: they are listed in [Stats.Limited] and make
// [Result.Converged] false.
//
// The context is checked between phases and inside the iterative ones.
// Once a graph is layered, cancellation finishes it with the cheapest
// remaining phases (SIMPLE placement, routing) so the caller gets a valid
// best-effort layout along with the CANCELED error.
package layered
