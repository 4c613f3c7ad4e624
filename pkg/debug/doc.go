// Package debug renders the intermediate layout graph for inspection.
//
// [WriteDOT] dumps an [lgraph.LGraph] in Graphviz DOT format: one rank=same
// subgraph per layer in layer order, dummy nodes styled by kind, and
// reversed edges dashed. [RenderSVG] turns that DOT into SVG in-process via
// go-graphviz, so no Graphviz installation is needed. [WriteJSON] writes the
// node order of every layer.
//
// The layout packages never import debug; callers capture the graph with
// layered.WithInspector after the phase they care about.
package debug
