package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sugiyama/pkg/lgraph"
)

// WriteDOT writes g as a DOT digraph. Nodes are drawn left to right in
// layer order; nodes not yet layered are listed after the layers.
func WriteDOT(w io.Writer, g *lgraph.LGraph) error {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  newrank=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, l := range g.Layers {
		fmt.Fprintf(&buf, "  subgraph layer_%d {\n    rank=same;\n", l.Index)
		for _, n := range l.Nodes {
			fmt.Fprintf(&buf, "    %s [%s];\n", id(n), strings.Join(attrs(n), ", "))
		}
		// Invisible edges keep the in-layer order.
		for i := 1; i < len(l.Nodes); i++ {
			fmt.Fprintf(&buf, "    %s -> %s [style=invis];\n", id(l.Nodes[i-1]), id(l.Nodes[i]))
		}
		buf.WriteString("  }\n")
	}
	for _, n := range g.LayerlessNodes() {
		fmt.Fprintf(&buf, "  %s [%s];\n", id(n), strings.Join(attrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.LiveEdges() {
		var ea []string
		if e.Reversed {
			ea = append(ea, "style=dashed", "color=firebrick")
		}
		if e.Virtual {
			ea = append(ea, "style=dotted", "color=grey")
		}
		fmt.Fprintf(&buf, "  %s -> %s", id(e.Source.Node), id(e.Target.Node))
		if len(ea) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(ea, ", "))
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func id(n *lgraph.LNode) string {
	return fmt.Sprintf("n%d", n.ID)
}

func attrs(n *lgraph.LNode) []string {
	a := []string{fmt.Sprintf("label=%q", n.Name)}
	switch n.Kind {
	case lgraph.LongEdge:
		a = append(a, "shape=point", "width=0.08")
	case lgraph.Label:
		a = append(a, "shape=plaintext", "fontcolor=grey30")
	case lgraph.NorthSouthPort:
		a = append(a, "shape=diamond", "fillcolor=lightyellow", "fontsize=8")
	case lgraph.ExternalPort:
		a = append(a, "shape=circle", "fillcolor=lightblue", "fontsize=8")
	case lgraph.BigNode:
		a = append(a, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if n.Fixed {
		a = append(a, "penwidth=2")
	}
	return a
}

// Layers returns the names of the nodes of every layer in order.
func Layers(g *lgraph.LGraph) [][]string {
	out := make([][]string, len(g.Layers))
	for i, l := range g.Layers {
		out[i] = make([]string, len(l.Nodes))
		for j, n := range l.Nodes {
			out[i][j] = n.Name
		}
	}
	return out
}

// dump is the JSON form written by WriteJSON.
type dump struct {
	Layers    [][]string `json:"layers"`
	Crossings int        `json:"crossings"`
	Dummies   int        `json:"dummies"`
}

// WriteJSON writes the layer orderings of g together with its crossing
// count and the number of dummy nodes.
func WriteJSON(w io.Writer, g *lgraph.LGraph) error {
	d := dump{
		Layers:    Layers(g),
		Crossings: lgraph.NewCounter(g, false).Total(g.Order()),
	}
	for _, n := range g.LiveNodes() {
		if n.IsDummy() {
			d.Dummies++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
