// Package graph provides the client-facing graph model consumed and produced
// by the layout engine.
//
// The model is hierarchical: a [Node] may contain child nodes, and each node
// lists the edges it contains. The root node stands for the whole drawing; its
// own geometry receives the size of the computed layout.
//
// # Core Types
//
//   - [Node]: a node, possibly compound, with ports, labels, and properties
//   - [Port]: a connection point on a node border
//   - [Edge]: a directed connection between two nodes or ports
//   - [Label]: text attached to any of the above
//   - [Section]: the computed polyline of an edge
//
// Layout options travel as [Properties] on each element. This package does
// not interpret them; see package options.
//
// # Serialization
//
// Graphs are stored as JSON (or YAML for hand-written fixtures):
//
//	{
//	  "id": "root",
//	  "properties": {"direction": "DOWN"},
//	  "children": [
//	    {"id": "a", "width": 40, "height": 30},
//	    {"id": "b", "width": 40, "height": 30}
//	  ],
//	  "edges": [
//	    {"id": "e1", "sources": ["a"], "targets": ["b"]}
//	  ]
//	}
//
// Use [ReadJSON], [ReadYAML], or [ReadFile] to load and validate a graph, and
// [WriteJSON] or [MarshalGraph] to write one back.
//
// # Coordinates
//
// Node positions are relative to the parent node. Edge sections and junction
// points are relative to the node that contains the edge.
package graph
