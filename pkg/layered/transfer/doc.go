// Package transfer moves graphs between the external model in package
// graph and the layout graph in package lgraph.
//
// [Import] builds one flat layout graph from the children of a node and the
// edges that node owns. Layout runs in the internal RIGHT frame, so sizes,
// port sides, and port positions are mapped into that frame on the way in;
// [Transform] maps the finished layout into the requested direction and
// [Export] writes it back.
//
// Edges that reach the enclosing node itself become EXTERNAL_PORT dummies
// pinned to the first or last layer; after routing they mark where the
// enclosing node's ports go.
package transfer
