package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sugiyama/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the graph as indented JSON to w.
func WriteJSON(root *Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes the graph as JSON to path.
// The file is created with 0644 permissions.
func WriteFile(root *Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(root, f)
}

// ReadJSON decodes a JSON graph and validates it.
func ReadJSON(r io.Reader) (*Node, error) {
	var root Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return &root, Validate(&root)
}

// ReadYAML decodes a YAML graph and validates it. YAML is convenient for
// hand-written fixtures; it uses the same field names as the JSON format.
func ReadYAML(r io.Reader) (*Node, error) {
	var root Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	normalizeYAML(&root)
	return &root, Validate(&root)
}

// ReadFile reads a graph from path, choosing the decoder by extension
// (.yaml/.yml for YAML, anything else for JSON).
func ReadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}

// normalizeYAML converts YAML-decoded property values into the shapes the
// JSON decoder produces (float64 numbers), so option parsing sees one format.
func normalizeYAML(root *Node) {
	Walk(root, func(n *Node, _ *Node) bool {
		normalizeProps(n.Properties)
		for _, p := range n.Ports {
			normalizeProps(p.Properties)
		}
		for _, e := range n.Edges {
			normalizeProps(e.Properties)
		}
		return true
	})
}

func normalizeProps(p Properties) {
	for k, v := range p {
		p[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case []any:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
		return x
	}
	return v
}

// =============================================================================
// Traversal
// =============================================================================

// Walk visits n and all of its descendants in pre-order. fn receives each
// node and its parent (nil for the root); returning false skips the node's
// children.
func Walk(root *Node, fn func(n, parent *Node) bool) {
	var visit func(n, parent *Node)
	visit = func(n, parent *Node) {
		if !fn(n, parent) {
			return
		}
		for _, c := range n.Children {
			visit(c, n)
		}
	}
	visit(root, nil)
}

// NodeCount returns the number of nodes below root, excluding root itself.
func NodeCount(root *Node) int {
	count := 0
	Walk(root, func(n, parent *Node) bool {
		if parent != nil {
			count++
		}
		return true
	})
	return count
}

// EdgeCount returns the number of edges anywhere in the graph.
func EdgeCount(root *Node) int {
	count := 0
	Walk(root, func(n, _ *Node) bool {
		count += len(n.Edges)
		return true
	})
	return count
}

// Clone returns a deep copy of the graph by round-tripping through JSON.
func Clone(root *Node) (*Node, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	var out Node
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// Index
// =============================================================================

// Index resolves element ids across the whole hierarchy.
type Index struct {
	nodes     map[string]*Node
	ports     map[string]*Port
	portOwner map[*Port]*Node
	parent    map[*Node]*Node
	edgeOwner map[*Edge]*Node
}

// NewIndex indexes every node, port, and edge below root. It fails with
// [ErrDuplicateID] when two nodes or ports share an id.
func NewIndex(root *Node) (*Index, error) {
	ix := &Index{
		nodes:     make(map[string]*Node),
		ports:     make(map[string]*Port),
		portOwner: make(map[*Port]*Node),
		parent:    make(map[*Node]*Node),
		edgeOwner: make(map[*Edge]*Node),
	}
	var err error
	Walk(root, func(n, parent *Node) bool {
		if err != nil {
			return false
		}
		if _, dup := ix.nodes[n.ID]; dup && n.ID != "" {
			err = fmt.Errorf("%w: node %q", ErrDuplicateID, n.ID)
			return false
		}
		ix.nodes[n.ID] = n
		ix.parent[n] = parent
		for _, p := range n.Ports {
			if _, dup := ix.ports[p.ID]; dup {
				err = fmt.Errorf("%w: port %q", ErrDuplicateID, p.ID)
				return false
			}
			if _, dup := ix.nodes[p.ID]; dup {
				err = fmt.Errorf("%w: port %q clashes with a node", ErrDuplicateID, p.ID)
				return false
			}
			ix.ports[p.ID] = p
			ix.portOwner[p] = n
		}
		for _, e := range n.Edges {
			ix.edgeOwner[e] = n
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// Node returns the node with the given id, or nil.
func (ix *Index) Node(id string) *Node { return ix.nodes[id] }

// Parent returns the parent of n, or nil for the root.
func (ix *Index) Parent(n *Node) *Node { return ix.parent[n] }

// PortOwner returns the node a port belongs to.
func (ix *Index) PortOwner(p *Port) *Node { return ix.portOwner[p] }

// EdgeOwner returns the node whose Edges list contains e.
func (ix *Index) EdgeOwner(e *Edge) *Node { return ix.edgeOwner[e] }

// Endpoint resolves an edge endpoint id to its node and, if the id names a
// port, the port.
func (ix *Index) Endpoint(id string) (*Node, *Port, bool) {
	if n, ok := ix.nodes[id]; ok {
		return n, nil, true
	}
	if p, ok := ix.ports[id]; ok {
		return ix.portOwner[p], p, true
	}
	return nil, nil, false
}

// IsAncestor reports whether a is n or an ancestor of n.
func (ix *Index) IsAncestor(a, n *Node) bool {
	for cur := n; cur != nil; cur = ix.parent[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

// Path returns the chain of nodes from the root down to n, inclusive.
func (ix *Index) Path(n *Node) []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = ix.parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that element ids are well-formed and unique and that every
// edge has exactly one resolvable source and target located inside the node
// that owns the edge.
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph is empty")
	}
	ix, err := NewIndex(root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "index graph")
	}

	var vErr error
	Walk(root, func(n, parent *Node) bool {
		if parent != nil {
			if err := errors.ValidateElementID(n.ID); err != nil {
				vErr = err
				return false
			}
		}
		for _, e := range n.Edges {
			if err := validateEdge(ix, n, e); err != nil {
				vErr = err
				return false
			}
		}
		return true
	})
	return vErr
}

func validateEdge(ix *Index, owner *Node, e *Edge) error {
	if err := errors.ValidateElementID(e.ID); err != nil {
		return err
	}
	if len(e.Sources) != 1 || len(e.Targets) != 1 {
		return errors.Wrap(errors.ErrCodeInvalidGraph, ErrInvalidEdge,
			"edge %q must have exactly one source and one target", e.ID)
	}
	for _, id := range []string{e.Sources[0], e.Targets[0]} {
		n, _, ok := ix.Endpoint(id)
		if !ok {
			return errors.Wrap(errors.ErrCodeInvalidGraph, ErrUnknownEndpoint, "edge %q references %q", e.ID, id)
		}
		if !ix.IsAncestor(owner, n) {
			return errors.Wrap(errors.ErrCodeInvalidGraph, ErrInvalidEdge,
				"edge %q is contained in %q but its endpoint %q lies outside", e.ID, owner.ID, id)
		}
	}
	return nil
}
