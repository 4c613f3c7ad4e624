package transfer

import (
	"fmt"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/lgraph"
	"github.com/matzehuels/sugiyama/pkg/options"
)

// importer holds the lookup tables of one Import call.
type importer struct {
	g      *lgraph.LGraph
	cfg    *options.Config
	f      frame
	parent *graph.Node

	nodes    map[*graph.Node]*lgraph.LNode
	ports    map[*graph.Port]*lgraph.LPort
	owner    map[string]*graph.Node // any descendant id -> child of parent containing it
	portByID map[string]*graph.Port
	external map[externalKey]*lgraph.LPort
	merged   map[mergeKey]*lgraph.LPort
}

type externalKey struct {
	port   *graph.Port // nil for edges attached to the parent itself
	source bool
}

type mergeKey struct {
	node   *lgraph.LNode
	source bool
}

// Import builds the layout graph for the children of parent. Each child
// becomes a NORMAL node; edges owned by parent become edges between ports.
//
//   - An edge endpoint without a port gets a port of its own, or, with
//     mergeEdges, one port shared by all edges leaving (or entering) that
//     node.
//   - An endpoint below a child is attached to that child.
//   - An endpoint on parent or one of parent's ports becomes an
//     EXTERNAL_PORT dummy pinned to the first (source) or last (target)
//     layer. With mergeHierarchyEdges, edges attached to parent itself
//     share one dummy per direction.
//   - Children marked noLayout are imported as fixed nodes; export leaves
//     their geometry alone.
//
// Sizes and port positions are mapped into the internal RIGHT frame.
func Import(parent *graph.Node, cfg *options.Config) (*lgraph.LGraph, error) {
	im := &importer{
		g:        lgraph.New(),
		cfg:      cfg,
		f:        frame{cfg.Direction},
		parent:   parent,
		nodes:    map[*graph.Node]*lgraph.LNode{},
		ports:    map[*graph.Port]*lgraph.LPort{},
		owner:    map[string]*graph.Node{},
		portByID: map[string]*graph.Port{},
		external: map[externalKey]*lgraph.LPort{},
		merged:   map[mergeKey]*lgraph.LPort{},
	}
	im.g.Origin = parent
	for _, p := range parent.Ports {
		im.portByID[p.ID] = p
	}
	for _, c := range parent.Children {
		if err := im.node(c); err != nil {
			return nil, err
		}
	}
	for _, e := range parent.Edges {
		if err := im.edge(e); err != nil {
			return nil, err
		}
	}
	return im.g, nil
}

func (im *importer) node(c *graph.Node) error {
	opts, err := options.ResolveNode(c.Properties)
	if err != nil {
		return fmt.Errorf("node %q: %w", c.ID, err)
	}
	n := im.g.AddNode(lgraph.Normal, c.ID)
	n.Origin = c
	n.Fixed = opts.NoLayout
	n.LayerConstraint = opts.LayerConstraint
	n.Partition = opts.Partition
	n.InLayer = opts.InLayer
	n.PortConstraints = opts.PortConstraints
	ext := lgraph.Vector{X: c.Width, Y: c.Height}
	n.Size = im.f.size(ext)

	// The inner layout of a compound child already fixed its port positions.
	if c.IsCompound() && len(c.Ports) > 0 {
		n.PortConstraints = options.PortsFixedPos
	}

	// A node still at the origin has not been drawn before.
	prior := opts.Interactive
	if prior == nil && (c.X != 0 || c.Y != 0) {
		prior = &graph.Point{X: c.X, Y: c.Y}
	}
	if prior != nil {
		pos, _ := im.f.in(lgraph.Vector{X: prior.X, Y: prior.Y}, ext, lgraph.Vector{})
		n.Interactive = &graph.Point{X: pos.X, Y: pos.Y}
	}

	for i, p := range c.Ports {
		po, err := options.ResolvePort(p.Properties)
		if err != nil {
			return fmt.Errorf("port %q: %w", p.ID, err)
		}
		side := p.Side
		if po.Side != "" {
			side = po.Side
		}
		lp := im.g.AddPort(n, im.f.inSide(lgraph.ParseSide(side)))
		lp.Origin = p
		lp.Index = i
		if po.Index >= 0 {
			lp.Index = po.Index
		}
		lp.Pos, lp.Size = im.f.in(lgraph.Vector{X: p.X, Y: p.Y}, lgraph.Vector{X: p.Width, Y: p.Height}, ext)
		im.ports[p] = lp
		im.portByID[p.ID] = p
	}
	for _, s := range []lgraph.PortSide{lgraph.North, lgraph.East, lgraph.South, lgraph.West} {
		lgraph.ReindexSide(n, s)
	}
	lgraph.SortPorts(n)

	im.nodes[c] = n
	graph.Walk(c, func(d, _ *graph.Node) bool {
		im.owner[d.ID] = c
		for _, p := range d.Ports {
			im.owner[p.ID] = c
		}
		return true
	})
	return nil
}

func (im *importer) edge(e *graph.Edge) error {
	opts, err := options.ResolveEdge(e.Properties)
	if err != nil {
		return fmt.Errorf("edge %q: %w", e.ID, err)
	}
	src, err := im.endpoint(e, e.Source(), true)
	if err != nil {
		return err
	}
	dst, err := im.endpoint(e, e.Target(), false)
	if err != nil {
		return err
	}
	le := im.g.Connect(src, dst)
	le.Origin = e
	le.Priority = opts.Priority
	for _, l := range e.Labels {
		placement, err := options.ResolveLabelPlacement(l.Properties)
		if err != nil {
			return fmt.Errorf("label of edge %q: %w", e.ID, err)
		}
		le.Labels = append(le.Labels, &lgraph.LLabel{
			Origin:    l,
			Size:      im.f.size(lgraph.Vector{X: l.Width, Y: l.Height}),
			Placement: placement,
		})
	}
	return nil
}

// endpoint returns the port edge e should use at the endpoint with the
// given id.
func (im *importer) endpoint(e *graph.Edge, id string, source bool) (*lgraph.LPort, error) {
	if id == im.parent.ID {
		return im.externalPort(nil, e, source), nil
	}
	if p, ok := im.portByID[id]; ok {
		if lp, ok := im.ports[p]; ok {
			return lp, nil
		}
		if im.parent.Port(id) == p {
			return im.externalPort(p, e, source), nil
		}
	}
	c, ok := im.owner[id]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, graph.ErrUnknownEndpoint,
			"edge %q references %q outside %q", e.ID, id, im.parent.ID)
	}
	n := im.nodes[c]
	side := lgraph.West
	if source {
		side = lgraph.East
	}
	if !im.cfg.MergeEdges {
		return im.g.AddPort(n, side), nil
	}
	key := mergeKey{n, source}
	if p, ok := im.merged[key]; ok {
		return p, nil
	}
	p := im.g.AddPort(n, side)
	im.merged[key] = p
	return p, nil
}

// externalPort returns the port of the EXTERNAL_PORT dummy for an edge
// that enters or leaves parent through port p (nil: parent itself).
func (im *importer) externalPort(p *graph.Port, e *graph.Edge, source bool) *lgraph.LPort {
	key := externalKey{p, source}
	shared := p != nil || im.cfg.MergeHierarchyEdges
	if shared {
		if lp, ok := im.external[key]; ok {
			return lp
		}
	}

	name := "ext:" + e.ID
	if p != nil {
		name = "ext:" + p.ID
	} else if shared {
		name = "ext:" + im.parent.ID
	}
	d := im.g.AddNode(lgraph.ExternalPort, name)
	d.OriginPort = p
	side := lgraph.East
	d.ExternalSide = lgraph.West
	d.LayerConstraint = options.LayerConstraintFirstSeparate
	if !source {
		side = lgraph.West
		d.ExternalSide = lgraph.East
		d.LayerConstraint = options.LayerConstraintLastSeparate
	}
	if p != nil {
		if s := im.f.inSide(lgraph.ParseSide(p.Side)); s != lgraph.SideUndefined {
			d.ExternalSide = s
		}
		d.Size = im.f.size(lgraph.Vector{X: p.Width, Y: p.Height})
	}
	lp := im.g.AddPort(d, side)
	if shared {
		im.external[key] = lp
	}
	return lp
}
