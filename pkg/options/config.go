package options

import (
	"time"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultThoroughness bounds crossing minimization restarts and scales the
	// network simplex iteration limit.
	DefaultThoroughness = 7

	// DefaultRandomSeed seeds every randomized step of a run.
	DefaultRandomSeed = 1

	// DefaultGreedySwitchThreshold disables the greedy switch pass on graphs
	// with more nodes than this.
	DefaultGreedySwitchThreshold = 40

	// DefaultDeflectionDampening for LINEAR_SEGMENTS placement.
	DefaultDeflectionDampening = 0.3
)

// =============================================================================
// Graph-Level Options
// =============================================================================

var (
	Algorithm = enumOption("algorithm", ScopeGraph, "layered",
		AlgorithmLayered, AlgorithmFixed, AlgorithmBox, AlgorithmRandom)
	LayoutDirection = enumOption("direction", ScopeGraph, DirectionRight,
		DirectionRight, DirectionLeft, DirectionDown, DirectionUp)

	CycleBreaking = enumOption("cycleBreaking.strategy", ScopeGraph, CycleBreakingGreedy,
		CycleBreakingGreedy, CycleBreakingDepthFirst, CycleBreakingInteractive)

	Layering = enumOption("layering.strategy", ScopeGraph, LayeringNetworkSimplex,
		LayeringNetworkSimplex, LayeringLongestPath, LayeringInteractive)
	WideNodes = enumOption("layering.wideNodesOnMultipleLayers", ScopeGraph, WideNodesOff,
		WideNodesOff, WideNodesAggressive, WideNodesCareful)
	PartitioningActivate = boolOption("partitioning.activate", ScopeGraph, false)

	CrossingStrategy = enumOption("crossingMinimization.strategy", ScopeGraph, "LAYER_SWEEP", "LAYER_SWEEP")
	Heuristic        = enumOption("crossingMinimization.heuristic", ScopeGraph, HeuristicBarycenter,
		HeuristicBarycenter, HeuristicMedian)
	GreedySwitch = enumOption("crossingMinimization.greedySwitch.type", ScopeGraph, GreedySwitchTwoSided,
		GreedySwitchOff, GreedySwitchOneSided, GreedySwitchTwoSided)
	GreedySwitchBestOfUpOrDown = boolOption("crossingMinimization.greedySwitch.bestOfUpOrDown", ScopeGraph, false)
	GreedySwitchThreshold      = intOption("crossingMinimization.greedySwitch.activationThreshold", ScopeGraph,
		DefaultGreedySwitchThreshold, func(v int) error {
			return errors.ValidateMin("crossingMinimization.greedySwitch.activationThreshold", v, 0)
		})
	HyperedgeCounting = boolOption("crossingMinimization.hyperedgeCounting", ScopeGraph, true)

	Thoroughness = intOption("thoroughness", ScopeGraph, DefaultThoroughness, func(v int) error {
		return errors.ValidateMin("thoroughness", v, 1)
	})
	RandomSeed = intOption("randomSeed", ScopeGraph, DefaultRandomSeed, nil)

	NodePlacement = enumOption("nodePlacement.strategy", ScopeGraph, PlacementBrandesKoepf,
		PlacementBrandesKoepf, PlacementLinearSegments, PlacementSimple)
	BKFixedAlignment = enumOption("nodePlacement.bk.fixedAlignment", ScopeGraph, AlignmentNone,
		AlignmentNone, AlignmentLeftUp, AlignmentLeftDown, AlignmentRightUp, AlignmentRightDown, AlignmentBalanced)
	BKSelectionMode = enumOption("nodePlacement.bk.selection", ScopeGraph, SelectionBalanced,
		SelectionBalanced, SelectionSmallestWidth)
	DeflectionDampening = floatOption("nodePlacement.linearSegments.deflectionDampening", ScopeGraph,
		DefaultDeflectionDampening, func(v float64) error {
			if err := errors.ValidateRange("nodePlacement.linearSegments.deflectionDampening", v, 0, 1); err != nil {
				return err
			}
			if v == 0 {
				return errors.Configuration("nodePlacement.linearSegments.deflectionDampening must be > 0")
			}
			return nil
		})

	SpacingNodeNode              = floatOption("spacing.nodeNode", ScopeGraph, 20, spacing("spacing.nodeNode"))
	SpacingEdgeNode              = floatOption("spacing.edgeNode", ScopeGraph, 10, spacing("spacing.edgeNode"))
	SpacingEdgeEdge              = floatOption("spacing.edgeEdge", ScopeGraph, 10, spacing("spacing.edgeEdge"))
	SpacingNodeNodeBetweenLayers = floatOption("spacing.nodeNodeBetweenLayers", ScopeGraph, 20,
		spacing("spacing.nodeNodeBetweenLayers"))
	SpacingEdgeNodeBetweenLayers = floatOption("spacing.edgeNodeBetweenLayers", ScopeGraph, 10,
		spacing("spacing.edgeNodeBetweenLayers"))
	SpacingLabelNode = floatOption("spacing.labelNode", ScopeGraph, 5, spacing("spacing.labelNode"))
	SpacingSelfLoop  = floatOption("spacing.selfLoop", ScopeGraph, 10, spacing("spacing.selfLoop"))
	Padding          = floatOption("padding", ScopeGraph, 12, spacing("padding"))

	MergeEdges          = boolOption("mergeEdges", ScopeGraph, false)
	MergeHierarchyEdges = boolOption("mergeHierarchyEdges", ScopeGraph, true)
	Hierarchy           = enumOption("hierarchyHandling", ScopeGraph, HierarchySeparateChildren,
		HierarchySeparateChildren)
	SelfLoops = enumOption("selfLoop.placement", ScopeGraph, SelfLoopOutside, SelfLoopOutside, SelfLoopInside)
	Timeout   = durationOption("timeout", ScopeGraph)
)

// =============================================================================
// Element-Level Options
// =============================================================================

var (
	NoLayout = boolOption("noLayout", ScopeNode, false)

	NodeLayerConstraint = enumOption("layering.layerConstraint", ScopeNode, LayerConstraintNone,
		LayerConstraintNone, LayerConstraintFirst, LayerConstraintFirstSeparate,
		LayerConstraintLast, LayerConstraintLastSeparate)
	NodePartition = intOption("partitioning.partition", ScopeNode, -1, func(v int) error {
		return errors.ValidateMin("partitioning.partition", v, 0)
	})
	NodeInLayerConstraint = enumOption("crossingMinimization.inLayerConstraint", ScopeNode, InLayerNone,
		InLayerNone, InLayerTop, InLayerBottom)
	NodePortConstraints = enumOption("portConstraints", ScopeNode, PortsFree,
		PortsFree, PortsFixedSide, PortsFixedOrder, PortsFixedPos)
	NodeInteractivePosition = pointOption("interactive.position", ScopeNode)

	EdgePriority = intOption("priority", ScopeEdge, 0, func(v int) error {
		return errors.ValidateMin("priority", v, 0)
	})

	PortSide = enumOption("port.side", ScopePort, "",
		graph.SideNorth, graph.SideEast, graph.SideSouth, graph.SideWest)
	PortIndex = intOption("port.index", ScopePort, -1, func(v int) error {
		return errors.ValidateMin("port.index", v, 0)
	})

	EdgeLabelPlacement = enumOption("edgeLabels.placement", ScopeLabel, LabelCenter,
		LabelCenter, LabelHead, LabelTail)
)

// =============================================================================
// Resolved Configuration
// =============================================================================

// Spacing groups the spacing constants used by placement and routing.
type Spacing struct {
	NodeNode              float64
	EdgeNode              float64
	EdgeEdge              float64
	NodeNodeBetweenLayers float64
	EdgeNodeBetweenLayers float64
	LabelNode             float64
	SelfLoop              float64
}

// Config is the fully resolved graph-level configuration of one layout run.
// Phases read only this struct, never raw properties.
type Config struct {
	Algorithm string
	Direction Direction

	CycleBreaking CycleBreakingStrategy

	Layering     LayeringStrategy
	WideNodes    WideNodesStrategy
	Partitioning bool

	Heuristic             CrossingHeuristic
	GreedySwitch          GreedySwitchType
	BestOfUpOrDown        bool
	GreedySwitchThreshold int
	HyperedgeCounting     bool
	Thoroughness          int
	RandomSeed            int

	NodePlacement       NodePlacementStrategy
	FixedAlignment      FixedAlignment
	BKSelection         BKSelection
	DeflectionDampening float64

	Spacing Spacing
	Padding float64

	MergeEdges          bool
	MergeHierarchyEdges bool
	HierarchyHandling   HierarchyHandling
	SelfLoopPlacement   SelfLoopPlacement
	Timeout             time.Duration
}

// Default returns the configuration used when no option is set.
func Default() Config {
	cfg, _ := Resolve(nil)
	return cfg
}

// Resolve builds a Config from graph-level properties. The first invalid
// option aborts resolution with a CONFIGURATION error.
func Resolve(p graph.Properties) (Config, error) {
	r := resolver{props: p}
	cfg := Config{
		Algorithm:     get(&r, Algorithm),
		Direction:     get(&r, LayoutDirection),
		CycleBreaking: get(&r, CycleBreaking),

		Layering:     get(&r, Layering),
		WideNodes:    get(&r, WideNodes),
		Partitioning: get(&r, PartitioningActivate),

		Heuristic:             get(&r, Heuristic),
		GreedySwitch:          get(&r, GreedySwitch),
		BestOfUpOrDown:        get(&r, GreedySwitchBestOfUpOrDown),
		GreedySwitchThreshold: get(&r, GreedySwitchThreshold),
		HyperedgeCounting:     get(&r, HyperedgeCounting),
		Thoroughness:          get(&r, Thoroughness),
		RandomSeed:            get(&r, RandomSeed),

		NodePlacement:       get(&r, NodePlacement),
		FixedAlignment:      get(&r, BKFixedAlignment),
		BKSelection:         get(&r, BKSelectionMode),
		DeflectionDampening: get(&r, DeflectionDampening),

		Spacing: Spacing{
			NodeNode:              get(&r, SpacingNodeNode),
			EdgeNode:              get(&r, SpacingEdgeNode),
			EdgeEdge:              get(&r, SpacingEdgeEdge),
			NodeNodeBetweenLayers: get(&r, SpacingNodeNodeBetweenLayers),
			EdgeNodeBetweenLayers: get(&r, SpacingEdgeNodeBetweenLayers),
			LabelNode:             get(&r, SpacingLabelNode),
			SelfLoop:              get(&r, SpacingSelfLoop),
		},
		Padding: get(&r, Padding),

		MergeEdges:          get(&r, MergeEdges),
		MergeHierarchyEdges: get(&r, MergeHierarchyEdges),
		HierarchyHandling:   get(&r, Hierarchy),
		SelfLoopPlacement:   get(&r, SelfLoops),
		Timeout:             get(&r, Timeout),
	}
	get(&r, CrossingStrategy)
	return cfg, r.err
}

// resolver remembers the first error so Resolve can read every option in one
// struct literal.
type resolver struct {
	props graph.Properties
	err   error
}

func get[T any](r *resolver, o Option[T]) T {
	v, err := o.Get(r.props)
	if err != nil && r.err == nil {
		r.err = err
	}
	return v
}

// NodeOptions are the per-node options read by the importer.
type NodeOptions struct {
	NoLayout        bool
	LayerConstraint LayerConstraint
	Partition       int // -1 when unset
	InLayer         InLayerConstraint
	PortConstraints PortConstraints
	Interactive     *graph.Point
}

// ResolveNode reads the per-node options from p.
func ResolveNode(p graph.Properties) (NodeOptions, error) {
	r := resolver{props: p}
	o := NodeOptions{
		NoLayout:        get(&r, NoLayout),
		LayerConstraint: get(&r, NodeLayerConstraint),
		Partition:       get(&r, NodePartition),
		InLayer:         get(&r, NodeInLayerConstraint),
		PortConstraints: get(&r, NodePortConstraints),
		Interactive:     get(&r, NodeInteractivePosition),
	}
	return o, r.err
}

// EdgeOptions are the per-edge options read by the importer.
type EdgeOptions struct {
	NoLayout bool
	Priority int
}

// ResolveEdge reads the per-edge options from p.
func ResolveEdge(p graph.Properties) (EdgeOptions, error) {
	r := resolver{props: p}
	o := EdgeOptions{
		NoLayout: get(&r, NoLayout),
		Priority: get(&r, EdgePriority),
	}
	return o, r.err
}

// PortOptions are the per-port options read by the importer.
type PortOptions struct {
	Side  string // "" when the port's own Side field decides
	Index int    // -1 when unset
}

// ResolvePort reads the per-port options from p.
func ResolvePort(p graph.Properties) (PortOptions, error) {
	r := resolver{props: p}
	o := PortOptions{
		Side:  get(&r, PortSide),
		Index: get(&r, PortIndex),
	}
	return o, r.err
}

// ResolveLabelPlacement reads the placement of an edge label.
func ResolveLabelPlacement(p graph.Properties) (LabelPlacement, error) {
	return EdgeLabelPlacement.Get(p)
}
