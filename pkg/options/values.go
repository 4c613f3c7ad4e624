package options

// Direction is the overall flow direction of the drawing.
type Direction string

const (
	DirectionRight Direction = "RIGHT"
	DirectionLeft  Direction = "LEFT"
	DirectionDown  Direction = "DOWN"
	DirectionUp    Direction = "UP"
)

// Horizontal reports whether layers are arranged left to right (or reverse).
func (d Direction) Horizontal() bool { return d == DirectionRight || d == DirectionLeft }

// CycleBreakingStrategy selects the cycle breaker.
type CycleBreakingStrategy string

const (
	CycleBreakingGreedy      CycleBreakingStrategy = "GREEDY"
	CycleBreakingDepthFirst  CycleBreakingStrategy = "DEPTH_FIRST"
	CycleBreakingInteractive CycleBreakingStrategy = "INTERACTIVE"
)

// LayeringStrategy selects the layer assigner.
type LayeringStrategy string

const (
	LayeringNetworkSimplex LayeringStrategy = "NETWORK_SIMPLEX"
	LayeringLongestPath    LayeringStrategy = "LONGEST_PATH"
	LayeringInteractive    LayeringStrategy = "INTERACTIVE"
)

// LayerConstraint pins a node to the first or last layer.
type LayerConstraint string

const (
	LayerConstraintNone          LayerConstraint = "NONE"
	LayerConstraintFirst         LayerConstraint = "FIRST"
	LayerConstraintFirstSeparate LayerConstraint = "FIRST_SEPARATE"
	LayerConstraintLast          LayerConstraint = "LAST"
	LayerConstraintLastSeparate  LayerConstraint = "LAST_SEPARATE"
)

// IsFirst reports FIRST or FIRST_SEPARATE.
func (c LayerConstraint) IsFirst() bool {
	return c == LayerConstraintFirst || c == LayerConstraintFirstSeparate
}

// IsLast reports LAST or LAST_SEPARATE.
func (c LayerConstraint) IsLast() bool {
	return c == LayerConstraintLast || c == LayerConstraintLastSeparate
}

// WideNodesStrategy controls splitting of wide nodes across layers.
type WideNodesStrategy string

const (
	WideNodesOff        WideNodesStrategy = "OFF"
	WideNodesAggressive WideNodesStrategy = "AGGRESSIVE"
	WideNodesCareful    WideNodesStrategy = "CAREFUL"
)

// CrossingHeuristic is the sort key used by the layer sweep.
type CrossingHeuristic string

const (
	HeuristicBarycenter CrossingHeuristic = "BARYCENTER"
	HeuristicMedian     CrossingHeuristic = "MEDIAN"
)

// GreedySwitchType selects the adjacent-swap post-pass variant.
type GreedySwitchType string

const (
	GreedySwitchOff      GreedySwitchType = "OFF"
	GreedySwitchOneSided GreedySwitchType = "ONE_SIDED"
	GreedySwitchTwoSided GreedySwitchType = "TWO_SIDED"
)

// InLayerConstraint floats a node to the top or bottom of its layer.
type InLayerConstraint string

const (
	InLayerNone   InLayerConstraint = "NONE"
	InLayerTop    InLayerConstraint = "TOP"
	InLayerBottom InLayerConstraint = "BOTTOM"
)

// NodePlacementStrategy selects the coordinate assigner.
type NodePlacementStrategy string

const (
	PlacementBrandesKoepf   NodePlacementStrategy = "BRANDES_KOEPF"
	PlacementLinearSegments NodePlacementStrategy = "LINEAR_SEGMENTS"
	PlacementSimple         NodePlacementStrategy = "SIMPLE"
)

// FixedAlignment forces one Brandes-Köpf candidate layout.
type FixedAlignment string

const (
	AlignmentNone      FixedAlignment = "NONE"
	AlignmentLeftUp    FixedAlignment = "LEFTUP"
	AlignmentLeftDown  FixedAlignment = "LEFTDOWN"
	AlignmentRightUp   FixedAlignment = "RIGHTUP"
	AlignmentRightDown FixedAlignment = "RIGHTDOWN"
	AlignmentBalanced  FixedAlignment = "BALANCED"
)

// BKSelection chooses how the four candidate layouts are combined.
type BKSelection string

const (
	SelectionBalanced      BKSelection = "BALANCED"
	SelectionSmallestWidth BKSelection = "SMALLEST_WIDTH"
)

// PortConstraints restricts how ports of a node may be arranged.
type PortConstraints string

const (
	PortsFree       PortConstraints = "FREE"
	PortsFixedSide  PortConstraints = "FIXED_SIDE"
	PortsFixedOrder PortConstraints = "FIXED_ORDER"
	PortsFixedPos   PortConstraints = "FIXED_POS"
)

// SideFixed reports whether port sides are given by the input.
func (c PortConstraints) SideFixed() bool { return c != PortsFree && c != "" }

// OrderFixed reports whether the port order on each side is given.
func (c PortConstraints) OrderFixed() bool { return c == PortsFixedOrder || c == PortsFixedPos }

// SelfLoopPlacement chooses where self-loops are drawn.
type SelfLoopPlacement string

const (
	SelfLoopOutside SelfLoopPlacement = "OUTSIDE"
	SelfLoopInside  SelfLoopPlacement = "INSIDE"
)

// LabelPlacement positions an edge label along its edge.
type LabelPlacement string

const (
	LabelCenter LabelPlacement = "CENTER"
	LabelHead   LabelPlacement = "HEAD"
	LabelTail   LabelPlacement = "TAIL"
)

// HierarchyHandling controls how compound nodes are processed.
type HierarchyHandling string

const (
	HierarchySeparateChildren HierarchyHandling = "SEPARATE_CHILDREN"
)

// Algorithm ids recognised by the engine. Only AlgorithmLayered is computed
// here; the others mark graphs handled by simpler providers elsewhere.
const (
	AlgorithmLayered = "layered"
	AlgorithmFixed   = "fixed"
	AlgorithmBox     = "box"
	AlgorithmRandom  = "random"
)
