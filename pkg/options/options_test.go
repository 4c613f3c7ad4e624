package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Direction != DirectionRight {
		t.Errorf("Direction = %v, want %v", cfg.Direction, DirectionRight)
	}
	if cfg.CycleBreaking != CycleBreakingGreedy {
		t.Errorf("CycleBreaking = %v, want %v", cfg.CycleBreaking, CycleBreakingGreedy)
	}
	if cfg.Layering != LayeringNetworkSimplex {
		t.Errorf("Layering = %v, want %v", cfg.Layering, LayeringNetworkSimplex)
	}
	if cfg.NodePlacement != PlacementBrandesKoepf {
		t.Errorf("NodePlacement = %v, want %v", cfg.NodePlacement, PlacementBrandesKoepf)
	}
	if cfg.Thoroughness != DefaultThoroughness {
		t.Errorf("Thoroughness = %d, want %d", cfg.Thoroughness, DefaultThoroughness)
	}
	if cfg.Spacing.NodeNode != 20 {
		t.Errorf("Spacing.NodeNode = %v, want 20", cfg.Spacing.NodeNode)
	}
	if !cfg.MergeHierarchyEdges {
		t.Error("MergeHierarchyEdges should default to true")
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve(graph.Properties{
		"direction":                      "down",
		"layering.strategy":              "LONGEST_PATH",
		"thoroughness":                   3.0,
		"spacing.nodeNode":               "35",
		"partitioning.activate":          true,
		"crossingMinimization.heuristic": "MEDIAN",
		"timeout":                        "2s",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Direction != DirectionDown {
		t.Errorf("Direction = %v, want DOWN", cfg.Direction)
	}
	if cfg.Layering != LayeringLongestPath {
		t.Errorf("Layering = %v, want LONGEST_PATH", cfg.Layering)
	}
	if cfg.Thoroughness != 3 {
		t.Errorf("Thoroughness = %d, want 3", cfg.Thoroughness)
	}
	if cfg.Spacing.NodeNode != 35 {
		t.Errorf("Spacing.NodeNode = %v, want 35", cfg.Spacing.NodeNode)
	}
	if !cfg.Partitioning {
		t.Error("Partitioning = false, want true")
	}
	if cfg.Heuristic != HeuristicMedian {
		t.Errorf("Heuristic = %v, want MEDIAN", cfg.Heuristic)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestResolveEnumCase(t *testing.T) {
	tests := []struct {
		id, raw, want string
	}{
		{Algorithm.ID(), "layered", AlgorithmLayered},
		{Algorithm.ID(), "LAYERED", AlgorithmLayered},
		{Algorithm.ID(), "fixed", AlgorithmFixed},
		{Algorithm.ID(), " Box ", AlgorithmBox},
		{LayoutDirection.ID(), "up", string(DirectionUp)},
		{NodePlacement.ID(), "brandes_koepf", string(PlacementBrandesKoepf)},
	}
	for _, tt := range tests {
		cfg, err := Resolve(graph.Properties{tt.id: tt.raw})
		if err != nil {
			t.Errorf("Resolve(%s=%q) error = %v", tt.id, tt.raw, err)
			continue
		}
		var got string
		switch tt.id {
		case Algorithm.ID():
			got = cfg.Algorithm
		case LayoutDirection.ID():
			got = string(cfg.Direction)
		default:
			got = string(cfg.NodePlacement)
		}
		if got != tt.want {
			t.Errorf("Resolve(%s=%q) = %q, want %q", tt.id, tt.raw, got, tt.want)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		props graph.Properties
	}{
		{"negative spacing", graph.Properties{"spacing.nodeNode": -5.0}},
		{"zero thoroughness", graph.Properties{"thoroughness": 0.0}},
		{"fractional thoroughness", graph.Properties{"thoroughness": 1.5}},
		{"unknown strategy", graph.Properties{"cycleBreaking.strategy": "MAGIC"}},
		{"wrong type", graph.Properties{"partitioning.activate": 3.0}},
		{"dampening out of range", graph.Properties{"nodePlacement.linearSegments.deflectionDampening": 2.0}},
		{"dampening zero", graph.Properties{"nodePlacement.linearSegments.deflectionDampening": 0.0}},
		{"bad timeout", graph.Properties{"timeout": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.props)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Resolve() error = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestResolveNode(t *testing.T) {
	o, err := ResolveNode(graph.Properties{
		"layering.layerConstraint":               "first",
		"partitioning.partition":                 2.0,
		"crossingMinimization.inLayerConstraint": "TOP",
		"interactive.position":                   []any{10.0, 20.0},
	})
	if err != nil {
		t.Fatalf("ResolveNode() error = %v", err)
	}
	if o.LayerConstraint != LayerConstraintFirst {
		t.Errorf("LayerConstraint = %v, want FIRST", o.LayerConstraint)
	}
	if o.Partition != 2 {
		t.Errorf("Partition = %d, want 2", o.Partition)
	}
	if o.InLayer != InLayerTop {
		t.Errorf("InLayer = %v, want TOP", o.InLayer)
	}
	if o.Interactive == nil || o.Interactive.X != 10 || o.Interactive.Y != 20 {
		t.Errorf("Interactive = %v, want (10,20)", o.Interactive)
	}

	unset, _ := ResolveNode(nil)
	if unset.Partition != -1 {
		t.Errorf("unset Partition = %d, want -1", unset.Partition)
	}

	if _, err := ResolveNode(graph.Properties{"partitioning.partition": -1.0}); err == nil {
		t.Error("negative partition should fail")
	}
}

func TestParseAssignments(t *testing.T) {
	p, err := ParseAssignments([]string{"thoroughness=3", "direction = DOWN"})
	if err != nil {
		t.Fatalf("ParseAssignments() error = %v", err)
	}
	cfg, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Thoroughness != 3 || cfg.Direction != DirectionDown {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := ParseAssignments([]string{"nope"}); err == nil {
		t.Error("missing '=' should fail")
	}
	if _, err := ParseAssignments([]string{"not.an.option=1"}); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("unknown option error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "layout.toml")
	if err := os.WriteFile(tomlPath, []byte("thoroughness = 2\n[spacing]\nnodeNode = 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(yamlPath, []byte("direction: UP\nspacing:\n  edgeEdge: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fromTOML, err := LoadFile(tomlPath)
	if err != nil {
		t.Fatalf("LoadFile(toml) error = %v", err)
	}
	fromYAML, err := LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile(yaml) error = %v", err)
	}

	cfg, err := Resolve(Merge(fromTOML, fromYAML))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Thoroughness != 2 {
		t.Errorf("Thoroughness = %d, want 2", cfg.Thoroughness)
	}
	if cfg.Spacing.NodeNode != 40 {
		t.Errorf("Spacing.NodeNode = %v, want 40", cfg.Spacing.NodeNode)
	}
	if cfg.Spacing.EdgeEdge != 4 {
		t.Errorf("Spacing.EdgeEdge = %v, want 4", cfg.Spacing.EdgeEdge)
	}
	if cfg.Direction != DirectionUp {
		t.Errorf("Direction = %v, want UP", cfg.Direction)
	}

	if _, err := LoadFile(filepath.Join(dir, "x.ini")); err == nil {
		t.Error("unknown extension should fail")
	}
}

func TestRegistry(t *testing.T) {
	d, ok := Lookup("nodePlacement.strategy")
	if !ok {
		t.Fatal("Lookup(nodePlacement.strategy) not found")
	}
	if d.Default != string(PlacementBrandesKoepf) || len(d.Values) != 3 {
		t.Errorf("descriptor = %+v", d)
	}

	all := All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("All() not sorted at %d: %q >= %q", i, all[i-1].ID, all[i].ID)
		}
	}
}
