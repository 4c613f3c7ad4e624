package pipeline

import (
	"testing"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidatePhase(t *testing.T) {
	tests := []struct {
		phase   string
		wantErr bool
	}{
		{layered.PhaseLayering, false},
		{layered.PhaseCrossings, false},
		{layered.PhaseDirection, false},
		{"render", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidatePhase(tt.phase)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePhase(%q) error = %v, wantErr %v", tt.phase, err, tt.wantErr)
		}
	}
}

func TestValidateProperties(t *testing.T) {
	if err := ValidateProperties(graph.Properties{"direction": "DOWN", "spacing.nodeNode": 10.0}); err != nil {
		t.Errorf("Known options should pass: %v", err)
	}
	err := ValidateProperties(graph.Properties{"colour": "red"})
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("ValidateProperties(colour) = %v, want CONFIGURATION", err)
	}
	if err := ValidateProperties(nil); err != nil {
		t.Errorf("Empty properties should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Zero options should pass: %v", err)
	}
	if opts.MaxNodes != DefaultMaxNodes {
		t.Errorf("MaxNodes should be %d, got %d", DefaultMaxNodes, opts.MaxNodes)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Second call should pass: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{MaxNodes: -1}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Negative MaxNodes = %v, want INVALID_INPUT", err)
	}

	opts = Options{Properties: graph.Properties{"nope": 1.0}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("Unknown option should fail")
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	opts := Options{Properties: graph.Properties{"direction": "DOWN"}}
	k := opts.LayoutKeyOpts()
	if k.Properties["direction"] != "DOWN" {
		t.Errorf("Properties not carried: %v", k.Properties)
	}
	if k.Version == "" {
		t.Error("Version should be set")
	}

	d := opts.DebugKeyOpts(layered.PhaseLayering, FormatDOT)
	if d.Phase != layered.PhaseLayering || d.Format != FormatDOT {
		t.Errorf("DebugKeyOpts() = %+v", d)
	}
}
