package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - phases, option ids
	colorGreen  = lipgloss.Color("35")  // Green - success, cache hits
	colorYellow = lipgloss.Color("220") // Amber - early stops
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleHighlight for phase names and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// ui prints the human-readable status lines of a command. Machine output
// (layouts, DOT, JSON) never goes through it.
type ui struct {
	w io.Writer
}

func newUI(w io.Writer) ui { return ui{w: w} }

func (u ui) println(s string) { fmt.Fprintln(u.w, s) }

func (u ui) success(format string, args ...any) {
	u.println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (u ui) warn(format string, args ...any) {
	u.println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (u ui) info(format string, args ...any) {
	u.println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented secondary line.
func (u ui) detail(format string, args ...any) {
	u.println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints the path of a written output file.
func (u ui) file(path string) {
	u.println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// stats prints the summary of a layout run on a single line, e.g.
// "12 nodes · 14 edges · 4 layers · 2 crossings · 1 reversed · 210 x 96 · fresh".
func (u ui) stats(res *pipeline.Result) {
	s := res.Stats
	parts := []string{
		fmt.Sprintf("%d nodes", s.Nodes),
		fmt.Sprintf("%d edges", s.Edges),
		fmt.Sprintf("%d layers", s.Layers),
		fmt.Sprintf("%d crossings", s.Crossings),
	}
	if s.Reversed > 0 {
		parts = append(parts, fmt.Sprintf("%d reversed", s.Reversed))
	}
	if s.Dummies > 0 {
		parts = append(parts, fmt.Sprintf("%d dummies", s.Dummies))
	}
	if res.Graph != nil {
		parts = append(parts, fmt.Sprintf("%.0f x %.0f", res.Graph.Width, res.Graph.Height))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}

	status, style := iconFresh, styleComputed
	if res.CacheHit {
		status, style = iconCached, styleCached
	}
	parts = append(parts, style.Render(status))
	u.println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep prints a suggested follow-up command.
func (u ui) nextStep(description, cmd string) {
	u.println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (u ui) newline() { u.println("") }
