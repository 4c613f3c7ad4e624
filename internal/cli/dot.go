package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/pkg/layered"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// dotCommand creates the dot command for inspecting intermediate phases.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output string
		phase  string
		svg    bool
		asJSON bool
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "dot [graph.json|graph.yaml|-]",
		Short: "Dump the layout graph after a phase as DOT, SVG, or JSON",
		Long: `Dump the internal layout graph of the top-level graph right after a phase.

Nodes are grouped by layer and drawn in their in-layer order. Dummy nodes
are styled by kind, and edges reversed by cycle breaking are dashed.
With --svg the DOT is rendered with the embedded Graphviz; with --json only
the layer orderings are written.`,
		Example: `  sugiyama dot graph.json --phase layering
  sugiyama dot graph.json --phase crossingMinimization --svg -o crossings.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			format := pipeline.FormatDOT
			switch {
			case svg && asJSON:
				return fmt.Errorf("--svg and --json are mutually exclusive")
			case svg:
				format = pipeline.FormatSVG
			case asJSON:
				format = pipeline.FormatJSON
			}
			return c.runDot(cmd, args[0], output, phase, format, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&phase, "phase", layered.PhaseCrossings, "phase after which to capture the graph")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the layer orderings as JSON")
	flags.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("phase", completePhase)

	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, input, output, phase, format string, opts pipeline.Options) error {
	root, err := readGraph(input, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, err := runner.Debug(cmd.Context(), root, opts, phase, format)
	if err != nil {
		return fmt.Errorf("capture %s: %w", phase, err)
	}
	if err := writeOutput(output, cmd.OutOrStdout(), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output != "" && output != stdinArg {
		out := newUI(cmd.OutOrStdout())
		out.success("Captured %s after %s", format, StyleHighlight.Render(phase))
		out.file(output)
	}
	return nil
}
