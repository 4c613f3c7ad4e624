package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/pkg/errors"
	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/observability"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml|-]",
		Short: "Compute a layered layout of a graph",
		Long: `Compute a layered layout of a graph.

The layout command reads a graph (JSON or YAML, or JSON on stdin with "-"),
assigns positions to every node, port, and label, routes every edge, and
writes the graph back as JSON with the coordinates filled in.

Options come from the graph's own properties, a --config file, and --set
flags, in increasing order of precedence. Run 'sugiyama options' to list them.

Results are cached locally for faster subsequent runs.`,
		Example: `  sugiyama layout graph.json
  sugiyama layout graph.yaml --set direction=DOWN --set spacing.nodeNode=30
  cat graph.json | sugiyama layout - -o out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return c.runLayout(cmd, args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (default: <input>.layout.json, "-" for stdout)`)
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output. Status
// lines and the spinner only appear when the layout goes to a file.
func (c *CLI) runLayout(cmd *cobra.Command, input, output string, opts pipeline.Options) error {
	ctx := cmd.Context()
	root, err := readGraph(input, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.NoCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	outputPath := output
	if outputPath == "" && input != stdinArg {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	toFile := outputPath != "" && outputPath != stdinArg

	var spin *spinner
	if toFile {
		spin = newSpinner(ctx, cmd.ErrOrStderr(), "Computing layout")
		prev := observability.Pipeline()
		observability.SetPipelineHooks(spin)
		defer observability.SetPipelineHooks(prev)
		spin.Start()
	}
	prog := newProgress(c.Logger)

	res, err := runner.Layout(ctx, root, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		// Interrupted by a signal rather than by the timeout option.
		if errors.Is(err, errors.ErrCodeCanceled) && ctx.Err() != nil {
			return fmt.Errorf("compute layout: %w", context.Canceled)
		}
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done("layout complete", "graph", root.ID, "nodes", res.Stats.Nodes,
		"layers", res.Stats.Layers, "cached", res.CacheHit)

	if err := writeOutput(outputPath, cmd.OutOrStdout(), func(w io.Writer) error {
		return graph.WriteJSON(res.Graph, w)
	}); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if !toFile {
		return nil
	}

	out := newUI(cmd.OutOrStdout())
	out.success("Layout complete")
	out.file(outputPath)
	out.stats(res)
	if !res.Stats.Converged {
		out.warn("Stopped early in %s; the layout is valid but may not be optimal", strings.Join(res.Stats.Limited, ", "))
	}
	out.newline()
	out.nextStep("Inspect the layering", "sugiyama dot "+input+" --phase layering --svg")

	return nil
}
