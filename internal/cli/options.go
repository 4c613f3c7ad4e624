package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/pkg/options"
)

// optionsCommand lists every layout option.
func (c *CLI) optionsCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List layout options with their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(52)
			scopeStyle := lipgloss.NewStyle().Foreground(colorGray).Width(7)

			out := cmd.OutOrStdout()
			for _, d := range options.All() {
				if scope != "" && string(d.Scope) != scope {
					continue
				}
				line := idStyle.Render(d.ID) + " " + scopeStyle.Render(string(d.Scope)) + " " + StyleValue.Render(d.Default)
				if len(d.Values) > 0 {
					line += " " + StyleDim.Render("("+strings.Join(d.Values, "|")+")")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "only list options of this scope: graph, node, edge, port, label")

	return cmd
}
