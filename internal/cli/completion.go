package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/pkg/options"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sugiyama.

Besides commands and flags, the scripts complete layout option ids and
enumeration values after --set, and phase names after --phase.

Bash:
  $ source <(sugiyama completion bash)

Zsh:
  $ sugiyama completion zsh > "${fpath[1]}/_sugiyama"

Fish:
  $ sugiyama completion fish > ~/.config/fish/completions/sugiyama.fish

PowerShell:
  PS> sugiyama completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeSet completes --set assignments. Before the "=" it offers option
// ids, after it the values of an enumeration option.
func completeSet(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	id, value, assigned := strings.Cut(toComplete, "=")
	if !assigned {
		var ids []string
		for _, d := range options.All() {
			if strings.HasPrefix(d.ID, id) {
				ids = append(ids, d.ID+"=")
			}
		}
		return ids, cobra.ShellCompDirectiveNoSpace
	}

	d, ok := options.Lookup(id)
	if !ok || d.Values == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, v := range d.Values {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(value)) {
			out = append(out, id+"="+v)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePhase completes --phase with the phases a capture can stop after.
func completePhase(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for p := range pipeline.ValidPhases {
		if strings.HasPrefix(p, toComplete) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out, cobra.ShellCompDirectiveNoFileComp
}
