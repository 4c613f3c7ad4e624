package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteSet(t *testing.T) {
	tests := []struct {
		in        string
		want      []string
		directive cobra.ShellCompDirective
	}{
		{"spacing.nodeN", []string{"spacing.nodeNode=", "spacing.nodeNodeBetweenLayers="}, cobra.ShellCompDirectiveNoSpace},
		{"direction=d", []string{"direction=DOWN"}, cobra.ShellCompDirectiveNoFileComp},
		{"direction=", []string{"direction=DOWN", "direction=LEFT", "direction=RIGHT", "direction=UP"}, cobra.ShellCompDirectiveNoFileComp},
		{"spacing.nodeNode=", nil, cobra.ShellCompDirectiveNoFileComp},
		{"colour=", nil, cobra.ShellCompDirectiveNoFileComp},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, directive := completeSet(nil, nil, tt.in)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("completeSet(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if directive != tt.directive {
				t.Errorf("completeSet(%q) directive = %v, want %v", tt.in, directive, tt.directive)
			}
		})
	}
}

func TestCompletePhase(t *testing.T) {
	got, _ := completePhase(nil, nil, "wideNode")
	want := []string{"wideNodeJoin", "wideNodeSplit", "wideNodeSplitCareful"}
	if !slices.Equal(got, want) {
		t.Errorf("completePhase(wideNode) = %v, want %v", got, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "", "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, "sugiyama") {
				t.Errorf("completion %s output does not mention sugiyama", shell)
			}
		})
	}
	if _, err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
