package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/focussync/pkg/task"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(focussync completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(focussync completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// vibeCompletions lists the vibes that start with toComplete.
func vibeCompletions(toComplete string) []string {
	var out []string
	for _, v := range task.Vibes() {
		if strings.HasPrefix(strings.ToLower(string(v)), strings.ToLower(toComplete)) {
			out = append(out, string(v))
		}
	}
	return out
}
