package gen

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var CompletionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate a shell completion script for ircconn",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},

	RunE: func(cmd *cobra.Command, args []string) error {
		return GenerateCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
	},
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q", shell)
	}
}
