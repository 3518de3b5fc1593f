package gen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// RootCmd groups the generators for ircconn's reference material. Each
// generator walks the command tree it is attached to, so the output
// always matches the installed binary.
var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation and shell completions for ircconn",
	Long: `Generate reference material from the ircconn command tree:

  man         man pages, one per command
  markdown    Markdown pages, one per command
  completion  a completion script for bash, zsh, fish or powershell`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd, MarkdownCmd, CompletionCmd)
}

// outputDir normalises dir to end in a separator and creates it if it
// does not exist yet.
func outputDir(dir string, out *cobra.Command) (string, error) {
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}

	if _, err := os.Stat(dir); err != nil && os.IsNotExist(err) {
		out.Println("Directory", dir, "does not exist, creating...")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", err
		}
	}

	return dir, nil
}

func dirFlag(cmd *cobra.Command, target *string, def, usage string) {
	flags := cmd.PersistentFlags()
	flags.StringVar(target, "dir", def, usage)

	// For bash-completion
	if err := flags.SetAnnotation("dir", cobra.BashCompSubdirsInDir, []string{}); err != nil {
		panic(err)
	}
}
