package gen

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/ircconn/internal/meta"
)

var (
	markdownDir string
)

var MarkdownCmd = &cobra.Command{
	Use:   "markdown",
	Short: "Generate Markdown reference pages for ircconn",
	Long: `Writes one Markdown page per ircconn command, linked to each
	other, into the "docs" directory under the current directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return GenerateMarkdown(cmd.Root(), markdownDir, cmd)
	},
}

// GenerateMarkdown writes one Markdown page per command under root into
// dir. Every page starts with a front matter block naming the command
// and the ircconn version it documents.
func GenerateMarkdown(root *cobra.Command, dir string, out *cobra.Command) error {
	dir, err := outputDir(dir, out)
	if err != nil {
		return err
	}

	root.DisableAutoGenTag = true

	out.Println("Generating ircconn Markdown pages in", dir, "...")

	frontMatter := func(filename string) string {
		name := strings.TrimSuffix(filepath.Base(filename), path.Ext(filename))
		title := strings.ReplaceAll(name, "_", " ")

		return fmt.Sprintf("---\ntitle: %q\nversion: %q\n---\n\n", title, meta.Version)
	}

	link := func(name string) string {
		return strings.ToLower(name)
	}

	if err := doc.GenMarkdownTreeCustom(root, dir, frontMatter, link); err != nil {
		return err
	}

	out.Println("Done.")

	return nil
}

func init() {
	dirFlag(MarkdownCmd, &markdownDir, "docs/", "the directory to write the Markdown pages.")
}
