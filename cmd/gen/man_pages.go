package gen

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/ircconn/internal/meta"
)

var (
	manDir string
)

var ManPagesCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages for ircconn",
	Long: `This command automatically generates up-to-date man pages for
	every ircconn command. By default, it creates the man page files
	in the "man" directory under the current directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return GenerateManPages(cmd.Root(), manDir, cmd)
	},
}

// GenerateManPages writes one man page per command under root into dir,
// creating dir if needed.
func GenerateManPages(root *cobra.Command, dir string, out *cobra.Command) error {
	header := &doc.GenManHeader{
		Section: "1",
		Manual:  "ircconn Manual",
		Source:  "ircconn " + meta.Version,
	}

	dir, err := outputDir(dir, out)
	if err != nil {
		return err
	}

	root.DisableAutoGenTag = true

	out.Println("Generating ircconn man pages in", dir, "...")

	if err := doc.GenManTree(root, header, dir); err != nil {
		return err
	}

	out.Println("Done.")

	return nil
}

func init() {
	dirFlag(ManPagesCmd, &manDir, "man/", "the directory to write the man pages.")
}
