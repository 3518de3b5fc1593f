package gen_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/luma/ircconn/cmd/gen"
)

var _ = Describe("gen / markdown", func() {
	It("writes a linked page per command with front matter", func() {
		dir, err := os.MkdirTemp("", "ircconn-docs")
		Expect(err).To(Succeed())
		defer os.RemoveAll(dir)

		root := &cobra.Command{Use: "ircconn"}
		root.AddCommand(&cobra.Command{Use: "connect", Short: "Connect to a server", Run: func(*cobra.Command, []string) {}})

		var out bytes.Buffer
		root.SetOut(&out)

		target := filepath.Join(dir, "docs")
		Expect(gen.GenerateMarkdown(root, target, root)).To(Succeed())

		page, err := os.ReadFile(filepath.Join(target, "ircconn_connect.md"))
		Expect(err).To(Succeed())
		Expect(string(page)).To(HavePrefix("---\ntitle: \"ircconn connect\"\n"))
		Expect(string(page)).To(ContainSubstring("Connect to a server"))

		index, err := os.ReadFile(filepath.Join(target, "ircconn.md"))
		Expect(err).To(Succeed())
		Expect(string(index)).To(ContainSubstring("(ircconn_connect.md)"))
		Expect(out.String()).To(ContainSubstring("Done."))
	})
})

var _ = Describe("gen / completion", func() {
	var root *cobra.Command

	BeforeEach(func() {
		root = &cobra.Command{Use: "ircconn"}
		root.AddCommand(&cobra.Command{Use: "connect", Run: func(*cobra.Command, []string) {}})
	})

	It("writes a script for each supported shell", func() {
		for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
			var out bytes.Buffer
			Expect(gen.GenerateCompletion(root, shell, &out)).To(Succeed(), shell)
			Expect(out.String()).To(ContainSubstring("ircconn"), shell)
		}
	})

	It("rejects unknown shells", func() {
		var out bytes.Buffer
		Expect(gen.GenerateCompletion(root, "tcsh", &out)).To(MatchError(ContainSubstring("tcsh")))
		Expect(out.Len()).To(BeZero())
	})

	It("is registered under gen", func() {
		names := []string{}
		for _, c := range gen.RootCmd.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ConsistOf("man", "markdown", "completion"))
	})
})
