package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/luma/ircconn/internal/meta"
)

var versionJSON bool

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := meta.GetInfo()

		if !versionJSON {
			cmd.Println(info.String())
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(info)
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build information as JSON")
}
