package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/ircconn/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "ircconn",
	Short: "A prioritising, self-healing IRC connection",
	Long: `A prioritising, self-healing IRC connection

Connects to an IRC network, schedules outbound lines by priority, keeps the
connection alive and reconnects when it breaks. Configuration comes from
IRC_* environment variables (and .env.local), flags override them.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(ConnectCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
