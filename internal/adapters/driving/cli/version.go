package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rfp-analyst version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("rfp-analyst version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
