package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the build version reported by the CLI and server_info.
const Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marketd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketd %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
