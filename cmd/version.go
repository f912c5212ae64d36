package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auralplayer/aural/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(app.GetVersionInfo().FullString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
