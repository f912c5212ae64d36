package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auralplayer/aural/internal/app"
	"github.com/auralplayer/aural/internal/config"
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder for audio files and add them to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// No playback or media surface is needed for a scan.
		cfg.Engine = config.EngineMock
		cfg.MediaControl = false
		cfg.MusicDir = ""

		application, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		tracks, err := application.Library().ScanFolder(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Added %d tracks from %s\n", len(tracks), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
