package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/auralplayer/aural/internal/app"
	"github.com/auralplayer/aural/internal/config"
	"github.com/auralplayer/aural/internal/domain"
)

var listSearch string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tracks in the library",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Engine = config.EngineMock
		cfg.MediaControl = false
		cfg.MusicDir = ""

		application, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		tracks, err := application.Library().Filter(domain.FilterSpec{Search: listSearch})
		if err != nil {
			return err
		}

		for _, track := range tracks {
			fmt.Printf("%-36s  %-24s  %s\n",
				truncate(track.Title, 36),
				truncate(track.Artist, 24),
				formatDuration(track.Duration))
		}
		fmt.Printf("%d tracks\n", len(tracks))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "filter by title, artist, album or tag")
	rootCmd.AddCommand(listCmd)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
