// Package cmd defines the aural command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/auralplayer/aural/internal/app"
	"github.com/auralplayer/aural/internal/config"
)

var (
	configPath string
	dataDir    string
	musicDir   string
	engineName string
)

var rootCmd = &cobra.Command{
	Use:   "aural",
	Short: "Aural is a local music player and library manager.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return application.Run(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for persisted library data")
	rootCmd.PersistentFlags().StringVar(&musicDir, "music-dir", "", "folder scanned for audio files on startup")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "playback engine (beep or mock)")
}

// loadConfig reads the configuration and applies command line
// overrides on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if musicDir != "" {
		cfg.MusicDir = musicDir
	}
	if engineName != "" {
		cfg.Engine = engineName
	}
	return cfg, nil
}

func newApplication() (*app.Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
