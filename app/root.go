// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "simple-bulletin",
		Short: "simple-bulletin is a small moderated bulletin board",
		Long: `simple-bulletin is a small bulletin board: users register and post adverts,
moderators activate accounts and publish adverts, visitors browse the published feed.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error

			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err //nolint:wrapcheck
			}

			return logger.Init(cfg.Log) //nolint:wrapcheck
		},
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
