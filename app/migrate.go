package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/simple-bulletin/simple-bulletin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applied, err := daemon.Migrate(cmd.Context(), &cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Strs("applied", applied).Msg("database is up to date")

		return nil
	},
}
