package cmd

import (
	"context"
	"fmt"
	"time"

	"incoin/config"
	"incoin/database"
	"incoin/repository"
	"incoin/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newResyncCmd reloads one guild's records from the database, repairing
// dangling references along the way, without starting the bot
func newResyncCmd() *cobra.Command {
	var guildID int64

	resyncCmd := &cobra.Command{
		Use:   "resync",
		Short: "Reload and repair a guild's records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if guildID == 0 {
				return fmt.Errorf("--guild is required")
			}

			cfg := config.Get()
			configureLogging(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			stores := store.New(repository.NewUnitOfWorkFactory(db), nil)
			report, err := stores.Resync(ctx, guildID)
			if err != nil {
				return fmt.Errorf("resync guild %d: %w", guildID, err)
			}

			log.WithFields(log.Fields{
				"guild_id":        guildID,
				"users":           report.Users,
				"companies":       report.Companies,
				"stocks":          report.Stocks,
				"channel_rewards": report.ChannelRewards,
				"repaired_users":  report.RepairedUsers,
				"removed_stocks":  report.RemovedStocks,
			}).Info("Guild resynced")
			return nil
		},
	}

	resyncCmd.Flags().Int64Var(&guildID, "guild", 0, "Discord guild ID to resync")
	return resyncCmd
}
