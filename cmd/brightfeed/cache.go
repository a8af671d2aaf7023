package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/brightfeed/internal/app"
	"github.com/MrSnakeDoc/brightfeed/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the news listing cache in Redis",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop the cached listing so the next start waits for upstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadStorage()
			log := cliLogger()
			defer func() { _ = log.Sync() }()

			storage, err := app.OpenStorage(cfg, log)
			if err != nil {
				return err
			}
			defer storage.Close(log)

			if storage.RedisStore == nil {
				return errors.New("redis is not configured (BRIGHTFEED_REDIS_ADDR)")
			}
			if err := storage.RedisStore.InvalidateListing(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "news listing cache purged")
			return nil
		},
	})
	return cmd
}
