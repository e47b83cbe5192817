package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the LLM response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and hit statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cfg.Cache.Directory, cfg.Cache.Enabled, logger)
		stats := store.Stats()

		fmt.Println("💾 Cache Statistics")
		fmt.Printf("   Directory: %s\n", cfg.Cache.Directory)
		fmt.Printf("   Enabled:   %v\n", store.Enabled())
		fmt.Printf("   Entries:   %d\n", stats.Entries)
		fmt.Printf("   Size:      %.1f KB\n", float64(stats.TotalBytes)/1024)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cache entries older than the configured retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cfg.Cache.Directory, cfg.Cache.Enabled, logger)
		removed := store.PurgeOlderThan(cfg.Cache.PurgeAfterDay)
		fmt.Printf("🧹 Removed %d entries older than %d days\n", removed, cfg.Cache.PurgeAfterDay)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cfg.Cache.Directory, cfg.Cache.Enabled, logger)
		removed := store.PurgeAll()
		fmt.Printf("🧹 Removed %d entries\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
