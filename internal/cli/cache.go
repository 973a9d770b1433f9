package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crimeviz/pkg/cache"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the chart and download caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached layouts, artifacts and downloaded records",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, dir := range []string{c.Config.Cache.Dir, c.Config.HTTP.CacheDir} {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					continue
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				entries, _, _ := fc.Stats()
				if err := fc.Clear(); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "clear %s", dir)
				}
				printSuccess("Cleared %d cached entries", entries)
				printDetail("Directory: %s", dir)
			}
			if c.Config.Cache.RedisURL != "" {
				printWarning("redis entries expire on their own and are not cleared")
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.Config.Cache.Dir)
			fmt.Println(c.Config.HTTP.CacheDir)
			return nil
		},
	}
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the size of the on-disk caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, dir := range []string{c.Config.Cache.Dir, c.Config.HTTP.CacheDir} {
				entries, size := 0, int64(0)
				if _, err := os.Stat(dir); err == nil {
					fc, err := cache.NewFileCache(dir)
					if err != nil {
						return err
					}
					if entries, size, err = fc.Stats(); err != nil {
						return err
					}
				}
				printKeyValue("Directory", dir)
				printKeyValue("Entries", StyleNumber.Render(fmt.Sprint(entries)))
				printKeyValue("Size", StyleNumber.Render(fmt.Sprintf("%.1f KiB", float64(size)/1024)))
				printNewline()
			}
			return nil
		},
	}
}
