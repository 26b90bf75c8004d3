package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/sdkassist/internal/app"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the lookup cache",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(container),
		newCacheClearCommand(container),
		newCacheSweepCommand(container),
		newCacheStatsCommand(container),
		newCacheConfigCommand(container),
	)

	return cacheCmd
}

func newCacheListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCacheEntries(cmd.OutOrStdout(), container)
		},
	}
}

func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.CacheStore == nil {
				return errors.New(ErrCacheStoreUnavailable)
			}
			return container.CacheStore.Clear()
		},
	}
}

func newCacheSweepCommand(container *app.Container) *cobra.Command {
	var maxAge string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove cache entries older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.CacheStore == nil {
				return errors.New(ErrCacheStoreUnavailable)
			}
			removed, err := container.CacheStore.Sweep(maxAge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&maxAge, "max-age", "1h", "Age threshold (e.g. 30m, 2h)")
	return cmd
}

func newCacheStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache settings, entry count and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCacheStats(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newCacheConfigCommand(container *app.Container) *cobra.Command {
	var ttl string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Update cache TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateCacheConfiguration(cmd.Context(), cmd.OutOrStdout(), container, ttl)
		},
	}

	cmd.Flags().StringVar(&ttl, "ttl", "", "Cache TTL duration (e.g. 30m, 2h)")
	return cmd
}

func listCacheEntries(out io.Writer, container *app.Container) error {
	if container.CacheStore == nil {
		return errors.New(ErrCacheStoreUnavailable)
	}

	entries, err := container.CacheStore.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, MsgNoCachedEntries)
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %d bytes\n", entry.File, entry.CachedAt, entry.Size)
	}
	return nil
}

func showCacheStats(ctx context.Context, out io.Writer, container *app.Container) error {
	if container.CacheStore == nil {
		return errors.New(ErrCacheStoreUnavailable)
	}

	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	entries, err := container.CacheStore.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}

	dir := container.CacheStore.Dir()
	totalSize, err := calculateDirectorySize(dir)
	if err != nil {
		return fmt.Errorf("failed to calculate cache size: %w", err)
	}

	fmt.Fprintf(out, "Cache directory: %s\nTTL: %s\nEntries: %d\nSize: %d bytes\n",
		dir, cfg.Cache.TTL, len(entries), totalSize)
	return nil
}

func updateCacheConfiguration(ctx context.Context, out io.Writer, container *app.Container, ttl string) error {
	if ttl == "" {
		return errors.New("--ttl is required")
	}
	if _, err := time.ParseDuration(ttl); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}

	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Cache.TTL = ttl
	if err := container.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "Cache TTL set to %s.\n", ttl)
	return nil
}

func calculateDirectorySize(dirPath string) (int64, error) {
	var totalSize int64

	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return totalSize, nil
}
