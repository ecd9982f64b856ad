package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the export cache and saved compositions",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var sessions bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached exports",
		Long: `Remove cached exports. With --sessions, expired saved compositions are
removed as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context(), sessions)
		},
	}
	cmd.Flags().BoolVar(&sessions, "sessions", false, "also remove expired saved compositions")
	return cmd
}

func (c *CLI) runCacheClear(ctx context.Context, sessions bool) error {
	fc, err := c.fileCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	count, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if count == 0 {
		printInfo("Cache is empty")
	} else {
		printSuccess("Cleared %d cached exports", count)
	}
	printDetail("Directory: %s", fc.Dir())

	if !sessions {
		return nil
	}
	store, err := c.sessionStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	n, err := store.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("clean up sessions: %w", err)
	}
	printSuccess("Removed %d expired compositions", n)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, fc.Dir())
			return nil
		},
	}
}
