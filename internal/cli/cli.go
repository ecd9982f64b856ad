// Package cli implements the printframe command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/printframe/pkg/buildinfo"
	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "printframe"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// sessionDir overrides the snapshot directory; empty means the default.
	sessionDir string
	// cacheDir overrides the artifact cache directory; empty means the default.
	cacheDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Printframe composes photos into print-ready frames",
		Long:         `Printframe lays photos out on print templates (grids, dual windows, lettered words, shirt prints), adds text and filters, and exports PNGs with the physical print density embedded.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Stores
// =============================================================================

// newCache returns the artifact cache for CLI exports. A cache that cannot be
// opened degrades to no caching.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	fc, err := c.fileCache()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

func (c *CLI) fileCache() (*cache.FileCache, error) {
	dir := c.cacheDir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) sessionStore() (*session.FileStore, error) {
	return session.NewFileStore(c.sessionDir)
}
