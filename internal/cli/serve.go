package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/printframe/pkg/buildinfo"
	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/server"
)

type serveOpts struct {
	addr          string
	redisAddr     string
	redisPassword string
	redisDB       int
	keyPrefix     string
	noCache       bool
	maxUploadMB   int64
	timeout       time.Duration
}

// serveCommand runs the HTTP export service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        server.DefaultAddr,
		keyPrefix:   "printframe:",
		maxUploadMB: server.DefaultMaxUpload >> 20,
		timeout:     server.DefaultTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Long: `Run the HTTP export service.

Exports are cached in the local cache directory, or in Redis with --redis so
several replicas share finished artifacts. The service stops gracefully on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared artifact cache")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database")
	cmd.Flags().StringVar(&opts.keyPrefix, "key-prefix", opts.keyPrefix, "prefix of cache keys")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&opts.maxUploadMB, "max-upload", opts.maxUploadMB, "maximum export request size in MiB")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(
		server.WithLogger(logger),
		server.WithCache(store),
		server.WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.keyPrefix+buildinfo.Version+":")),
		server.WithMaxUpload(opts.maxUploadMB<<20),
		server.WithTimeout(opts.timeout),
	)
	printInfo("Serving on %s", StyleHighlight.Render(opts.addr))
	return srv.ListenAndServe(ctx, opts.addr)
}

// serveCache picks the artifact cache of the service. Redis is retried while
// it is unreachable so the service can start alongside it.
func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr == "" {
		return c.newCache(false), nil
	}

	var rc *cache.RedisCache
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		rc, err = cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     opts.redisAddr,
			Password: opts.redisPassword,
			DB:       opts.redisDB,
		})
		return cache.Retryable(err)
	})
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("using redis cache", "addr", opts.redisAddr)
	return rc, nil
}
