package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugiyama/internal/server"
	"github.com/matzehuels/sugiyama/pkg/cache"
	"github.com/matzehuels/sugiyama/pkg/observability"
	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP layout service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
		metrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout service",
		Long: `Run the HTTP layout service.

Layouts are cached in Redis when --redis is given, in the local cache
directory otherwise. Prometheus metrics are served on /metrics.`,
		Example: `  sugiyama serve --addr :8080
  sugiyama serve --redis redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisURL, noCache, metrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for a shared cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "serve Prometheus metrics on /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisURL string, noCache, metrics bool) error {
	var (
		store cache.Cache
		err   error
	)
	switch {
	case noCache:
		store = cache.NewNullCache()
	case redisURL != "":
		store, err = cache.DialRedis(ctx, redisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache")
	default:
		store, err = newCache(false)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, "server:"), c.Logger)
	defer runner.Close()

	var opts []server.Option
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom := observability.NewPrometheusHooks(reg)
		observability.SetPipelineHooks(prom)
		observability.SetCacheHooks(prom)
		observability.SetHTTPHooks(prom)
		opts = append(opts, server.WithMetrics(reg))
	}
	srv := server.New(runner, opts...)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}
