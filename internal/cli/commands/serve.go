package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/fieldmeta/internal/web/api"
	"github.com/conduit-lang/fieldmeta/internal/web/cache"
)

// NewServeCommand creates the serve command
func NewServeCommand(opts *globalOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation, rendering and filter API over HTTP",
		Long: `Start the HTTP API. The server stops gracefully on SIGINT or SIGTERM,
finishing in-flight requests before the fragment cache is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			if address != "" {
				e.cfg.Server.Address = address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address (overrides server.address)")

	return cmd
}

// serve runs the API until ctx is done
func serve(ctx context.Context, e *env) error {
	fragments, err := cache.New(e.cfg.Cache.Backend, cache.Config{
		DefaultTTL: e.cfg.Cache.TTL,
		Prefix:     cache.DefaultConfig().Prefix,
	}, e.cfg.Cache.RedisAddr)
	if err != nil {
		return err
	}

	apiOpts := []api.Option{
		api.WithLogger(e.logger),
		api.WithDialect(e.cfg.SQLDialect()),
	}
	if fragments != nil {
		apiOpts = append(apiOpts, api.WithCache(fragments, e.cfg.Cache.TTL))
	}
	handler := api.New(e.registry, e.locale, apiOpts...)

	serverCfg := api.DefaultServerConfig()
	serverCfg.Address = e.cfg.Server.Address
	serverCfg.ReadTimeout = e.cfg.Server.ReadTimeout
	serverCfg.WriteTimeout = e.cfg.Server.WriteTimeout

	srv, err := api.NewServer(serverCfg, handler.Routes(), e.logger)
	if err != nil {
		if fragments != nil {
			fragments.Close()
		}
		return err
	}
	if fragments != nil {
		srv.RegisterHook(func(context.Context) error {
			return fragments.Close()
		})
	}

	e.logger.Info("serving field API",
		zap.String("address", serverCfg.Address),
		zap.String("locale", e.locale.Tag.String()),
		zap.Int("fields", e.registry.Count()),
		zap.String("cache", e.cfg.Cache.Backend),
	)
	err = srv.Run(ctx)
	// a failed listen returns before the hooks ran
	if serr := srv.Shutdown(context.Background()); err == nil {
		err = serr
	}
	return err
}
