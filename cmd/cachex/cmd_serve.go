package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/config"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API, match feed and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			store := config.NewStore(cfg)
			srv := server.New(store, a.logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Run(ctx)
			})
			if !noWatch {
				if _, err := os.Stat(filepath.Dir(a.configPath)); err == nil {
					g.Go(func() error {
						return config.Watch(ctx, a.configPath, store, a.logger)
					})
				} else {
					a.logger.Debug("config directory missing, reload disabled", "path", a.configPath)
				}
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}
