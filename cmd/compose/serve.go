package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/compose/internal/errors"
	"github.com/vango-dev/compose/internal/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the components to browsers",
		Long: `Serve the example components over HTTP and WebSocket.

Every browser tab gets its own session with its own component state.
Prometheus metrics are served on /metrics unless disabled in the config.

Examples:
  compose serve
  compose serve --port=8080
  compose serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Debug)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			success(out, "Serving %s on %s", cfg.Name, cfg.URL())
			if cfg.Metrics.Enabled {
				info(out, "Metrics on %s%s", cfg.URL(), cfg.Metrics.Path)
			}

			srv := server.New(cfg, server.WithLogger(logger))
			if err := srv.ListenAndServe(ctx); err != nil {
				return errors.New("E140").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")

	return cmd
}
