package main

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"marquee/internal/metrics"
	"marquee/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the movie grid over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, logger, err := ctx.newResolver()
			if err != nil {
				return err
			}
			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = cfg.Server.Bind
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics.Register(registry)

			srv := server.New(r, server.Options{
				DefaultQuery: cfg.Browse.DefaultQuery,
				Placeholder:  cfg.Browse.PlaceholderPoster,
				Columns:      cfg.Browse.Columns,
				Debounce:     cfg.DebounceDelay(),
				Logger:       logger,
				Gatherer:     registry,
				Now:          time.Now,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
