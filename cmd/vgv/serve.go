package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/diff"
	"github.com/vango-dev/vgv/pkg/export"
	"github.com/vango-dev/vgv/pkg/serve"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr string
		loop bool
	)

	cmd := &cobra.Command{
		Use:   "serve <stream.vgv>",
		Short: "Serve a stream over HTTP",
		Long: `Serve a stream with a browser player, the raw stream, a real time
websocket feed and Prometheus metrics.

Routes:
  /            HTML player
  /stream.vgv  raw stream
  /ws          websocket frame feed
  /healthz     liveness check
  /metrics     Prometheus metrics

Examples:
  vgv serve demo.vgv
  vgv serve demo.vgv --addr :8080 --loop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := a.readStream(args[0])
			if err != nil {
				return err
			}

			cfg := a.cfg.Serve
			if addr != "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("loop") {
				cfg.Loop = loop
			}

			playerOpts := []export.Option{
				export.WithDiffEngine(diff.NewDMP()),
				export.WithLogger(a.logger),
				export.WithMetrics(exportMetrics()),
				export.WithTitle(a.cfg.Export.Title),
			}
			if a.cfg.Export.Sanitize {
				playerOpts = append(playerOpts, export.WithSanitizer(export.SVGPolicy()))
			}

			srv, err := serve.New(frames,
				serve.WithLogger(a.logger),
				serve.WithPlayer(export.NewHTML(playerOpts...)),
				serve.WithLoop(cfg.Loop),
			)
			if err != nil {
				return errors.FromStreamError(err, args[0])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.success("Serving %s on http://%s", args[0], cfg.Addr)
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&loop, "loop", false, "Restart the websocket feed when it ends")

	return cmd
}
