package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vela/internal/demo"
	"github.com/vango-dev/vela/internal/live"
	"github.com/vango-dev/vela/internal/metrics"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "Serve a demo live in the browser",
		Long: `Serve a demo over HTTP. Each browser tab gets its own program and
scheduler; the rendered document is streamed over a WebSocket and
browser events are sent back to it.

Examples:
  vela serve
  vela serve clock --port 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			name := cfg.Demo
			if len(args) > 0 {
				name = args[0]
			}
			app, err := demo.Lookup(name)
			if err != nil {
				return err
			}

			logger := newLogger(cfg, os.Stderr)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			var m *metrics.Metrics
			metricsPath := ""
			if cfg.Metrics.Enabled {
				m = metrics.New(
					metrics.WithRegistry(reg),
					metrics.WithNamespace(cfg.Metrics.Namespace),
				)
				metricsPath = cfg.Server.MetricsPath
			}

			srv := live.New(live.Config{
				App:         app,
				MaxSteps:    cfg.Scheduler.MaxSteps,
				MetricsPath: metricsPath,
				Gatherer:    reg,
				Metrics:     m,
				Logger:      logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner()
			success("Serving %s on http://%s", app.Name, cfg.Address())
			if metricsPath != "" {
				info("Metrics at http://%s%s", cfg.Address(), metricsPath)
			}
			info("Press Ctrl+C to stop")

			if err := srv.ListenAndServe(ctx, cfg.Address()); err != nil {
				return err
			}
			success("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Host to bind")
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")

	return cmd
}
