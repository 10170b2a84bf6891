package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Starts an MCP server over stdin/stdout. Sending SIGHUP reloads the
research settings from the settings file. Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "hoofy-research": {
        "command": "hoofy-research",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				opts.Registerer = reg
				shutdown := serveMetrics(ctx, metricsAddr, reg, c.logger)
				defer shutdown()
			}

			r, err := server.NewResearch(opts)
			if err != nil {
				return err
			}
			defer r.Close()
			go c.reloadOnHangup(ctx, opts.ProjectRoot, r)

			s := server.NewMCP(r, opts.Logger)
			c.logger.Info("serving MCP over stdio", zap.String("root", opts.ProjectRoot))
			return mcpserver.ServeStdio(s)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")
	return cmd
}

// serveMetrics exposes reg over HTTP until ctx is done. The returned
// function stops the listener.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("metrics available", zap.String("addr", addr))

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
	go func() {
		<-ctx.Done()
		shutdown()
	}()
	return shutdown
}

// reloadOnHangup re-reads the settings file on every SIGHUP until ctx is
// done. A bad file is logged and the running settings are kept.
func (c *cli) reloadOnHangup(ctx context.Context, root string, r *server.Research) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := c.reload(root, r); err != nil {
				c.logger.Warn("settings reload failed; keeping current settings", zap.Error(err))
			}
		}
	}
}

// reload loads the settings at root and applies them to r.
func (c *cli) reload(root string, r *server.Research) error {
	settings, err := c.settings.Load(root)
	if err != nil {
		return err
	}
	return r.Reload(settings)
}
